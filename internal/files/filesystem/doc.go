// Package filesystem abstracts file access behind a provider interface
// so the corpus scanner can run against the OS filesystem in production
// and an in-memory filesystem in tests.
package filesystem
