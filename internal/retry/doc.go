// Package retry provides transient-failure handling for database
// connections: exponential backoff with jitter, a PostgreSQL-aware
// error classifier, and an executor that ties the two together.
package retry
