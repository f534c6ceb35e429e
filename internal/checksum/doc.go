// Package checksum computes content digests for migration scripts.
//
// Two digests exist for different questions. The raw checksum answers
// "did the file change at all". The normalized checksum answers "did the
// script change in a way that matters": comments, letter case and
// whitespace runs are erased first, so reformatting an already-applied
// migration does not read as drift.
package checksum
