// Package ledger implements the migration ledger: a sequential,
// idempotent apply/revert mechanism for table-affecting changes, tracked
// by an applied-state record in the target database.
//
// The ledger never reorders steps. It processes strictly by ascending
// sequence number, skips already-applied steps during a sweep, and
// refuses to apply a step below the high-water mark while lower steps
// remain unapplied. A failed forward script leaves no applied record.
//
// Mutual exclusion against concurrent deployments on the same target is
// a session-level Postgres advisory lock held around every apply/revert
// sweep. The planning core never coordinates with the ledger; it only
// consumes the pgplan.Ledger contract.
package ledger
