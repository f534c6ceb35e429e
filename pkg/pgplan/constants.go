package pgplan

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Plan/deploy completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User denied revert approval
	ExitExecutionFailed = 13 // SQL execution failed
	ExitInvalidCorpus   = 14 // Malformed/duplicate/dangling/cyclic corpus
	ExitMigrationOrder  = 15 // Ledger sequencing violation
)

// Corpus layout conventions relative to the source root.
const (
	// TablesDir holds base-table definitions. Tables are created by
	// migrations; their sources exist only to register known table names.
	TablesDir = "tables"

	// ViewsDir holds derived-object definitions subject to ordering.
	ViewsDir = "views"

	// MigrationsDir holds NNNN_name.sql forward scripts with optional
	// NNNN_name.down.sql reverse scripts.
	MigrationsDir = "migrations"

	// ReverseSuffix marks a reverse script file.
	ReverseSuffix = ".down.sql"
)

const (
	// DefaultForceApprovalCountdown is the countdown duration before force
	// approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// MaxErrorPreviewLength is the maximum number of characters shown in
	// error messages when previewing failed SQL batches. This prevents
	// overwhelming the console with large statement errors.
	MaxErrorPreviewLength = 200
)
