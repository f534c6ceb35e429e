package pgplan

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Planner computes a deployment plan from a corpus of SQL sources.
// Planning is pure and deterministic: the same corpus always yields the
// same plan or the same structured error, and nothing is deployed on any
// planning error.
type Planner interface {
	// Plan extracts identifiers, builds the dependency graph and returns
	// the dependency-respecting deployment order of all derived objects.
	Plan(corpus Corpus) (DeploymentPlan, error)
}

// Deployer is the main interface for executing corpus deployments.
// Implementations handle the full workflow: pre-flight planning, the
// migration ledger sweep, and dependency-ordered object creation.
type Deployer interface {
	// Deploy executes a deployment using the provided configuration.
	// It returns an error if the deployment fails at any stage.
	Deploy(ctx context.Context, config DeployConfig) error
}

// Ledger is the migration ledger contract: a sequential, idempotent
// apply/revert mechanism for table-affecting changes, tracked by an
// applied-state record. The ledger never reorders steps; it processes
// strictly by ascending sequence number.
//
// Implementations must hold mutual exclusion against concurrent runs on
// the same target while Apply or Revert is in flight; the planning core
// performs no coordination of its own.
type Ledger interface {
	// IsApplied reports whether the step with the given sequence number
	// has been recorded as applied.
	IsApplied(ctx context.Context, sequence int) (bool, error)

	// Apply runs the step's forward script and records it as applied,
	// atomically with respect to failure: a failed forward script must
	// not leave an applied record. Applying below the high-water mark
	// while lower steps remain unapplied fails with ErrOutOfOrderMigration.
	Apply(ctx context.Context, step MigrationStep) error

	// Revert runs the stored reverse script for an applied step and
	// removes the applied record. Fails with ErrNotApplied if the step
	// was never applied, or ErrNoReverseDefined if it has no reverse.
	Revert(ctx context.Context, sequence int) error
}

// CorpusScanner discovers SQL sources and migration steps under a corpus
// root. Implementations must be safe for concurrent use.
type CorpusScanner interface {
	// ScanCorpus reads tables/ and views/ into a Corpus.
	ScanCorpus(sourcePath string) (Corpus, error)

	// ScanMigrations reads migrations/ into an ascending-sequence step
	// list, pairing NNNN_name.sql with an optional NNNN_name.down.sql.
	ScanMigrations(sourcePath string) ([]MigrationStep, error)
}

// Connector is a unified interface for establishing database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens, etc.).
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// Approver handles user interaction for approval workflows, particularly
// for destructive operations like reverting an applied migration step.
type Approver interface {
	// RequestApproval prompts for confirmation before the named
	// destructive operation proceeds. Returns true only on approval.
	RequestApproval(ctx context.Context, subject string) (bool, error)
}
