package ledger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

//go:embed schema.sql
var schemaSQL string

// advisoryLockKey identifies the pgplan deployment lock. The value is
// arbitrary but fixed: every pgplan process against the same database
// contends on the same key.
const advisoryLockKey = 0x7067706c616e // "pgplan"

// PGLedger implements pgplan.Ledger against a PostgreSQL target.
//
// Thread-Safety: NOT safe for concurrent Apply/Revert calls on the same
// instance; cross-process exclusion is handled by the advisory lock.
type PGLedger struct {
	conn   pgplan.DBConnection
	logger pgplan.Logger
}

// NewPGLedger creates a ledger bound to the given connection.
// Panics on nil dependencies: those are programmer errors that should
// fail loudly at startup, not surface as nil dereferences mid-sweep.
func NewPGLedger(conn pgplan.DBConnection, logger pgplan.Logger) *PGLedger {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &PGLedger{conn: conn, logger: logger}
}

// EnsureSchema creates the applied-state table if it does not exist.
func (l *PGLedger) EnsureSchema(ctx context.Context) error {
	if _, err := l.conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure ledger schema: %w", err)
	}
	return nil
}

// AcquireLock takes the session-level advisory lock guarding apply/revert
// and returns a release function. The lock is held on a dedicated pooled
// connection so that releasing it cannot race with other pool traffic.
func (l *PGLedger) AcquireLock(ctx context.Context) (func(), error) {
	conn, err := l.conn.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for deployment lock: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", int64(advisoryLockKey)); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to take deployment lock: %w", err)
	}

	release := func() {
		// Unlock on a background context: release must work even after
		// the deployment context is cancelled.
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", int64(advisoryLockKey)); err != nil {
			l.logger.Error("failed to release deployment lock: %v", err)
		}
		conn.Release()
	}
	return release, nil
}

// IsApplied reports whether the step with the given sequence number has
// been recorded as applied.
func (l *PGLedger) IsApplied(ctx context.Context, sequence int) (bool, error) {
	var applied bool
	err := l.conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pgplan_applied_steps WHERE sequence = $1)",
		sequence).Scan(&applied)
	if err != nil {
		return false, fmt.Errorf("failed to query applied state for step %d: %w", sequence, err)
	}
	return applied, nil
}

// Apply runs the step's forward script and records it as applied in the
// same transaction, so a failed script leaves no applied record.
//
// Already-applied steps are verified against the recorded checksum and
// otherwise skipped. A step below the high-water mark that is not yet
// applied fails with OutOfOrderError.
func (l *PGLedger) Apply(ctx context.Context, step pgplan.MigrationStep) error {
	var recorded string
	var applied bool
	err := l.conn.QueryRow(ctx,
		"SELECT true, checksum FROM pgplan_applied_steps WHERE sequence = $1",
		step.Sequence).Scan(&applied, &recorded)
	if err != nil && !isNoRows(err) {
		return fmt.Errorf("failed to query applied state for step %d: %w", step.Sequence, err)
	}

	if applied {
		if recorded != step.Checksum {
			return &DriftError{
				Sequence: step.Sequence,
				Name:     step.Name,
				Recorded: recorded,
				Current:  step.Checksum,
			}
		}
		l.logger.Verbose("step %d (%s) already applied, skipping", step.Sequence, step.Name)
		return nil
	}

	highWater, err := l.highWater(ctx)
	if err != nil {
		return err
	}
	if step.Sequence < highWater {
		return &OutOfOrderError{Sequence: step.Sequence, HighWater: highWater}
	}

	conn, err := l.conn.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for step %d: %w", step.Sequence, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "BEGIN"); err != nil {
		return fmt.Errorf("failed to begin transaction for step %d: %w", step.Sequence, err)
	}

	if _, err := conn.Exec(ctx, step.Forward); err != nil {
		if _, rbErr := conn.Exec(ctx, "ROLLBACK"); rbErr != nil {
			l.logger.Error("rollback after failed step %d also failed: %v", step.Sequence, rbErr)
		}
		return fmt.Errorf("forward script of step %d (%s) failed: %w: %v",
			step.Sequence, step.Name, pgplan.ErrExecutionFailed, err)
	}

	if _, err := conn.Exec(ctx,
		"INSERT INTO pgplan_applied_steps (sequence, id, name, checksum, reverse_sql) VALUES ($1, $2, $3, $4, NULLIF($5, ''))",
		step.Sequence, step.ID, step.Name, step.Checksum, step.Reverse); err != nil {
		if _, rbErr := conn.Exec(ctx, "ROLLBACK"); rbErr != nil {
			l.logger.Error("rollback after failed record of step %d also failed: %v", step.Sequence, rbErr)
		}
		return fmt.Errorf("failed to record step %d as applied: %w", step.Sequence, err)
	}

	if _, err := conn.Exec(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit step %d: %w", step.Sequence, err)
	}

	l.logger.Info("applied migration step %d (%s)", step.Sequence, step.Name)
	return nil
}

// Revert runs the stored reverse script for an applied step and removes
// the applied record, both in one transaction.
func (l *PGLedger) Revert(ctx context.Context, sequence int) error {
	var name string
	var reverse *string
	err := l.conn.QueryRow(ctx,
		"SELECT name, reverse_sql FROM pgplan_applied_steps WHERE sequence = $1",
		sequence).Scan(&name, &reverse)
	if err != nil {
		if isNoRows(err) {
			return &NotAppliedError{Sequence: sequence}
		}
		return fmt.Errorf("failed to query applied state for step %d: %w", sequence, err)
	}

	if reverse == nil || *reverse == "" {
		return &NoReverseError{Sequence: sequence, Name: name}
	}

	conn, err := l.conn.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for revert of step %d: %w", sequence, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "BEGIN"); err != nil {
		return fmt.Errorf("failed to begin transaction for revert of step %d: %w", sequence, err)
	}

	if _, err := conn.Exec(ctx, *reverse); err != nil {
		if _, rbErr := conn.Exec(ctx, "ROLLBACK"); rbErr != nil {
			l.logger.Error("rollback after failed revert of step %d also failed: %v", sequence, rbErr)
		}
		return fmt.Errorf("reverse script of step %d (%s) failed: %w: %v",
			sequence, name, pgplan.ErrExecutionFailed, err)
	}

	if _, err := conn.Exec(ctx,
		"DELETE FROM pgplan_applied_steps WHERE sequence = $1", sequence); err != nil {
		if _, rbErr := conn.Exec(ctx, "ROLLBACK"); rbErr != nil {
			l.logger.Error("rollback after failed delete of step %d also failed: %v", sequence, rbErr)
		}
		return fmt.Errorf("failed to remove applied record of step %d: %w", sequence, err)
	}

	if _, err := conn.Exec(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit revert of step %d: %w", sequence, err)
	}

	l.logger.Info("reverted migration step %d (%s)", sequence, name)
	return nil
}

func (l *PGLedger) highWater(ctx context.Context) (int, error) {
	var max int
	err := l.conn.QueryRow(ctx,
		"SELECT COALESCE(MAX(sequence), 0) FROM pgplan_applied_steps").Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to query ledger high-water mark: %w", err)
	}
	return max, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Verify PGLedger implements the Ledger contract at compile time
var _ pgplan.Ledger = (*PGLedger)(nil)
