package ledger

import (
	"fmt"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// NotAppliedError reports a revert of a step that was never applied.
type NotAppliedError struct {
	Sequence int
}

func (e *NotAppliedError) Error() string {
	return fmt.Sprintf("migration step %d was never applied", e.Sequence)
}

func (e *NotAppliedError) Unwrap() error { return pgplan.ErrNotApplied }

// NoReverseError reports a revert of an applied step that carries no
// reverse script.
type NoReverseError struct {
	Sequence int
	Name     string
}

func (e *NoReverseError) Error() string {
	return fmt.Sprintf("migration step %d (%s) has no reverse script", e.Sequence, e.Name)
}

func (e *NoReverseError) Unwrap() error { return pgplan.ErrNoReverseDefined }

// OutOfOrderError reports an apply below the high-water mark while lower
// steps remain unapplied.
type OutOfOrderError struct {
	Sequence  int
	HighWater int
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("migration step %d is below the applied high-water mark %d; steps cannot be back-filled",
		e.Sequence, e.HighWater)
}

func (e *OutOfOrderError) Unwrap() error { return pgplan.ErrOutOfOrderMigration }

// DriftError reports that an applied step's current script no longer
// matches the checksum recorded at apply time.
type DriftError struct {
	Sequence int
	Name     string
	Recorded string
	Current  string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("migration step %d (%s) changed after being applied: recorded checksum %s, current %s",
		e.Sequence, e.Name, e.Recorded, e.Current)
}

func (e *DriftError) Unwrap() error { return pgplan.ErrChecksumDrift }
