package ledger

import (
	"context"
	"sync"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

type memoryRecord struct {
	name     string
	checksum string
	reverse  string
}

// MemoryLedger is an in-memory pgplan.Ledger for tests and dry runs.
// Scripts are not executed; applied state lives in process memory with
// the same sequencing rules as the PostgreSQL implementation.
// Safe for concurrent use.
type MemoryLedger struct {
	mu      sync.Mutex
	applied map[int]memoryRecord
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{applied: make(map[int]memoryRecord)}
}

// IsApplied reports whether the step has been recorded as applied.
func (l *MemoryLedger) IsApplied(_ context.Context, sequence int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.applied[sequence]
	return ok, nil
}

// Apply records the step as applied without executing its script.
func (l *MemoryLedger) Apply(_ context.Context, step pgplan.MigrationStep) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec, ok := l.applied[step.Sequence]; ok {
		if rec.checksum != step.Checksum {
			return &DriftError{
				Sequence: step.Sequence,
				Name:     step.Name,
				Recorded: rec.checksum,
				Current:  step.Checksum,
			}
		}
		return nil
	}

	highWater := 0
	for seq := range l.applied {
		if seq > highWater {
			highWater = seq
		}
	}
	if step.Sequence < highWater {
		return &OutOfOrderError{Sequence: step.Sequence, HighWater: highWater}
	}

	l.applied[step.Sequence] = memoryRecord{
		name:     step.Name,
		checksum: step.Checksum,
		reverse:  step.Reverse,
	}
	return nil
}

// Revert removes the applied record, enforcing the same preconditions as
// the PostgreSQL implementation.
func (l *MemoryLedger) Revert(_ context.Context, sequence int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.applied[sequence]
	if !ok {
		return &NotAppliedError{Sequence: sequence}
	}
	if rec.reverse == "" {
		return &NoReverseError{Sequence: sequence, Name: rec.name}
	}

	delete(l.applied, sequence)
	return nil
}

// EnsureSchema is a no-op; memory needs no schema.
func (l *MemoryLedger) EnsureSchema(_ context.Context) error { return nil }

// AcquireLock is a no-op; per-call locking in Apply and Revert already
// serializes in-process access.
func (l *MemoryLedger) AcquireLock(_ context.Context) (func(), error) {
	return func() {}, nil
}

// AppliedSequences returns the applied sequence numbers, for assertions.
func (l *MemoryLedger) AppliedSequences() []int {
	l.mu.Lock()
	defer l.mu.Unlock()

	seqs := make([]int, 0, len(l.applied))
	for seq := range l.applied {
		seqs = append(seqs, seq)
	}
	return seqs
}

// Verify MemoryLedger implements the Ledger contract at compile time
var _ pgplan.Ledger = (*MemoryLedger)(nil)
