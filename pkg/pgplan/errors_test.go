package pgplan_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, pgplan.ExitSuccess},
		{"general error", errors.New("something went wrong"), pgplan.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag --foo"), pgplan.ExitUsageError},
		{"unknown shorthand flag", errors.New("unknown shorthand flag: 'x'"), pgplan.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), pgplan.ExitUsageError},
		{"required flag", errors.New("required flag \"database\" not set"), pgplan.ExitUsageError},
		{"invalid config", pgplan.ErrInvalidConfig, pgplan.ExitConfigError},
		{"connection failed", pgplan.ErrConnectionFailed, pgplan.ExitConnectionError},
		{"approval denied", pgplan.ErrApprovalDenied, pgplan.ExitApprovalDenied},
		{"execution failed", pgplan.ErrExecutionFailed, pgplan.ExitExecutionFailed},
		{"malformed definition", pgplan.ErrMalformedDefinition, pgplan.ExitInvalidCorpus},
		{"dangling reference", pgplan.ErrDanglingReference, pgplan.ExitInvalidCorpus},
		{"cyclic dependency", pgplan.ErrCyclicDependency, pgplan.ExitInvalidCorpus},
		{"duplicate declaration", pgplan.ErrDuplicateDeclaration, pgplan.ExitInvalidCorpus},
		{"not applied", pgplan.ErrNotApplied, pgplan.ExitMigrationOrder},
		{"no reverse defined", pgplan.ErrNoReverseDefined, pgplan.ExitMigrationOrder},
		{"out of order", pgplan.ErrOutOfOrderMigration, pgplan.ExitMigrationOrder},
		{"connection refused pattern", errors.New("dial tcp: connection refused"), pgplan.ExitConnectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pgplan.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("building graph: %w", pgplan.ErrCyclicDependency)
	if got := pgplan.ExitCodeForError(wrapped); got != pgplan.ExitInvalidCorpus {
		t.Errorf("ExitCodeForError(wrapped cycle) = %d, want %d", got, pgplan.ExitInvalidCorpus)
	}
}
