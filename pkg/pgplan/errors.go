package pgplan

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	plan, err := planner.Plan(corpus)
//	if errors.Is(err, pgplan.ErrCyclicDependency) {
//	    // surface the cycle path and halt
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMalformedDefinition indicates a source declares zero or multiple
	// object names, or references its own declared name.
	ErrMalformedDefinition = errors.New("malformed definition")

	// ErrDanglingReference indicates a referenced name resolves to neither
	// a known table nor any known derived-object definition.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrCyclicDependency indicates the derived-object subgraph contains a
	// directed cycle. No partial plan is ever produced.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrDuplicateDeclaration indicates two different sources declare the
	// same object name.
	ErrDuplicateDeclaration = errors.New("duplicate declaration")

	// ErrNotApplied indicates a revert was requested for a migration step
	// that was never recorded as applied.
	ErrNotApplied = errors.New("migration step not applied")

	// ErrNoReverseDefined indicates a revert was requested for a step that
	// carries no reverse script.
	ErrNoReverseDefined = errors.New("no reverse script defined")

	// ErrOutOfOrderMigration indicates an attempt to apply a step below the
	// ledger's high-water mark while lower steps remain unapplied.
	ErrOutOfOrderMigration = errors.New("out-of-order migration")

	// ErrChecksumDrift indicates an already-applied step's script no longer
	// matches the checksum recorded at apply time.
	ErrChecksumDrift = errors.New("checksum drift on applied step")

	// ErrApprovalDenied indicates the user denied approval for the operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrExecutionFailed indicates SQL execution failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method
	// is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrMalformedDefinition),
		errors.Is(err, ErrDanglingReference),
		errors.Is(err, ErrCyclicDependency),
		errors.Is(err, ErrDuplicateDeclaration):
		return ExitInvalidCorpus
	case errors.Is(err, ErrNotApplied),
		errors.Is(err, ErrNoReverseDefined),
		errors.Is(err, ErrOutOfOrderMigration),
		errors.Is(err, ErrChecksumDrift):
		return ExitMigrationOrder
	}

	errStr := err.Error()

	// Cobra reports flag/argument misuse as plain errors; classify them
	// as usage errors for scripting.
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "accepts ") {
		return ExitUsageError
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
