package ident

import (
	"fmt"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// DefinitionError is a structured extraction failure with enough context
// to locate the offending source, plus an actionable hint.
type DefinitionError struct {
	Path    string // source path
	Object  string // declared name as spelled, if known
	Message string // primary error message
	Hint    string // actionable suggestion for fixing
}

// Error implements the error interface with rich formatting.
func (e *DefinitionError) Error() string {
	location := e.Path
	if e.Object != "" {
		location = fmt.Sprintf("%s (object %s)", e.Path, e.Object)
	}

	msg := fmt.Sprintf("malformed definition in %s: %s", location, e.Message)
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	return msg
}

// Unwrap ties the structured error to the package sentinel so callers can
// classify with errors.Is.
func (e *DefinitionError) Unwrap() error { return pgplan.ErrMalformedDefinition }
