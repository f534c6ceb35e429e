package scanner

import (
	"fmt"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// StepNameError reports a migration file that violates the
// NNNN_name.sql naming scheme or the forward/reverse pairing rules.
type StepNameError struct {
	Path    string
	Message string
}

func (e *StepNameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *StepNameError) Unwrap() error { return pgplan.ErrMalformedDefinition }
