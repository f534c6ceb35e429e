package graph

import (
	"fmt"
	"strings"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// DuplicateError reports two sources declaring the same object name.
type DuplicateError struct {
	Name       pgplan.ObjectName
	FirstPath  string
	SecondPath string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate declaration of %s: declared in %s and %s",
		e.Name, e.FirstPath, e.SecondPath)
}

// Unwrap ties the error to the package sentinel for errors.Is.
func (e *DuplicateError) Unwrap() error { return pgplan.ErrDuplicateDeclaration }

// DanglingError reports a reference that resolves to neither a known
// table nor any known derived-object definition.
type DanglingError struct {
	Missing      pgplan.ObjectName // the unresolved name
	RawMissing   string            // original spelling from the source
	ReferencedBy pgplan.ObjectName // the object whose definition references it
	Path         string            // source path of the referencing object
}

// Error implements the error interface.
func (e *DanglingError) Error() string {
	return fmt.Sprintf("dangling reference %q in %s (%s): not a known table and no definition found",
		e.RawMissing, e.ReferencedBy, e.Path)
}

// Unwrap ties the error to the package sentinel for errors.Is.
func (e *DanglingError) Unwrap() error { return pgplan.ErrDanglingReference }

// CycleError reports a directed cycle among derived objects. Cycle lists
// the members in edge order; each consecutive pair, wrap-around included,
// is a real edge in the graph.
type CycleError struct {
	Cycle []pgplan.ObjectName
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycle)+1)
	for _, n := range e.Cycle {
		parts = append(parts, string(n))
	}
	if len(e.Cycle) > 0 {
		parts = append(parts, string(e.Cycle[0]))
	}
	return "cyclic dependency among derived objects: " + strings.Join(parts, " -> ")
}

// Unwrap ties the error to the package sentinel for errors.Is.
func (e *CycleError) Unwrap() error { return pgplan.ErrCyclicDependency }
