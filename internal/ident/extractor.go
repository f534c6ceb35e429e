package ident

import (
	"regexp"
	"sort"

	"github.com/vvka-141/pgplan/internal/preprocessor"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// creationRegex matches a creation statement header and captures the
// declared qualified name. The keyword set covers every derived-object
// construct this tool deploys plus base tables.
var creationRegex = regexp.MustCompile(
	`(?i)\bCREATE\s+(?:OR\s+REPLACE\s+)?(?:TABLE|MATERIALIZED\s+VIEW|VIEW|FUNCTION)\s+([A-Za-z0-9_.]+)`)

// markerRegex matches one dependency marker and captures the enclosed
// qualified name. The token pair is bit-exact with hand-written sources.
var markerRegex = regexp.MustCompile(`@@([A-Za-z0-9_.]+)@@`)

// Definition is the extraction result for one source: the single declared
// object plus the set of objects it references.
type Definition struct {
	// Name is the normalized declared object name (graph key).
	Name pgplan.ObjectName

	// RawName is the declared name as spelled in the source.
	RawName string

	// References holds the normalized referenced names, deduplicated and
	// sorted for deterministic downstream processing.
	References []pgplan.ObjectName

	// RawRefs maps each normalized reference back to its original
	// spelling for diagnostics.
	RawRefs map[pgplan.ObjectName]string

	// Path is the source path, carried through for error reporting.
	Path string
}

// Extract scans one definition source and returns its declared name and
// referenced names. Comments are stripped first; the remaining text is
// matched pattern-wise, so arbitrary SQL outside the recognized
// constructs never causes an error.
//
// Returns a DefinitionError wrapping pgplan.ErrMalformedDefinition when
// the source declares zero or multiple distinct names, or references
// itself.
func Extract(src pgplan.SourceFile) (*Definition, error) {
	text := preprocessor.StripComments(src.Content)

	creations := creationRegex.FindAllStringSubmatch(text, -1)
	if len(creations) == 0 {
		return nil, &DefinitionError{
			Path:    src.Path,
			Message: "no creation statement found",
			Hint: "Every definition must contain exactly one\n" +
				"  CREATE [OR REPLACE] (TABLE | [MATERIALIZED] VIEW | FUNCTION) <schema.name>\n" +
				"statement outside of comments.",
		}
	}

	declared := pgplan.NormalizeObjectName(creations[0][1])
	rawName := creations[0][1]
	for _, m := range creations[1:] {
		if pgplan.NormalizeObjectName(m[1]) != declared {
			return nil, &DefinitionError{
				Path:    src.Path,
				Object:  rawName,
				Message: "multiple distinct declared names in one source: " + rawName + " and " + m[1],
				Hint:    "Split the definitions into one file per object.",
			}
		}
	}

	rawRefs := make(map[pgplan.ObjectName]string)
	for _, m := range markerRegex.FindAllStringSubmatch(text, -1) {
		name := pgplan.NormalizeObjectName(m[1])
		if name == declared {
			return nil, &DefinitionError{
				Path:    src.Path,
				Object:  rawName,
				Message: "definition references its own declared name " + m[1],
				Hint:    "Self-dependency is never valid. Remove the @@" + m[1] + "@@ marker.",
			}
		}
		if _, seen := rawRefs[name]; !seen {
			rawRefs[name] = m[1]
		}
	}

	refs := make([]pgplan.ObjectName, 0, len(rawRefs))
	for name := range rawRefs {
		refs = append(refs, name)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })

	return &Definition{
		Name:       declared,
		RawName:    rawName,
		References: refs,
		RawRefs:    rawRefs,
		Path:       src.Path,
	}, nil
}

// DeclaredName returns only the declared object name of a source.
// Used for table sources, where references are irrelevant: a table may
// legitimately mention other objects without creating ordering edges.
func DeclaredName(src pgplan.SourceFile) (pgplan.ObjectName, string, error) {
	text := preprocessor.StripComments(src.Content)

	m := creationRegex.FindStringSubmatch(text)
	if m == nil {
		return "", "", &DefinitionError{
			Path:    src.Path,
			Message: "no creation statement found",
			Hint:    "Table sources must contain a CREATE TABLE <schema.name> statement.",
		}
	}
	return pgplan.NormalizeObjectName(m[1]), m[1], nil
}
