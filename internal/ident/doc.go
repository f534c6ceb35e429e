// Package ident extracts object identifiers from raw SQL definition text.
//
// # Overview
//
// Each definition source declares exactly one object and may reference any
// number of other objects through the dependency marker convention. This
// package recognizes both without parsing SQL:
//
//   - Declared name: the qualified identifier following a creation
//     statement header, matched case-insensitively:
//
//     CREATE [OR REPLACE] (TABLE | [MATERIALIZED] VIEW | FUNCTION) <name>
//
//   - References: every occurrence of a qualified name bracketed by the
//     fixed @@ token pair:
//
//     SELECT c.id FROM @@sales.customer@@ c
//
// # Grammar subset
//
// Identifiers match [A-Za-z0-9_.]+ and are normalized to lower case for
// graph-key comparison; the original spelling is preserved for
// diagnostics. Everything outside the two recognized constructs is
// tolerated without erroring — this is a bounded pattern extractor, not a
// SQL parser. SQL comments are stripped before matching so commented-out
// statements and markers never contribute.
//
// # Failure modes
//
// Extraction fails with a DefinitionError (unwrapping to
// pgplan.ErrMalformedDefinition) when a source declares no object,
// declares more than one distinct object, or references its own declared
// name (self-dependency is never valid).
package ident
