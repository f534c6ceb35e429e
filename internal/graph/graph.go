package graph

import (
	"github.com/vvka-141/pgplan/internal/ident"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// TableDecl registers one known base table.
type TableDecl struct {
	Name    pgplan.ObjectName
	RawName string
	Path    string
}

// Classify decides the kind of a referenced name: a name matching a known
// table is a Table; anything else is a DerivedObject and must have a
// definition somewhere in the corpus, or the build fails with a dangling
// reference. Unrecognized targets are deliberately never guessed to be
// tables.
func Classify(name pgplan.ObjectName, tables map[pgplan.ObjectName]struct{}) pgplan.ObjectKind {
	if _, ok := tables[name]; ok {
		return pgplan.KindTable
	}
	return pgplan.KindDerivedObject
}

// node is one interned graph entry. Arena index is the node handle.
type node struct {
	name pgplan.ObjectName
	raw  string // original spelling for diagnostics
	kind pgplan.ObjectKind
	path string // defining source path ("" for reference-only nodes)

	// defined is true for registered tables and for derived objects that
	// have a DefinitionSource. A derived node left undefined after the
	// build is a dangling reference.
	defined bool

	// firstRef records the first referencing object, for dangling
	// reference diagnostics.
	firstRef    pgplan.ObjectName
	firstRefRaw string
	firstPath   string
}

// Graph is the dependency graph of one deployment corpus. Nodes are kept
// in declaration order (tables first, then derived objects, then
// reference-only nodes in order of first mention), which downstream code
// relies on only for deterministic diagnostics — plan order is fixed by
// the scheduler's lexical tie-break.
type Graph struct {
	nodes []node
	index map[pgplan.ObjectName]int
	out   [][]int // out[i] holds nodes that depend on i (edge i -> j)
}

// Build assembles the dependency graph from every known table and every
// extracted derived-object definition.
//
// Errors:
//   - DuplicateError when two sources declare the same name
//   - DanglingError when a reference resolves to neither a table nor a
//     defined derived object
func Build(tables []TableDecl, defs []*ident.Definition) (*Graph, error) {
	g := &Graph{index: make(map[pgplan.ObjectName]int, len(tables)+len(defs))}

	for _, t := range tables {
		if prev, ok := g.index[t.Name]; ok {
			return nil, &DuplicateError{
				Name:       t.Name,
				FirstPath:  g.nodes[prev].path,
				SecondPath: t.Path,
			}
		}
		g.addNode(node{name: t.Name, raw: t.RawName, kind: pgplan.KindTable, path: t.Path, defined: true})
	}

	tableSet := make(map[pgplan.ObjectName]struct{}, len(tables))
	for _, t := range tables {
		tableSet[t.Name] = struct{}{}
	}

	// First pass: intern every declared derived object so forward
	// references resolve regardless of file order.
	for _, def := range defs {
		if prev, ok := g.index[def.Name]; ok {
			if g.nodes[prev].defined {
				return nil, &DuplicateError{
					Name:       def.Name,
					FirstPath:  g.nodes[prev].path,
					SecondPath: def.Path,
				}
			}
		}
		i := g.ensure(def.Name, def.RawName, pgplan.KindDerivedObject)
		g.nodes[i].defined = true
		g.nodes[i].path = def.Path
		g.nodes[i].raw = def.RawName
	}

	// Second pass: add edges from each referenced node to its declarer.
	for _, def := range defs {
		to := g.index[def.Name]
		for _, ref := range def.References {
			from := g.ensure(ref, def.RawRefs[ref], Classify(ref, tableSet))
			if g.nodes[from].firstRef == "" && !g.nodes[from].defined {
				g.nodes[from].firstRef = def.Name
				g.nodes[from].firstRefRaw = def.RawRefs[ref]
				g.nodes[from].firstPath = def.Path
			}
			g.out[from] = append(g.out[from], to)
		}
	}

	// A derived node that nothing defines is a data-integrity problem in
	// the corpus; never silently dropped.
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.kind == pgplan.KindDerivedObject && !n.defined {
			return nil, &DanglingError{
				Missing:      n.name,
				RawMissing:   n.firstRefRaw,
				ReferencedBy: n.firstRef,
				Path:         n.firstPath,
			}
		}
	}

	return g, nil
}

func (g *Graph) addNode(n node) int {
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	i := len(g.nodes) - 1
	g.index[n.name] = i
	return i
}

// ensure interns a name, creating a reference-only node if unseen.
func (g *Graph) ensure(name pgplan.ObjectName, raw string, kind pgplan.ObjectKind) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	return g.addNode(node{name: name, raw: raw, kind: kind})
}

// Len returns the total node count (tables and derived objects).
func (g *Graph) Len() int { return len(g.nodes) }

// DerivedCount returns the number of derived-object nodes.
func (g *Graph) DerivedCount() int {
	count := 0
	for i := range g.nodes {
		if g.nodes[i].kind == pgplan.KindDerivedObject {
			count++
		}
	}
	return count
}

// Kind returns the kind of a known name. The second result is false for
// names absent from the graph.
func (g *Graph) Kind(name pgplan.ObjectName) (pgplan.ObjectKind, bool) {
	i, ok := g.index[name]
	if !ok {
		return 0, false
	}
	return g.nodes[i].kind, true
}

// HasEdge reports whether a "must deploy before" edge exists.
func (g *Graph) HasEdge(from, to pgplan.ObjectName) bool {
	i, ok := g.index[from]
	if !ok {
		return false
	}
	j, ok := g.index[to]
	if !ok {
		return false
	}
	for _, k := range g.out[i] {
		if k == j {
			return true
		}
	}
	return false
}
