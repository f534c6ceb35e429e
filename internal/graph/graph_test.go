package graph

import (
	"errors"
	"testing"

	"github.com/vvka-141/pgplan/internal/ident"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

func table(name string) TableDecl {
	return TableDecl{Name: pgplan.ObjectName(name), RawName: name, Path: "tables/" + name + ".sql"}
}

func def(name string, refs ...string) *ident.Definition {
	d := &ident.Definition{
		Name:    pgplan.ObjectName(name),
		RawName: name,
		Path:    "views/" + name + ".sql",
		RawRefs: make(map[pgplan.ObjectName]string, len(refs)),
	}
	for _, r := range refs {
		d.References = append(d.References, pgplan.ObjectName(r))
		d.RawRefs[pgplan.ObjectName(r)] = r
	}
	return d
}

func TestClassify(t *testing.T) {
	tables := map[pgplan.ObjectName]struct{}{"sales.customer": {}}

	if got := Classify("sales.customer", tables); got != pgplan.KindTable {
		t.Errorf("Classify(known table) = %v", got)
	}
	if got := Classify("sales.summary", tables); got != pgplan.KindDerivedObject {
		t.Errorf("Classify(unknown) = %v", got)
	}
}

func TestBuild_EdgesAndKinds(t *testing.T) {
	g, err := Build(
		[]TableDecl{table("sales.customer"), table("sales.order")},
		[]*ident.Definition{def("sales.summary", "sales.customer", "sales.order")},
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
	if !g.HasEdge("sales.customer", "sales.summary") {
		t.Error("missing edge sales.customer -> sales.summary")
	}
	if !g.HasEdge("sales.order", "sales.summary") {
		t.Error("missing edge sales.order -> sales.summary")
	}
	if g.HasEdge("sales.summary", "sales.customer") {
		t.Error("unexpected reversed edge")
	}

	if kind, _ := g.Kind("sales.customer"); kind != pgplan.KindTable {
		t.Errorf("Kind(sales.customer) = %v", kind)
	}
	if kind, _ := g.Kind("sales.summary"); kind != pgplan.KindDerivedObject {
		t.Errorf("Kind(sales.summary) = %v", kind)
	}
}

func TestBuild_ForwardReference(t *testing.T) {
	// b is declared after a references it; build order must not matter.
	g, err := Build(nil, []*ident.Definition{
		def("sales.a", "sales.b"),
		def("sales.b"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !g.HasEdge("sales.b", "sales.a") {
		t.Error("missing edge sales.b -> sales.a")
	}
}

func TestBuild_DuplicateDeclaration(t *testing.T) {
	_, err := Build(nil, []*ident.Definition{
		def("sales.v"),
		def("sales.v"),
	})
	if !errors.Is(err, pgplan.ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}

	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateError, got %T", err)
	}
	if dup.Name != "sales.v" {
		t.Errorf("Name = %q", dup.Name)
	}
}

func TestBuild_TableViewNameCollision(t *testing.T) {
	_, err := Build(
		[]TableDecl{table("sales.thing")},
		[]*ident.Definition{def("sales.thing")},
	)
	if !errors.Is(err, pgplan.ErrDuplicateDeclaration) {
		t.Fatalf("expected ErrDuplicateDeclaration, got %v", err)
	}
}

func TestBuild_DanglingReference(t *testing.T) {
	_, err := Build(
		[]TableDecl{table("sales.customer")},
		[]*ident.Definition{def("sales.v", "sales.nonexistent_table")},
	)
	if !errors.Is(err, pgplan.ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}

	var dangling *DanglingError
	if !errors.As(err, &dangling) {
		t.Fatalf("expected *DanglingError, got %T", err)
	}
	if dangling.Missing != "sales.nonexistent_table" {
		t.Errorf("Missing = %q", dangling.Missing)
	}
	if dangling.ReferencedBy != "sales.v" {
		t.Errorf("ReferencedBy = %q", dangling.ReferencedBy)
	}
}

func TestBuild_DerivedReferencingDerivedIsNotDangling(t *testing.T) {
	g, err := Build(nil, []*ident.Definition{
		def("sales.base_view"),
		def("sales.top_view", "sales.base_view"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if g.DerivedCount() != 2 {
		t.Errorf("DerivedCount() = %d, want 2", g.DerivedCount())
	}
}
