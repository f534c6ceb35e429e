package graph

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/vvka-141/pgplan/internal/ident"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

func mustBuild(t *testing.T, tables []TableDecl, defs []*ident.Definition) *Graph {
	t.Helper()
	g, err := Build(tables, defs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func position(plan pgplan.DeploymentPlan, name pgplan.ObjectName) int {
	for i, n := range plan {
		if n == name {
			return i
		}
	}
	return -1
}

func TestSchedule_ExampleCorpus(t *testing.T) {
	// Tables: customer, product, order. Derived objects:
	// customer_order_summary (customer, order), product_sales_overview
	// (product, order), customer_order_total_percentage (summary, order).
	g := mustBuild(t,
		[]TableDecl{table("sales.customer"), table("sales.product"), table("sales.order")},
		[]*ident.Definition{
			def("sales.customer_order_summary", "sales.customer", "sales.order"),
			def("sales.product_sales_overview", "sales.product", "sales.order"),
			def("sales.customer_order_total_percentage", "sales.customer_order_summary", "sales.order"),
		},
	)

	plan, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	// customer_order_summary and product_sales_overview start eligible;
	// once customer_order_summary is emitted, customer_order_total_percentage
	// joins the eligible set and sorts before product_sales_overview.
	want := pgplan.DeploymentPlan{
		"sales.customer_order_summary",
		"sales.customer_order_total_percentage",
		"sales.product_sales_overview",
	}
	if len(plan) != len(want) {
		t.Fatalf("plan = %v, want %v", plan, want)
	}
	for i := range want {
		if plan[i] != want[i] {
			t.Errorf("plan[%d] = %q, want %q", i, plan[i], want[i])
		}
	}
}

func TestSchedule_ExcludesTables(t *testing.T) {
	g := mustBuild(t,
		[]TableDecl{table("sales.customer")},
		[]*ident.Definition{def("sales.v", "sales.customer")},
	)

	plan, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if len(plan) != 1 || plan[0] != "sales.v" {
		t.Errorf("plan = %v, want [sales.v]", plan)
	}
}

func TestSchedule_LexicalTieBreak(t *testing.T) {
	g := mustBuild(t, nil, []*ident.Definition{
		def("sales.zeta"),
		def("sales.alpha"),
		def("sales.middle"),
	})

	plan, err := g.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	want := pgplan.DeploymentPlan{"sales.alpha", "sales.middle", "sales.zeta"}
	for i := range want {
		if plan[i] != want[i] {
			t.Fatalf("plan = %v, want %v", plan, want)
		}
	}
}

func TestSchedule_Idempotent(t *testing.T) {
	build := func() *Graph {
		return mustBuild(t, []TableDecl{table("t.base")}, []*ident.Definition{
			def("s.c", "s.b"),
			def("s.b", "s.a"),
			def("s.a", "t.base"),
			def("s.d", "t.base"),
		})
	}

	first, err := build().Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	second, err := build().Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("plans differ in length: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("plans diverge at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestSchedule_TwoNodeCycle(t *testing.T) {
	g := mustBuild(t, nil, []*ident.Definition{
		def("sales.v1", "sales.v2"),
		def("sales.v2", "sales.v1"),
	})

	_, err := g.Schedule()
	if !errors.Is(err, pgplan.ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if len(cycleErr.Cycle) != 2 {
		t.Fatalf("Cycle = %v, want 2 members", cycleErr.Cycle)
	}
	if cycleErr.Cycle[0] != "sales.v1" || cycleErr.Cycle[1] != "sales.v2" {
		t.Errorf("Cycle = %v, want [sales.v1 sales.v2]", cycleErr.Cycle)
	}
}

func TestSchedule_CycleBehindAcyclicPrefix(t *testing.T) {
	// a is schedulable; the cycle among b/c/d must still be detected and
	// no partial plan returned.
	g := mustBuild(t, nil, []*ident.Definition{
		def("s.a"),
		def("s.b", "s.a", "s.d"),
		def("s.c", "s.b"),
		def("s.d", "s.c"),
	})

	plan, err := g.Schedule()
	if !errors.Is(err, pgplan.ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}
	if plan != nil {
		t.Errorf("expected nil plan on cycle, got %v", plan)
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}

	// The reported cycle must be a true cycle: every consecutive pair,
	// wrap-around included, is a real edge.
	c := cycleErr.Cycle
	if len(c) != 3 {
		t.Fatalf("Cycle = %v, want 3 members", c)
	}
	for i := range c {
		from, to := c[i], c[(i+1)%len(c)]
		if !g.HasEdge(from, to) {
			t.Errorf("reported cycle edge %s -> %s does not exist", from, to)
		}
	}
}

func TestSchedule_SelfContainedDeterministicCycleReport(t *testing.T) {
	build := func() *Graph {
		return mustBuild(t, nil, []*ident.Definition{
			def("s.x", "s.z"),
			def("s.y", "s.x"),
			def("s.z", "s.y"),
		})
	}

	_, err1 := build().Schedule()
	_, err2 := build().Schedule()

	var c1, c2 *CycleError
	if !errors.As(err1, &c1) || !errors.As(err2, &c2) {
		t.Fatalf("expected CycleErrors, got %v / %v", err1, err2)
	}
	if len(c1.Cycle) != len(c2.Cycle) {
		t.Fatalf("cycle reports differ: %v vs %v", c1.Cycle, c2.Cycle)
	}
	for i := range c1.Cycle {
		if c1.Cycle[i] != c2.Cycle[i] {
			t.Errorf("cycle reports diverge: %v vs %v", c1.Cycle, c2.Cycle)
		}
	}
	if c1.Cycle[0] != "s.x" {
		t.Errorf("cycle should start at lexically smallest member, got %v", c1.Cycle)
	}
}

// TestSchedule_RandomAcyclic exercises the ordering property on randomly
// generated DAGs: every derived object appears exactly once, no table
// appears, and for every edge the source precedes the target.
func TestSchedule_RandomAcyclic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.Intn(40)
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("s.v%03d", i)
		}

		// Edges only from lower to higher index keep the graph acyclic.
		defs := make([]*ident.Definition, n)
		type edge struct{ from, to int }
		var edges []edge
		for i := 0; i < n; i++ {
			var refs []string
			for j := 0; j < i; j++ {
				if rng.Float64() < 0.15 {
					refs = append(refs, names[j])
					edges = append(edges, edge{j, i})
				}
			}
			defs[i] = def(names[i], refs...)
		}

		plan, err := mustBuild(t, nil, defs).Schedule()
		if err != nil {
			t.Fatalf("trial %d: Schedule() error = %v", trial, err)
		}

		if len(plan) != n {
			t.Fatalf("trial %d: plan has %d entries, want %d", trial, len(plan), n)
		}
		seen := make(map[pgplan.ObjectName]bool, n)
		for _, name := range plan {
			if seen[name] {
				t.Fatalf("trial %d: %q appears twice", trial, name)
			}
			seen[name] = true
		}
		for _, e := range edges {
			from := position(plan, pgplan.ObjectName(names[e.from]))
			to := position(plan, pgplan.ObjectName(names[e.to]))
			if from >= to {
				t.Fatalf("trial %d: edge %s -> %s violated (positions %d, %d)",
					trial, names[e.from], names[e.to], from, to)
			}
		}
	}
}
