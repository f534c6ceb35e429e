package graph

import (
	"sort"

	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// Schedule computes the deployment plan: every derived object exactly
// once, never a table, ordered so that every dependency precedes its
// dependents. Ties between objects with no ordering relationship are
// broken by ascending lexical order of name, making the output
// reproducible. Pure and total for acyclic input: same graph, same plan.
//
// If the derived-object subgraph contains a directed cycle, Schedule
// fails with a CycleError carrying a representative cycle path and no
// plan is returned.
func (g *Graph) Schedule() (pgplan.DeploymentPlan, error) {
	// Indegree counts only edges from derived objects: table nodes are
	// pre-satisfied and impose no ordering requirement.
	indegree := make([]int, len(g.nodes))
	for i := range g.nodes {
		if g.nodes[i].kind != pgplan.KindDerivedObject {
			continue
		}
		for _, j := range g.out[i] {
			indegree[j]++
		}
	}

	ready := make([]int, 0, len(g.nodes))
	for i := range g.nodes {
		if g.nodes[i].kind == pgplan.KindDerivedObject && indegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	g.sortByName(ready)

	remaining := g.DerivedCount()
	plan := make(pgplan.DeploymentPlan, 0, remaining)
	done := make([]bool, len(g.nodes))

	for len(plan) < remaining {
		if len(ready) == 0 {
			return nil, &CycleError{Cycle: g.findCycle(done)}
		}

		current := ready[0]
		ready = ready[1:]
		done[current] = true
		plan = append(plan, g.nodes[current].name)

		grew := false
		for _, j := range g.out[current] {
			indegree[j]--
			if indegree[j] == 0 && g.nodes[j].kind == pgplan.KindDerivedObject && !done[j] {
				ready = append(ready, j)
				grew = true
			}
		}
		if grew {
			g.sortByName(ready)
		}
	}

	return plan, nil
}

func (g *Graph) sortByName(idx []int) {
	sort.Slice(idx, func(a, b int) bool {
		return g.nodes[idx[a]].name < g.nodes[idx[b]].name
	})
}

// findCycle returns a representative cycle among the unscheduled derived
// objects. DFS starts from the lexically smallest blocked node and visits
// neighbors in lexical order, so the reported cycle is deterministic.
// Every consecutive pair in the result, wrap-around included, is a real
// edge.
func (g *Graph) findCycle(done []bool) []pgplan.ObjectName {
	blocked := make([]int, 0)
	for i := range g.nodes {
		if g.nodes[i].kind == pgplan.KindDerivedObject && !done[i] {
			blocked = append(blocked, i)
		}
	}
	g.sortByName(blocked)

	const (
		white = 0 // unvisited
		gray  = 1 // on the current DFS path
		black = 2 // fully explored, not part of a reachable cycle
	)
	color := make([]int, len(g.nodes))
	var stack []int

	// usable restricts the walk to the blocked subgraph; every cycle
	// lives entirely inside it.
	usable := make([]bool, len(g.nodes))
	for _, i := range blocked {
		usable[i] = true
	}

	var cycle []pgplan.ObjectName
	var visit func(i int) bool
	visit = func(i int) bool {
		color[i] = gray
		stack = append(stack, i)

		next := append([]int(nil), g.out[i]...)
		g.sortByName(next)
		for _, j := range next {
			if !usable[j] {
				continue
			}
			switch color[j] {
			case gray:
				// Back edge: the stack from j onward is the cycle.
				start := 0
				for k, v := range stack {
					if v == j {
						start = k
						break
					}
				}
				for _, v := range stack[start:] {
					cycle = append(cycle, g.nodes[v].name)
				}
				return true
			case white:
				if visit(j) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[i] = black
		return false
	}

	for _, i := range blocked {
		if color[i] == white && visit(i) {
			break
		}
	}

	return rotateToSmallest(cycle)
}

// rotateToSmallest normalizes a cycle to begin at its lexically smallest
// member, preserving edge order, so equal graphs report equal cycles.
func rotateToSmallest(cycle []pgplan.ObjectName) []pgplan.ObjectName {
	if len(cycle) == 0 {
		return cycle
	}
	smallest := 0
	for i := 1; i < len(cycle); i++ {
		if cycle[i] < cycle[smallest] {
			smallest = i
		}
	}
	rotated := make([]pgplan.ObjectName, 0, len(cycle))
	rotated = append(rotated, cycle[smallest:]...)
	rotated = append(rotated, cycle[:smallest]...)
	return rotated
}
