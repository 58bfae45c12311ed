package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Plan is a total order over the graph's nodes in which every node appears
// after all nodes it points at. It is computed once and immutable; reversing
// the creation order is the drop order, not a separate algorithm.
type Plan struct {
	creation []string
}

// CreationOrder returns the nodes in dependency order: referenced tables
// before the tables that reference them.
func (p *Plan) CreationOrder() []string {
	out := make([]string, len(p.creation))
	copy(out, p.creation)
	return out
}

// DropOrder returns the exact reverse of the creation order.
func (p *Plan) DropOrder() []string {
	out := make([]string, len(p.creation))
	for i, n := range p.creation {
		out[len(p.creation)-1-i] = n
	}
	return out
}

// CycleError reports a genuine dependency cycle among two or more nodes.
// Self-edges never contribute to a cycle.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Order computes a deterministic topological ordering of the graph: among
// the nodes whose dependencies are all resolved, the lexicographically
// smallest is always placed next, so identical graphs always produce
// identical plans. An edge a -> b means a depends on b, so b is placed
// first. Self-edges are excluded from the dependency counts, since a table
// can always be created before its self-referential rows are inserted.
func Order(g *Directed) (*Plan, error) {
	// Unresolved counts the not-yet-placed dependencies of each node.
	unresolved := make(map[string]int, len(g.nodes))
	for _, n := range g.Nodes() {
		count := 0
		for _, dep := range g.Successors(n) {
			if dep != n {
				count++
			}
		}
		unresolved[n] = count
	}

	// Reverse adjacency: who depends on each node.
	dependents := make(map[string][]string, len(g.nodes))
	for _, edge := range g.Edges() {
		from, to := edge[0], edge[1]
		if from == to {
			continue
		}
		dependents[to] = append(dependents[to], from)
	}

	var ready []string
	for n, count := range unresolved {
		if count == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	creation := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		creation = append(creation, next)

		for _, dep := range dependents[next] {
			unresolved[dep]--
			if unresolved[dep] == 0 {
				ready = insertSorted(ready, dep)
			}
		}
	}

	if len(creation) != len(g.nodes) {
		return nil, &CycleError{Cycle: findCycle(g, unresolved)}
	}
	return &Plan{creation: creation}, nil
}

func insertSorted(sorted []string, s string) []string {
	i := sort.SearchStrings(sorted, s)
	sorted = append(sorted, "")
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = s
	return sorted
}

// findCycle returns a minimal cycle among the nodes left with unresolved
// dependencies: the shortest cycle reachable from the smallest remaining
// node, written as a closed walk (first node repeated at the end).
func findCycle(g *Directed, unresolved map[string]int) []string {
	remaining := make(map[string]bool)
	for n, count := range unresolved {
		if count > 0 {
			remaining[n] = true
		}
	}

	var starts []string
	for n := range remaining {
		starts = append(starts, n)
	}
	sort.Strings(starts)

	var best []string
	for _, start := range starts {
		cycle := shortestCycleFrom(g, start, remaining)
		if cycle != nil && (best == nil || len(cycle) < len(best)) {
			best = cycle
		}
	}
	return best
}

// shortestCycleFrom runs a BFS over the remaining subgraph and returns the
// shortest closed walk start -> ... -> start, or nil if none exists.
func shortestCycleFrom(g *Directed, start string, remaining map[string]bool) []string {
	parent := make(map[string]string)
	queue := []string{start}
	visited := map[string]bool{start: true}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		for _, next := range g.Successors(node) {
			if !remaining[next] || next == node {
				continue
			}
			if next == start {
				path := []string{start}
				for at := node; at != start; at = parent[at] {
					path = append(path, at)
				}
				path = append(path, start)
				// Reverse into start -> ... -> start order.
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			if !visited[next] {
				visited[next] = true
				parent[next] = node
				queue = append(queue, next)
			}
		}
	}
	return nil
}
