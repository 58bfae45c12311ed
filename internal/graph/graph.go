// Package graph implements a directed graph over named nodes and the
// deterministic topological ordering used to plan table creation. Nodes are
// plain string identifiers rather than object references so that cycle
// detection works on names alone.
package graph

import (
	"fmt"
	"sort"
)

// Directed is a directed graph over string node IDs. The zero value is not
// usable; construct with New.
type Directed struct {
	nodes map[string]bool
	succ  map[string]map[string]bool
}

// New creates a graph containing the given nodes and no edges.
func New(nodes []string) *Directed {
	g := &Directed{
		nodes: make(map[string]bool, len(nodes)),
		succ:  make(map[string]map[string]bool, len(nodes)),
	}
	for _, n := range nodes {
		g.nodes[n] = true
	}
	return g
}

// AddEdge adds a directed edge from -> to. Both endpoints must be existing
// nodes. Adding an existing edge is a no-op.
func (g *Directed) AddEdge(from, to string) error {
	if !g.nodes[from] {
		return fmt.Errorf("graph has no node `%s`", from)
	}
	if !g.nodes[to] {
		return fmt.Errorf("graph has no node `%s`", to)
	}
	if g.succ[from] == nil {
		g.succ[from] = make(map[string]bool)
	}
	g.succ[from][to] = true
	return nil
}

// HasEdge reports whether the edge from -> to exists.
func (g *Directed) HasEdge(from, to string) bool {
	return g.succ[from][to]
}

// Nodes returns the node IDs in lexicographical order.
func (g *Directed) Nodes() []string {
	nodes := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Successors returns the targets of all edges leaving the given node, in
// lexicographical order.
func (g *Directed) Successors(node string) []string {
	out := make([]string, 0, len(g.succ[node]))
	for n := range g.succ[node] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Edges returns every edge as a [from, to] pair, sorted lexicographically.
func (g *Directed) Edges() [][2]string {
	var edges [][2]string
	for _, from := range g.Nodes() {
		for _, to := range g.Successors(from) {
			edges = append(edges, [2]string{from, to})
		}
	}
	return edges
}
