package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, nodes []string, edges [][2]string) *Directed {
	t.Helper()
	g := New(nodes)
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestOrderPlacesDependenciesFirst(t *testing.T) {
	// title_genre depends on both title and genre; the two independents
	// come first in lexicographical order.
	g := build(t,
		[]string{"title", "title_genre", "genre"},
		[][2]string{{"title_genre", "title"}, {"title_genre", "genre"}},
	)

	plan, err := Order(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"genre", "title", "title_genre"}, plan.CreationOrder())
}

func TestOrderSatisfiesAllEdges(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"b", "a"}, {"c", "a"}, {"d", "b"}, {"d", "c"}, {"e", "d"}},
	)

	plan, err := Order(g)
	require.NoError(t, err)

	index := make(map[string]int)
	for i, n := range plan.CreationOrder() {
		index[n] = i
	}
	for _, e := range g.Edges() {
		assert.Less(t, index[e[1]], index[e[0]], "edge %v", e)
	}
}

func TestOrderIsDeterministic(t *testing.T) {
	g := build(t,
		[]string{"m", "z", "k", "q", "b"},
		[][2]string{{"m", "k"}, {"q", "k"}},
	)

	first, err := Order(g)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Order(g)
		require.NoError(t, err)
		assert.Equal(t, first.CreationOrder(), again.CreationOrder())
	}
}

func TestDropOrderIsExactReverse(t *testing.T) {
	g := build(t,
		[]string{"title", "title_genre", "genre", "episode"},
		[][2]string{{"title_genre", "title"}, {"title_genre", "genre"}, {"episode", "title"}},
	)

	plan, err := Order(g)
	require.NoError(t, err)

	creation := plan.CreationOrder()
	drop := plan.DropOrder()
	require.Len(t, drop, len(creation))
	for i, n := range creation {
		assert.Equal(t, n, drop[len(drop)-1-i])
	}

	// Every edge drops child before parent.
	dropIndex := make(map[string]int)
	for i, n := range drop {
		dropIndex[n] = i
	}
	for _, e := range g.Edges() {
		assert.Less(t, dropIndex[e[0]], dropIndex[e[1]], "edge %v", e)
	}
}

func TestSelfReferenceIsNotACycle(t *testing.T) {
	// episode references title and also itself (parent episode).
	g := build(t,
		[]string{"title", "episode"},
		[][2]string{{"episode", "title"}, {"episode", "episode"}},
	)

	plan, err := Order(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "episode"}, plan.CreationOrder())
}

func TestOnlySelfReferencesSucceeds(t *testing.T) {
	g := build(t,
		[]string{"a", "b"},
		[][2]string{{"a", "a"}, {"b", "b"}},
	)

	plan, err := Order(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, plan.CreationOrder())
}

func TestCycleFails(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
	)

	_, err := Order(g)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycleErr.Cycle)
}

func TestCycleReportsMinimalCycle(t *testing.T) {
	// A long cycle a->b->c->d->a and a short one x->y->x. The error names
	// the shortest.
	g := build(t,
		[]string{"a", "b", "c", "d", "x", "y"},
		[][2]string{
			{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"},
			{"x", "y"}, {"y", "x"},
		},
	)

	_, err := Order(g)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"x", "y", "x"}, cycleErr.Cycle)
}

func TestCycleIgnoresSelfEdgesWithinCycleCheck(t *testing.T) {
	g := build(t,
		[]string{"a", "b"},
		[][2]string{{"a", "b"}, {"b", "a"}, {"a", "a"}},
	)

	_, err := Order(g)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "b", "a"}, cycleErr.Cycle)
}

func TestAddEdgeRequiresExistingNodes(t *testing.T) {
	g := New([]string{"a"})
	require.Error(t, g.AddEdge("a", "b"))
	require.Error(t, g.AddEdge("b", "a"))
}
