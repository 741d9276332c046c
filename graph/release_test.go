package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// releaseTracker records every release and fails on a second release of the
// same node or of an edge whose source node is already gone.
type releaseTracker struct {
	t     *testing.T
	nodes map[int]int
	edges int
}

func newReleaseTracker(t *testing.T) *releaseTracker {
	return &releaseTracker{t: t, nodes: make(map[int]int)}
}

func (r *releaseTracker) ReleaseEdge(from int, _ Edge) {
	require.Zero(r.t, r.nodes[from], "edge of released node %d", from)
	r.edges++
}

func (r *releaseTracker) ReleaseNode(id int) {
	r.nodes[id]++
	require.Equal(r.t, 1, r.nodes[id], "node %d released twice", id)
}

func totalEdges(g *Graph) int {
	n := 0
	for _, u := range g.Nodes {
		n += len(u.E)
	}
	return n
}

func requireInvariantPanic(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		var ierr *InvariantError
		require.True(t, errors.As(err, &ierr))
		require.ErrorIs(t, err, target)
	}()
	f()
}

func TestReleaseCycles(t *testing.T) {
	for _, pattern := range dfaPatterns {
		nfa, dfa := mustDfa(t, pattern)
		for _, g := range []*Graph{nfa, dfa} {
			nodes, edges := len(g.Reachable()), totalEdges(g)
			tr := newReleaseTracker(t)
			require.Equal(t, nodes, g.Release(tr), pattern)
			require.Len(t, tr.nodes, nodes, pattern)
			require.Equal(t, edges, tr.edges, pattern)

			require.True(t, g.Released())
			require.Empty(t, g.Reachable())
			require.Zero(t, g.Len())
		}
	}
}

func TestReleaseTwice(t *testing.T) {
	nfa := mustNfa(t, "(ab)*")
	nfa.Release(nil)
	requireInvariantPanic(t, ErrReleased, func() { nfa.Release(nil) })
	requireInvariantPanic(t, ErrReleased, func() { BuildDfa(nfa) })
}

func TestWriteDotGraph(t *testing.T) {
	nfa, dfa := mustDfa(t, "a.*")

	var b strings.Builder
	require.NoError(t, WriteDotGraph(&b, nfa, "NFA"))
	out := b.String()
	require.Contains(t, out, "digraph NFA {")
	require.Contains(t, out, `[label="a"]`)
	require.Contains(t, out, "[style=dashed]")
	require.Contains(t, out, "shape=doublecircle")

	b.Reset()
	require.NoError(t, WriteDotGraph(&b, dfa, "DFA"))
	out = b.String()
	require.Contains(t, out, "digraph DFA {")
	require.Contains(t, out, "color=blue")
	require.NotContains(t, out, "dashed")
}
