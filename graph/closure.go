package graph

import (
	"encoding/binary"
	"slices"
)

// NodeSet is a sorted list of distinct node ids. Being canonical, two sets are
// equal exactly when their elements are, whatever order they were built in.
type NodeSet []int

func NewNodeSet(ids ...int) NodeSet {
	s := slices.Clone(ids)
	slices.Sort(s)
	return slices.Compact(s)
}

func (s NodeSet) Equal(o NodeSet) bool {
	return slices.Equal(s, o)
}

func (s NodeSet) Contains(id int) bool {
	_, found := slices.BinarySearch(s, id)
	return found
}

// Key encodes the set as a map key.
func (s NodeSet) Key() string {
	buf := make([]byte, 0, len(s)*2)
	for _, id := range s {
		buf = binary.AppendUvarint(buf, uint64(id))
	}
	return string(buf)
}

// Closure returns the nodes reachable from id by epsilon edges alone, id
// included, and whether any of them accepts.
func (g *Graph) Closure(id int) (NodeSet, bool) {
	return g.ClosureOf([]int{id})
}

// ClosureOf is the union of the closures of ids.
func (g *Graph) ClosureOf(ids []int) (NodeSet, bool) {
	return newCloser(g).closure(ids)
}

// closer computes closures with a visited vector shared between calls. Only
// the entries a call set are cleared, so a closure costs the size of its
// result rather than the size of the graph.
type closer struct {
	g   *Graph
	st  []bool
	bfs []int
}

func newCloser(g *Graph) *closer {
	return &closer{g: g, st: make([]bool, len(g.Nodes))}
}

func (c *closer) closure(ids []int) (NodeSet, bool) {
	bfs := c.bfs[:0]
	for _, i := range ids {
		if !c.st[i] {
			c.st[i] = true
			bfs = append(bfs, i)
		}
	}
	for pos := 0; pos < len(bfs); pos++ {
		for _, e := range c.g.Nodes[bfs[pos]].E {
			if e.Cond.Consumes() || c.st[e.Dst] {
				continue
			}
			c.st[e.Dst] = true
			bfs = append(bfs, e.Dst)
		}
	}

	accept := false
	for _, i := range bfs {
		c.st[i] = false
		accept = accept || c.g.Nodes[i].Accept
	}
	c.bfs = bfs
	return NewNodeSet(bfs...), accept
}
