package graph

// Releaser is told about every edge and node of a graph being released.
type Releaser interface {
	ReleaseEdge(from int, e Edge)
	ReleaseNode(id int)
}

// Release drops every node reachable from the start node, exactly once, and
// returns how many were dropped. Edges are reported as the traversal finds
// them, nodes once the traversal is over, so no node is dropped while an edge
// to it is still to be visited. r may be nil.
func (g *Graph) Release(r Releaser) int {
	if g.released {
		panic(&InvariantError{Msg: "release", Err: ErrReleased})
	}
	g.released = true
	if len(g.Nodes) == 0 {
		return 0
	}

	visited := make([]bool, len(g.Nodes))
	visited[g.Start] = true
	toFree := []int{g.Start}
	for pos := 0; pos < len(toFree); pos++ {
		n := g.Nodes[toFree[pos]]
		for _, e := range n.E {
			if r != nil {
				r.ReleaseEdge(n.Id, e)
			}
			if !visited[e.Dst] {
				visited[e.Dst] = true
				toFree = append(toFree, e.Dst)
			}
		}
		n.E = nil
	}
	for _, id := range toFree {
		if r != nil {
			r.ReleaseNode(id)
		}
		g.Nodes[id] = nil
	}
	g.Nodes = nil
	g.Start, g.End = -1, -1
	return len(toFree)
}
