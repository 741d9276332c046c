package graph

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

type CondKind uint8

const (
	KNil CondKind = iota
	KLiteral
	KWild
)

// Cond is the condition under which an edge is taken.
type Cond struct {
	Kind CondKind
	B    byte // Byte for literal edges.
}

var (
	NilCond  = Cond{Kind: KNil}
	WildCond = Cond{Kind: KWild}
)

func LiteralCond(b byte) Cond {
	return Cond{Kind: KLiteral, B: b}
}

// Consumes reports whether taking the edge reads an input byte.
func (c Cond) Consumes() bool {
	return c.Kind != KNil
}

func (c Cond) Matches(b byte) bool {
	switch c.Kind {
	case KLiteral:
		return c.B == b
	case KWild:
		return true
	}
	return false
}

func (c Cond) String() string {
	switch c.Kind {
	case KLiteral:
		return byteToDot(c.B)
	case KWild:
		return "."
	}
	return "ε"
}

// less orders literal conditions by byte, and the wild condition last.
func (c Cond) less(o Cond) bool {
	if c.Kind != o.Kind {
		return c.Kind < o.Kind
	}
	return c.B < o.B
}

type Edge struct {
	Cond Cond
	Dst  int // Index of the destination node.
}

type Node struct {
	E      []Edge  // Out-edges.
	Id     int     // Index number in the owning graph.
	Accept bool    // True if this is an accepting state.
	Set    NodeSet // The NFA nodes represented by a DFA node.
}

// Graph owns its nodes. Edges refer to nodes by index, so cycles need no
// special care and a graph is released as a unit.
type Graph struct {
	Nodes []*Node
	Start int
	End   int // Only set while building an NFA; -1 for a DFA.

	released bool
}

var ErrReleased = errors.New("graph released")

// InvariantError is raised (by panic) when an automaton breaks one of its
// structural invariants. It is always a bug.
type InvariantError struct {
	Msg string
	Err error
}

func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graph invariant violated: %s: %v", e.Msg, e.Err)
	}
	return "graph invariant violated: " + e.Msg
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

func (g *Graph) Len() int {
	return len(g.Nodes)
}

func (g *Graph) Released() bool {
	return g.released
}

func (g *Graph) newNode() int {
	id := len(g.Nodes)
	g.Nodes = append(g.Nodes, &Node{Id: id})
	return id
}

func (g *Graph) newEdge(u, v int, c Cond) {
	g.Nodes[u].E = append(g.Nodes[u].E, Edge{Cond: c, Dst: v})
}

func (g *Graph) newNilEdge(u, v int) {
	g.newEdge(u, v, NilCond)
}

func (g *Graph) newLiteralEdge(u, v int, b byte) {
	g.newEdge(u, v, LiteralCond(b))
}

func (g *Graph) newWildEdge(u, v int) {
	g.newEdge(u, v, WildCond)
}

// Reachable lists the ids of the nodes reachable from the start node, in BFS
// order. A released graph has none.
func (g *Graph) Reachable() []int {
	if g.released || len(g.Nodes) == 0 {
		return nil
	}
	visited := make([]bool, len(g.Nodes))
	visited[g.Start] = true
	nodes := []int{g.Start}
	for pos := 0; pos < len(nodes); pos++ {
		for _, e := range g.Nodes[nodes[pos]].E {
			if !visited[e.Dst] {
				visited[e.Dst] = true
				nodes = append(nodes, e.Dst)
			}
		}
	}
	return nodes
}

// Step returns the destination of the consuming edge a DFA node takes on b.
// A literal edge wins over the wild edge.
func (g *Graph) Step(id int, b byte) (int, bool) {
	wild := -1
	for _, e := range g.Nodes[id].E {
		switch {
		case e.Cond.Kind == KLiteral && e.Cond.B == b:
			return e.Dst, true
		case e.Cond.Kind == KWild:
			wild = e.Dst
		}
	}
	return wild, wild >= 0
}

func byteToDot(b byte) string {
	if b < 0x80 && strconv.IsPrint(rune(b)) {
		return string(rune(b))
	}
	return fmt.Sprintf("0x%02X", b)
}

// WriteDotGraph Print a graph in DOT format.
//
//	$ dot -Tps input.dot -o output.ps
func WriteDotGraph(out io.Writer, g *Graph, id string) error {
	if _, err := fmt.Fprintf(out, "digraph %v {\n  rankdir=LR;\n", id); err != nil {
		return err
	}
	for _, i := range g.Reachable() {
		u := g.Nodes[i]
		shape := "circle"
		if u.Accept {
			shape = "doublecircle"
		}
		attrs := ""
		if i == g.Start {
			attrs = ",style=bold"
		}
		if _, err := fmt.Fprintf(out, "  %v[shape=%s%s];\n", u.Id, shape, attrs); err != nil {
			return err
		}
		for _, e := range u.E {
			label := ""
			switch e.Cond.Kind {
			case KLiteral:
				label = fmt.Sprintf("[label=%q]", e.Cond.String())
			case KWild:
				label = "[label=\".\",color=blue]"
			case KNil:
				label = "[style=dashed]"
			}
			if _, err := fmt.Fprintf(out, "  %v -> %v%v;\n", u.Id, e.Dst, label); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(out, "}")
	return err
}
