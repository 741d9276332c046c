package graph

import (
	"fmt"
	"slices"
)

// BuildDfa NFA -> DFA
// DFA: Deterministic Finite Automaton
//
// Subset construction. Each DFA node stands for the epsilon closure of a set of
// NFA nodes, and no two DFA nodes stand for the same set. Literal and wild
// conditions stay separate edges: the literal edge for a byte leads to the
// states reachable through both the literal edges and the wild edges, the wild
// edge to those reachable through wild edges only. Matching takes the literal
// edge when there is one.
func BuildDfa(nfa *Graph) *Graph {
	if nfa.released {
		panic(&InvariantError{Msg: "compile", Err: ErrReleased})
	}
	b := dfaBuilder{
		nfa: nfa,
		dfa: &Graph{End: -1},
		tab: make(map[string]int),
		cl:  newCloser(nfa),
	}

	// The DFA start state is the state representing the nil-closure of the
	// start node in the NFA.
	b.dfa.Start = b.get(b.cl.closure([]int{nfa.Start}))

	for len(b.todo) > 0 {
		v := b.nextTodo()
		for _, t := range b.transitions(v) {
			b.dfa.newEdge(v, b.get(b.cl.closure(t.dst)), t.cond)
		}
		b.dfa.checkDeterministic(v)
	}
	return b.dfa
}

type dfaBuilder struct {
	nfa  *Graph
	dfa  *Graph
	tab  map[string]int // NodeSet key -> DFA node, queued or done.
	todo []int
	cl   *closer
}

type transition struct {
	cond Cond
	dst  []int // NFA nodes reached before closing over epsilon edges.
}

// get returns the DFA node for set, creating and queueing it on first sight.
func (b *dfaBuilder) get(set NodeSet, accept bool) int {
	key := set.Key()
	if id, found := b.tab[key]; found {
		return id
	}
	id := b.dfa.newNode()
	n := b.dfa.Nodes[id]
	n.Accept = accept
	n.Set = set
	b.tab[key] = id
	b.todo = append(b.todo, id)
	return id
}

func (b *dfaBuilder) nextTodo() int {
	v := b.todo[0]
	b.todo = b.todo[1:]
	return v
}

// transitions groups the consuming edges of the NFA nodes behind v by
// condition, literals sorted by byte and the wild condition last.
func (b *dfaBuilder) transitions(v int) []transition {
	groups := make(map[Cond][]int)
	var wild []int
	for _, i := range b.dfa.Nodes[v].Set {
		for _, e := range b.nfa.Nodes[i].E {
			switch e.Cond.Kind {
			case KLiteral:
				groups[e.Cond] = append(groups[e.Cond], e.Dst)
			case KWild:
				wild = append(wild, e.Dst)
			}
		}
	}

	res := make([]transition, 0, len(groups)+1)
	for c, dst := range groups {
		res = append(res, transition{cond: c, dst: append(dst, wild...)})
	}
	if len(wild) > 0 {
		res = append(res, transition{cond: WildCond, dst: wild})
	}
	slices.SortFunc(res, func(x, y transition) int {
		switch {
		case x.cond.less(y.cond):
			return -1
		case y.cond.less(x.cond):
			return 1
		}
		return 0
	})
	return res
}

func (g *Graph) checkDeterministic(id int) {
	seen := make(map[Cond]bool)
	for _, e := range g.Nodes[id].E {
		if !e.Cond.Consumes() {
			panic(&InvariantError{Msg: fmt.Sprintf("dfa node %d has an epsilon edge", id)})
		}
		if seen[e.Cond] {
			panic(&InvariantError{Msg: fmt.Sprintf("dfa node %d has two %s edges", id, e.Cond)})
		}
		seen[e.Cond] = true
	}
}
