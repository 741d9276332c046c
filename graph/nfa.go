package graph

import (
	"fmt"

	"github.com/liran-funaro/cgrep/parser"
)

// BuildNfa Pattern -> NFA (Nondeterministic Finite Automaton)
// Thompson construction over the parsed pattern. Every fragment has exactly one
// start and one end node, and a fragment's end is accepting until it is spliced
// into a larger fragment. The anchors of the pattern are not part of the NFA.
func BuildNfa(p *parser.Pattern) (*Graph, error) {
	b := nfaBuilder{g: &Graph{}}
	var pieces []*parser.Piece
	if p.Body != nil {
		pieces = p.Body.Pieces
	}
	nfa, err := b.buildSequence(pieces, 0)
	if err != nil {
		return nil, err
	}
	b.g.Start, b.g.End = nfa.start, nfa.end
	return b.g, nil
}

type nfaBuilder struct {
	g *Graph
}

type subNfa struct {
	start, end int
}

func (b *nfaBuilder) newSubNfa() subNfa {
	nfa := subNfa{start: b.g.newNode(), end: b.g.newNode()}
	b.g.Nodes[nfa.end].Accept = true
	return nfa
}

// buildSequence composes the pieces from the right, so each piece is attached
// to the already built continuation. Recursion only happens for groups.
func (b *nfaBuilder) buildSequence(pieces []*parser.Piece, depth int) (subNfa, error) {
	if depth > parser.MaxGroupDepth {
		return subNfa{}, fmt.Errorf("nfa: %w", parser.ErrNestingTooDeep)
	}

	var cont subNfa
	rest := pieces
	if n := len(pieces); n > 0 && !pieces[n-1].Star && pieces[n-1].Atom.Group == nil {
		// A trailing atom is its own fragment.
		cont = b.buildAtom(pieces[n-1].Atom)
		rest = pieces[:n-1]
	} else {
		cont = b.newSubNfa()
		b.g.newNilEdge(cont.start, cont.end)
	}

	for i := len(rest) - 1; i >= 0; i-- {
		unit, err := b.buildUnit(rest[i].Atom, depth)
		if err != nil {
			return subNfa{}, err
		}
		if rest[i].Star {
			cont = b.star(unit, cont)
		} else {
			cont = b.concat(unit, cont)
		}
	}
	return cont, nil
}

func (b *nfaBuilder) buildUnit(a *parser.Atom, depth int) (subNfa, error) {
	if a.Group != nil {
		return b.buildSequence(a.Group.Pieces, depth+1)
	}
	return b.buildAtom(a), nil
}

func (b *nfaBuilder) buildAtom(a *parser.Atom) subNfa {
	nfa := b.newSubNfa()
	if a.IsLiteral() {
		b.g.newLiteralEdge(nfa.start, nfa.end, a.Byte())
	} else {
		b.g.newWildEdge(nfa.start, nfa.end)
	}
	return nfa
}

// star repeats unit zero or more times before cont.
func (b *nfaBuilder) star(unit, cont subNfa) subNfa {
	start := b.g.newNode()
	b.g.newNilEdge(start, unit.start)
	b.g.newNilEdge(start, cont.start)
	b.g.newNilEdge(unit.start, cont.start)
	b.g.newNilEdge(unit.end, unit.start)
	b.g.Nodes[unit.end].Accept = false
	return subNfa{start: start, end: cont.end}
}

func (b *nfaBuilder) concat(unit, cont subNfa) subNfa {
	b.g.Nodes[unit.end].Accept = false
	b.g.newNilEdge(unit.end, cont.start)
	return subNfa{start: unit.start, end: cont.end}
}
