package regex

import (
	"fmt"
	"io"

	"github.com/liran-funaro/cgrep/graph"
	"github.com/liran-funaro/cgrep/parser"
)

// Regex is a compiled pattern. It is immutable once compiled and safe for
// concurrent use, until Release.
type Regex struct {
	pattern     string
	parsed      *parser.Pattern
	anchorStart bool
	anchorEnd   bool
	dfa         *graph.Graph

	// trans[s][b] is the state reached from s on byte b, or -1.
	trans  [][256]int32
	accept []bool
}

// Compile parses a pattern and compiles it to a DFA. Errors are *parser.ParseError.
func Compile(pattern string) (*Regex, error) {
	p, err := parser.Parse(pattern)
	if err != nil {
		return nil, err
	}
	nfa, err := graph.BuildNfa(p)
	if err != nil {
		return nil, &parser.ParseError{Pattern: pattern, Err: err}
	}
	dfa := graph.BuildDfa(nfa)
	nfa.Release(nil)

	r := &Regex{
		pattern:     pattern,
		parsed:      p,
		anchorStart: p.AnchorStart,
		anchorEnd:   p.AnchorEnd,
		dfa:         dfa,
	}
	r.buildTable()
	return r, nil
}

func MustCompile(pattern string) *Regex {
	r, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Regex) buildTable() {
	r.trans = make([][256]int32, r.dfa.Len())
	r.accept = make([]bool, r.dfa.Len())
	for s, n := range r.dfa.Nodes {
		r.accept[s] = n.Accept
		for b := 0; b < 256; b++ {
			next, ok := r.dfa.Step(s, byte(b))
			if !ok {
				next = -1
			}
			r.trans[s][b] = int32(next)
		}
	}
}

func (r *Regex) String() string {
	return r.pattern
}

func (r *Regex) AnchorStart() bool {
	return r.anchorStart
}

func (r *Regex) AnchorEnd() bool {
	return r.anchorEnd
}

// DFA returns the compiled automaton. It must not be modified.
func (r *Regex) DFA() *graph.Graph {
	return r.dfa
}

func (r *Regex) NumStates() int {
	return r.dfa.Len()
}

// Match reports whether b contains a match.
func (r *Regex) Match(b []byte) bool {
	return match(r, b)
}

// MatchString reports whether s contains a match.
func (r *Regex) MatchString(s string) bool {
	return match(r, s)
}

// MatchAt reports whether a match starts exactly at offset off of s,
// regardless of the start anchor.
func (r *Regex) MatchAt(s string, off int) bool {
	r.mustBeLive()
	return matchHere(r, s, off)
}

func match[T string | []byte](r *Regex, text T) bool {
	r.mustBeLive()
	if r.anchorStart {
		return matchHere(r, text, 0)
	}
	// The last offset is len(text), where only the empty string is left.
	for off := 0; off <= len(text); off++ {
		if matchHere(r, text, off) {
			return true
		}
	}
	return false
}

func matchHere[T string | []byte](r *Regex, text T, off int) bool {
	state := int32(r.dfa.Start)
	for i := off; ; i++ {
		if r.accept[state] && (!r.anchorEnd || i == len(text)) {
			return true
		}
		if i == len(text) {
			return false
		}
		state = r.trans[state][text[i]]
		if state < 0 {
			return false
		}
	}
}

func (r *Regex) mustBeLive() {
	if r.dfa.Released() {
		panic(&graph.InvariantError{Msg: fmt.Sprintf("match %q", r.pattern), Err: graph.ErrReleased})
	}
}

// Release drops the compiled automaton. The Regex cannot be used afterwards.
// rel may be nil.
func (r *Regex) Release(rel graph.Releaser) int {
	n := r.dfa.Release(rel)
	r.trans = nil
	r.accept = nil
	return n
}

// WriteNFADotGraph writes the NFA of the pattern in DOT format. The NFA is not
// kept after compilation, so it is built again.
func (r *Regex) WriteNFADotGraph(w io.Writer) error {
	nfa, err := graph.BuildNfa(r.parsed)
	if err != nil {
		return err
	}
	defer nfa.Release(nil)
	return graph.WriteDotGraph(w, nfa, "NFA")
}

func (r *Regex) WriteDFADotGraph(w io.Writer) error {
	r.mustBeLive()
	return graph.WriteDotGraph(w, r.dfa, "DFA")
}
