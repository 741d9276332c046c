package regex

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liran-funaro/cgrep/graph"
	"github.com/liran-funaro/cgrep/parser"
)

// nfaMatcher runs the NFA directly, tracking the set of live states.
type nfaMatcher struct {
	nfa         *graph.Graph
	anchorStart bool
	anchorEnd   bool
}

func newNfaMatcher(t *testing.T, pattern string) *nfaMatcher {
	t.Helper()
	p, err := parser.Parse(pattern)
	require.NoError(t, err, pattern)
	nfa, err := graph.BuildNfa(p)
	require.NoError(t, err, pattern)
	return &nfaMatcher{nfa: nfa, anchorStart: p.AnchorStart, anchorEnd: p.AnchorEnd}
}

func (m *nfaMatcher) matchHere(text string, off int) bool {
	set, accept := m.nfa.Closure(m.nfa.Start)
	for i := off; ; i++ {
		if accept && (!m.anchorEnd || i == len(text)) {
			return true
		}
		if i == len(text) {
			return false
		}
		var next []int
		for _, id := range set {
			for _, e := range m.nfa.Nodes[id].E {
				if e.Cond.Consumes() && e.Cond.Matches(text[i]) {
					next = append(next, e.Dst)
				}
			}
		}
		if len(next) == 0 {
			return false
		}
		set, accept = m.nfa.ClosureOf(next)
	}
}

func (m *nfaMatcher) match(text string) bool {
	if m.anchorStart {
		return m.matchHere(text, 0)
	}
	for off := 0; off <= len(text); off++ {
		if m.matchHere(text, off) {
			return true
		}
	}
	return false
}

func randomBody(rnd *rand.Rand, depth int) string {
	var sb strings.Builder
	for n := rnd.Intn(5); n > 0; n-- {
		switch k := rnd.Intn(10); {
		case k < 5:
			sb.WriteByte("abc"[rnd.Intn(3)])
		case k < 7:
			sb.WriteByte('.')
		case depth < 3:
			sb.WriteString("(" + randomBody(rnd, depth+1) + ")")
		default:
			sb.WriteByte('a')
		}
		if rnd.Intn(3) == 0 {
			sb.WriteByte('*')
		}
	}
	return sb.String()
}

func randomPattern(rnd *rand.Rand) string {
	p := randomBody(rnd, 0)
	if rnd.Intn(3) == 0 {
		p = "^" + p
	}
	if rnd.Intn(3) == 0 {
		p += "$"
	}
	return p
}

func randomText(rnd *rand.Rand) string {
	b := make([]byte, rnd.Intn(8))
	for i := range b {
		b[i] = "abcx"[rnd.Intn(4)]
	}
	return string(b)
}

func TestDfaAgreesWithNfa(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		pattern := randomPattern(rnd)
		re, err := Compile(pattern)
		require.NoError(t, err, pattern)
		oracle := newNfaMatcher(t, pattern)
		for j := 0; j < 40; j++ {
			text := randomText(rnd)
			require.Equal(t, oracle.match(text), re.MatchString(text), "%q on %q", pattern, text)
		}
	}
}

func TestUnanchoredIsSomeOffset(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 300; i++ {
		pattern := randomPattern(rnd)
		re := MustCompile(pattern)
		for j := 0; j < 20; j++ {
			text := randomText(rnd)
			if re.AnchorStart() {
				require.Equal(t, re.MatchAt(text, 0), re.MatchString(text))
				continue
			}
			some := false
			for off := 0; off <= len(text); off++ {
				some = some || re.MatchAt(text, off)
			}
			require.Equal(t, some, re.MatchString(text), "%q on %q", pattern, text)
		}
	}
}

func TestCompileTwiceSameLanguage(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		pattern := randomPattern(rnd)
		r1, r2 := MustCompile(pattern), MustCompile(pattern)
		for j := 0; j < 20; j++ {
			text := randomText(rnd)
			require.Equal(t, r1.MatchString(text), r2.MatchString(text), "%q on %q", pattern, text)
		}
	}
}
