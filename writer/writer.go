package writer

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/token"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/liran-funaro/cgrep/graph"
	"github.com/liran-funaro/cgrep/regex"
)

//go:embed matcher.tmpl
var matcherTemplate string

var tmpl = template.Must(template.New("matcher").Parse(matcherTemplate))

// MatcherBuilder writes a compiled Regex as a standalone Go function.
type MatcherBuilder struct {
	Package string
	Func    string
}

type matcherData struct {
	Pattern     string
	Package     string
	Func        string
	AnchorStart bool
	AnchorEnd   bool
	Start       int
	States      []stateData
}

type stateData struct {
	Id     int
	Accept bool
	Cases  []caseData
	Wild   int
}

type caseData struct {
	Bytes string
	Dst   int
}

func (b *MatcherBuilder) names() (string, string, error) {
	pkg, fn := b.Package, b.Func
	if pkg == "" {
		pkg = "main"
	}
	if fn == "" {
		fn = "Match"
	}
	for _, name := range []string{pkg, fn} {
		if !token.IsIdentifier(name) {
			return "", "", fmt.Errorf("invalid identifier: %q", name)
		}
	}
	return pkg, fn, nil
}

// Dump renders the matcher source for re, formatted.
func (b *MatcherBuilder) Dump(re *regex.Regex) ([]byte, error) {
	pkg, fn, err := b.names()
	if err != nil {
		return nil, err
	}
	dfa := re.DFA()
	if dfa.Released() {
		return nil, fmt.Errorf("dump %q: %w", re.String(), graph.ErrReleased)
	}

	data := matcherData{
		Pattern:     re.String(),
		Package:     pkg,
		Func:        fn,
		AnchorStart: re.AnchorStart(),
		AnchorEnd:   re.AnchorEnd(),
		Start:       dfa.Start,
	}
	for _, n := range dfa.Nodes {
		data.States = append(data.States, newStateData(n))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return imports.Process("matcher.go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
}

// newStateData merges the literal edges of a node that share a destination
// into one case.
func newStateData(n *graph.Node) stateData {
	s := stateData{Id: n.Id, Accept: n.Accept, Wild: -1}
	byDst := make(map[int][]string)
	var order []int
	for _, e := range n.E {
		switch e.Cond.Kind {
		case graph.KLiteral:
			if _, ok := byDst[e.Dst]; !ok {
				order = append(order, e.Dst)
			}
			byDst[e.Dst] = append(byDst[e.Dst], byteLiteral(e.Cond.B))
		case graph.KWild:
			s.Wild = e.Dst
		}
	}
	sort.Ints(order)
	for _, dst := range order {
		s.Cases = append(s.Cases, caseData{Bytes: strings.Join(byDst[dst], ", "), Dst: dst})
	}
	return s
}

func byteLiteral(b byte) string {
	if b >= 0x20 && b < 0x7f && b != '\'' && b != '\\' {
		return fmt.Sprintf("'%c'", b)
	}
	return fmt.Sprintf("0x%02x", b)
}
