package parser

import "strings"

// Pattern is a parsed regular expression. Anchors are kept as flags and never
// appear in Body.
type Pattern struct {
	AnchorStart bool
	AnchorEnd   bool
	Body        *Sequence
}

type Sequence struct {
	Pieces []*Piece `parser:"@@*"`
}

// Piece is an atom, optionally repeated zero or more times.
type Piece struct {
	Atom *Atom `parser:"@@"`
	Star bool  `parser:"@'*'?"`
}

type Atom struct {
	Group *Group `parser:"  @@"`
	Any   bool   `parser:"| @'.'"`
	Char  string `parser:"| @Char"`
}

type Group struct {
	Pieces []*Piece `parser:"'(' @@* ')'"`
}

// Byte returns the byte a literal atom matches.
func (a *Atom) Byte() byte {
	return a.Char[0]
}

func (a *Atom) IsLiteral() bool {
	return a.Group == nil && !a.Any
}

func (p *Pattern) String() string {
	var sb strings.Builder
	if p.AnchorStart {
		sb.WriteByte('^')
	}
	if p.Body != nil {
		writePieces(&sb, p.Body.Pieces)
	}
	if p.AnchorEnd {
		sb.WriteByte('$')
	}
	return sb.String()
}

func writePieces(sb *strings.Builder, pieces []*Piece) {
	for _, pc := range pieces {
		switch {
		case pc.Atom.Group != nil:
			sb.WriteByte('(')
			writePieces(sb, pc.Atom.Group.Pieces)
			sb.WriteByte(')')
		case pc.Atom.IsLiteral():
			sb.WriteString(pc.Atom.Char)
		default:
			sb.WriteByte('.')
		}
		if pc.Star {
			sb.WriteByte('*')
		}
	}
}
