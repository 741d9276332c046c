package parser

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

const (
	MaxPatternLength = 1 << 16
	MaxGroupDepth    = 256
)

var (
	ErrUnterminatedGroup = errors.New("missing ')'")
	ErrUnmatchedParen    = errors.New("unmatched ')'")
	ErrDanglingStar      = errors.New("missing argument to repetition operator '*'")
	ErrPatternTooLong    = errors.New("pattern too long")
	ErrNestingTooDeep    = errors.New("groups nested too deeply")
	ErrSyntax            = errors.New("syntax error")
)

// ParseError reports a malformed pattern. Offset is a byte offset into Pattern.
type ParseError struct {
	Pattern string
	Offset  int
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %d: %v", e.Pattern, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// The four operators, or a single character. Characters are split into
// bytes after parsing.
var patternLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Open", Pattern: `\(`},
	{Name: "Close", Pattern: `\)`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Char", Pattern: `[^()*.]`},
})

var sequenceParser = participle.MustBuild[Sequence](
	participle.Lexer(patternLexer),
)

// Parse splits the anchors off the pattern and parses what remains.
func Parse(pattern string) (*Pattern, error) {
	if len(pattern) > MaxPatternLength {
		return nil, &ParseError{Pattern: pattern, Offset: MaxPatternLength, Err: ErrPatternTooLong}
	}

	p := &Pattern{}
	body, base := pattern, 0
	if len(body) > 0 && body[0] == '^' {
		p.AnchorStart = true
		body, base = body[1:], 1
	}
	if len(body) > 0 && body[len(body)-1] == '$' {
		p.AnchorEnd = true
		body = body[:len(body)-1]
	}

	if off, err := validate(body); err != nil {
		return nil, &ParseError{Pattern: pattern, Offset: base + off, Err: err}
	}

	if body == "" {
		p.Body = &Sequence{}
		return p, nil
	}
	seq, err := sequenceParser.ParseString("", body)
	if err != nil {
		off := 0
		var perr participle.Error
		if errors.As(err, &perr) {
			off = perr.Position().Offset
		}
		return nil, &ParseError{Pattern: pattern, Offset: base + off, Err: fmt.Errorf("%w: %v", ErrSyntax, err)}
	}
	seq.Pieces = splitBytes(seq.Pieces)
	p.Body = seq
	return p, nil
}

// splitBytes rewrites every literal atom into one atom per byte. A star
// stays on the last byte, so "é*" repeats only 0xA9.
func splitBytes(pieces []*Piece) []*Piece {
	out := make([]*Piece, 0, len(pieces))
	for _, pc := range pieces {
		a := pc.Atom
		switch {
		case a.Group != nil:
			a.Group.Pieces = splitBytes(a.Group.Pieces)
			out = append(out, pc)
		case a.IsLiteral() && len(a.Char) > 1:
			for i := 0; i < len(a.Char); i++ {
				out = append(out, &Piece{Atom: &Atom{Char: a.Char[i : i+1]}})
			}
			out[len(out)-1].Star = pc.Star
		default:
			out = append(out, pc)
		}
	}
	return out
}

// validate reports the first structural error of a pattern body and its offset.
// Checking up front keeps the grammar free of error productions and bounds the
// parser's recursion.
func validate(body string) (int, error) {
	var open []int
	canRepeat := false
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			open = append(open, i)
			if len(open) > MaxGroupDepth {
				return i, ErrNestingTooDeep
			}
			canRepeat = false
		case ')':
			if len(open) == 0 {
				return i, ErrUnmatchedParen
			}
			open = open[:len(open)-1]
			canRepeat = true
		case '*':
			if !canRepeat {
				return i, ErrDanglingStar
			}
			canRepeat = false
		default:
			canRepeat = true
		}
	}
	if len(open) > 0 {
		return open[len(open)-1], ErrUnterminatedGroup
	}
	return 0, nil
}
