// Package depsearch translates dep_search expressions into query plans.
//
// The language is token expressions (bare words, L=lemma, UPOS tags,
// Key=Value features, quoted strings, combined with & | ! and parentheses)
// joined by dependency relations (> and < with an optional relation type),
// linear-distance relations (lin_min:max) and immediate precedence (.).
package depsearch

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/corpling/cqptree/internal/ir"
)

type tokenKind uint8

const (
	tEOF tokenKind = iota
	tLParen
	tRParen
	tAmp
	tPipe
	tBang
	tDot
	tPlus
	tArrow
	tAtom // word, Key=Value or quoted string
	tRel  // < or > with optional ! prefix, type and @L/@R suffix
)

type token struct {
	kind   tokenKind
	column int // 1-based rune column

	text   string // atom text, unquoted
	quoted bool

	rel relSpec
}

// relSpec is the scanned shape of a relation operator.
type relSpec struct {
	inverted bool   // '<': left operand is the dependent
	negated  bool   // '>!type'
	depType  string // empty for a bare '>' / '<'
	anchor   byte   // 0, 'L' or 'R'
}

type scanner struct {
	input  []rune
	pos    int
	tokens []token
}

func errorAt(column int, message string) error {
	return ir.ParseFailed(ir.ParseError{
		Position: "column " + strconv.Itoa(column),
		Message:  message,
	})
}

// scan tokenizes the whole input up front; the expressions are short
// enough that streaming buys nothing.
func scan(input string) ([]token, error) {
	s := &scanner{input: []rune(input)}
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		s.tokens = append(s.tokens, tok)
		if tok.kind == tEOF {
			return s.tokens, nil
		}
	}
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.input) {
		return utf8.RuneError
	}
	return s.input[s.pos]
}

func (s *scanner) next() (token, error) {
	for s.pos < len(s.input) && unicode.IsSpace(s.input[s.pos]) {
		s.pos++
	}
	column := s.pos + 1
	if s.pos >= len(s.input) {
		return token{kind: tEOF, column: column}, nil
	}

	r := s.input[s.pos]
	switch r {
	case '(':
		s.pos++
		return token{kind: tLParen, column: column}, nil
	case ')':
		s.pos++
		return token{kind: tRParen, column: column}, nil
	case '&':
		s.pos++
		return token{kind: tAmp, column: column}, nil
	case '|':
		s.pos++
		return token{kind: tPipe, column: column}, nil
	case '!':
		s.pos++
		return token{kind: tBang, column: column}, nil
	case '.':
		s.pos++
		return token{kind: tDot, column: column}, nil
	case '+':
		s.pos++
		return token{kind: tPlus, column: column}, nil
	case '-':
		if s.pos+1 < len(s.input) && s.input[s.pos+1] == '>' {
			s.pos += 2
			return token{kind: tArrow, column: column}, nil
		}
		return token{}, errorAt(column, "unexpected character '-'")
	case '<', '>':
		return s.scanRelation(column)
	case '"':
		return s.scanQuoted(column)
	}

	if isAtomRune(r) {
		return s.scanAtom(column), nil
	}
	return token{}, errorAt(column, "unexpected character "+strconv.QuoteRune(r))
}

func (s *scanner) scanRelation(column int) (token, error) {
	spec := relSpec{inverted: s.input[s.pos] == '<'}
	s.pos++

	if s.peek() == '!' {
		spec.negated = true
		s.pos++
	}

	start := s.pos
	for s.pos < len(s.input) && isRelTypeRune(s.input[s.pos]) {
		s.pos++
	}
	spec.depType = string(s.input[start:s.pos])

	if s.peek() == '@' {
		s.pos++
		switch s.peek() {
		case 'L', 'R':
			spec.anchor = byte(s.input[s.pos])
			s.pos++
		default:
			return token{}, errorAt(s.pos, "expected L or R after '@'")
		}
	}
	return token{kind: tRel, column: column, rel: spec}, nil
}

func (s *scanner) scanQuoted(column int) (token, error) {
	s.pos++ // opening quote
	start := s.pos
	for s.pos < len(s.input) && s.input[s.pos] != '"' {
		s.pos++
	}
	if s.pos >= len(s.input) {
		return token{}, errorAt(column, "unterminated string literal")
	}
	text := string(s.input[start:s.pos])
	s.pos++ // closing quote
	return token{kind: tAtom, column: column, text: text, quoted: true}, nil
}

func (s *scanner) scanAtom(column int) token {
	start := s.pos
	for s.pos < len(s.input) && isAtomRune(s.input[s.pos]) {
		s.pos++
	}
	// A Key=Value pair is one atom.
	if s.peek() == '=' {
		s.pos++
		for s.pos < len(s.input) && isAtomRune(s.input[s.pos]) {
			s.pos++
		}
	}
	return token{kind: tAtom, column: column, text: string(s.input[start:s.pos])}
}

func isAtomRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isRelTypeRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == ':' || r == '_' || r == '-'
}
