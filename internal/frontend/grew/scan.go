// Package grew translates Grew pattern requests into query plans.
//
// A request is a pattern block followed by any number of with/without
// blocks. Pattern bodies hold node clauses (X [upos=VERB, !Number]), edge
// clauses (X -[nsubj]-> Y), order clauses (X << Y, X < Y) and constraint
// clauses (X.lemma = Y.lemma). with blocks become additional query parts,
// without blocks negative ones.
package grew

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/corpling/cqptree/internal/ir"
)

type tokenKind uint8

const (
	tEOF tokenKind = iota
	tIdent
	tString    // "…", unquoted text
	tRegex     // re"…", unquoted pattern
	tPCRE      // /…/flags
	tLBrace    // {
	tRBrace    // }
	tLBracket  // [
	tRBracket  // ]
	tComma     // ,
	tSemicolon // ;
	tBang      // !
	tEquals    // =
	tNotEquals // <>
	tPipe      // |
	tCaret     // ^
	tDot       // .
	tBefore    // <<
	tNextTo    // <
	tArrow     // ->
	tEdgeOpen  // -[
	tEdgeClose // ]->
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

type scanner struct {
	input []rune
	pos   int
	line  int
	col   int
}

func errorAt(line, col int, message string) error {
	return ir.ParseFailed(ir.ParseError{
		Position: strconv.Itoa(line) + ", " + strconv.Itoa(col),
		Message:  message,
	})
}

func scan(input string) ([]token, error) {
	s := &scanner{input: []rune(input), line: 1, col: 1}
	var tokens []token
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.kind == tEOF {
			return tokens, nil
		}
	}
}

func (s *scanner) advance() rune {
	r := s.input[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.input) {
		return utf8.RuneError
	}
	return s.input[s.pos]
}

func (s *scanner) peekAt(offset int) rune {
	if s.pos+offset >= len(s.input) {
		return utf8.RuneError
	}
	return s.input[s.pos+offset]
}

func (s *scanner) next() (token, error) {
	for s.pos < len(s.input) {
		if unicode.IsSpace(s.peek()) {
			s.advance()
			continue
		}
		// Grew line comments run to the end of the line.
		if s.peek() == '%' {
			for s.pos < len(s.input) && s.peek() != '\n' {
				s.advance()
			}
			continue
		}
		break
	}

	tok := token{line: s.line, col: s.col}
	if s.pos >= len(s.input) {
		tok.kind = tEOF
		return tok, nil
	}

	switch r := s.peek(); r {
	case '{':
		s.advance()
		tok.kind = tLBrace
	case '}':
		s.advance()
		tok.kind = tRBrace
	case '[':
		s.advance()
		tok.kind = tLBracket
	case ']':
		s.advance()
		if s.peek() == '-' && s.peekAt(1) == '>' {
			s.advance()
			s.advance()
			tok.kind = tEdgeClose
		} else {
			tok.kind = tRBracket
		}
	case ',':
		s.advance()
		tok.kind = tComma
	case ';':
		s.advance()
		tok.kind = tSemicolon
	case '!':
		s.advance()
		tok.kind = tBang
	case '=':
		s.advance()
		tok.kind = tEquals
	case '|':
		s.advance()
		tok.kind = tPipe
	case '^':
		s.advance()
		tok.kind = tCaret
	case '.':
		s.advance()
		tok.kind = tDot
	case '<':
		s.advance()
		switch s.peek() {
		case '>':
			s.advance()
			tok.kind = tNotEquals
		case '<':
			s.advance()
			tok.kind = tBefore
		default:
			tok.kind = tNextTo
		}
	case '-':
		s.advance()
		switch s.peek() {
		case '>':
			s.advance()
			tok.kind = tArrow
		case '[':
			s.advance()
			tok.kind = tEdgeOpen
		default:
			return token{}, errorAt(tok.line, tok.col, "unexpected character '-'")
		}
	case '"':
		text, err := s.scanString(tok.line, tok.col)
		if err != nil {
			return token{}, err
		}
		tok.kind = tString
		tok.text = text
	case '/':
		if err := s.scanPCRE(tok.line, tok.col); err != nil {
			return token{}, err
		}
		tok.kind = tPCRE
	default:
		if !isIdentRune(r) {
			return token{}, errorAt(tok.line, tok.col, "unexpected character "+strconv.QuoteRune(r))
		}
		text := s.scanIdent()
		if text == "re" && s.peek() == '"' {
			pattern, err := s.scanString(tok.line, tok.col)
			if err != nil {
				return token{}, err
			}
			tok.kind = tRegex
			tok.text = pattern
		} else {
			tok.kind = tIdent
			tok.text = text
		}
	}
	return tok, nil
}

func (s *scanner) scanIdent() string {
	start := s.pos
	for s.pos < len(s.input) && isIdentRune(s.peek()) {
		s.advance()
	}
	return string(s.input[start:s.pos])
}

func (s *scanner) scanString(line, col int) (string, error) {
	s.advance() // opening quote
	start := s.pos
	for s.pos < len(s.input) && s.peek() != '"' {
		s.advance()
	}
	if s.pos >= len(s.input) {
		return "", errorAt(line, col, "unterminated string literal")
	}
	text := string(s.input[start:s.pos])
	s.advance() // closing quote
	return text, nil
}

// scanPCRE consumes a /pattern/flags literal. The value is discarded since
// translation rejects PCRE anyway; only its extent matters.
func (s *scanner) scanPCRE(line, col int) error {
	s.advance() // opening slash
	for s.pos < len(s.input) && s.peek() != '/' {
		s.advance()
	}
	if s.pos >= len(s.input) {
		return errorAt(line, col, "unterminated PCRE literal")
	}
	s.advance() // closing slash
	for s.pos < len(s.input) && unicode.IsLetter(s.peek()) {
		s.advance()
	}
	return nil
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
