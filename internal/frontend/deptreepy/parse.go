package deptreepy

import (
	"strconv"
	"strings"

	"github.com/corpling/cqptree/internal/ir"
)

// sexpr is one node of the parenthesized input.
//
// Sealed: atom and list.
type sexpr interface {
	sexprNode()
}

type atom string

type list []sexpr

func (atom) sexprNode() {}
func (list) sexprNode() {}

// parse reads the first complete expression. Inputs not starting with a
// parenthesis are wrapped in one, so "LEMMA hus" and "(LEMMA hus)" are the
// same pattern. Input after the closing parenthesis is ignored.
func parse(input string) (list, error) {
	if !strings.HasPrefix(input, "(") {
		input = "(" + input + ")"
	}
	r := &reader{input: input, line: 1, col: 1}
	r.advance() // the opening parenthesis
	return r.readList()
}

type reader struct {
	input string
	pos   int
	line  int
	col   int
}

func (r *reader) fail(msg string) error {
	return ir.ParseFailed(ir.ParseError{
		Position: "line " + strconv.Itoa(r.line) + ", col " + strconv.Itoa(r.col),
		Message:  msg,
	})
}

func (r *reader) eof() bool {
	return r.pos >= len(r.input)
}

func (r *reader) peek() byte {
	return r.input[r.pos]
}

func (r *reader) advance() byte {
	c := r.input[r.pos]
	r.pos++
	if c == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	return c
}

func (r *reader) skipSpace() {
	for !r.eof() {
		switch r.peek() {
		case ' ', '\t', '\r', '\n':
			r.advance()
		default:
			return
		}
	}
}

// readList reads items until the matching closing parenthesis; the opening
// one has already been consumed.
func (r *reader) readList() (list, error) {
	items := list{}
	for {
		r.skipSpace()
		if r.eof() {
			return nil, r.fail("unterminated expression")
		}
		switch r.peek() {
		case ')':
			r.advance()
			return items, nil
		case '(':
			r.advance()
			sub, err := r.readList()
			if err != nil {
				return nil, err
			}
			items = append(items, sub)
		default:
			items = append(items, r.readAtom())
		}
	}
}

func (r *reader) readAtom() atom {
	start := r.pos
	for !r.eof() {
		switch r.peek() {
		case ' ', '\t', '\r', '\n', '(', ')':
			return atom(r.input[start:r.pos])
		}
		r.advance()
	}
	return atom(r.input[start:])
}
