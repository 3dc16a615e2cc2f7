package depsearch

import (
	"strconv"
	"strings"

	"github.com/corpling/cqptree/internal/ir"
)

// node is one token of the parsed expression together with the relations
// hanging off it. Relations always attach to the leftmost token of their
// (sub)expression; parentheses open a new leftmost token.
type node struct {
	pred ir.Predicate // nil for the wildcard token
	rels []relation
}

type relKind uint8

const (
	relDep relKind = iota
	relLin
	relAdjacent
)

type relation struct {
	kind    relKind
	spec    relSpec
	minDist int // relLin
	maxDist int
	child   *node
}

type parser struct {
	tokens []token
	pos    int
}

func parse(input string) (*node, error) {
	tokens, err := scan(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tEOF {
		return nil, errorAt(tok.column, "unexpected trailing input")
	}
	return root, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tEOF {
		p.pos++
	}
	return tok
}

// parseExpr parses one token expression and every relation chained onto
// it. All chained relations attach to the expression's leftmost token.
func (p *parser) parseExpr() (*node, error) {
	root, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}

	for {
		switch tok := p.peek(); tok.kind {
		case tRel, tDot:
			rel, err := p.parseRelation()
			if err != nil {
				return nil, err
			}
			root.rels = append(root.rels, rel)
		case tBang:
			// A stray negation here is either a negated dependency
			// expression (not supported) or plain garbage.
			if _, err := p.parseUnary(); err != nil {
				return nil, err
			}
			return nil, errorAt(tok.column, "expected a relation")
		case tArrow:
			return nil, ir.NotSupported("all-quantified queries cannot be translated")
		case tPlus:
			return nil, ir.NotSupported("disjunctions of whole queries cannot be translated")
		default:
			return root, nil
		}
	}
}

func (p *parser) parseRelation() (relation, error) {
	tok := p.advance()

	if tok.kind == tDot {
		child, err := p.parseOperand()
		if err != nil {
			return relation{}, err
		}
		return relation{kind: relAdjacent, child: child}, nil
	}

	// '>amod|>nmod' scans as REL PIPE REL.
	if p.peek().kind == tPipe && p.tokens[p.pos+1].kind == tRel {
		return relation{}, ir.NotSupported("disjunctions of dependency relations cannot be translated")
	}

	rel := relation{kind: relDep, spec: tok.rel}
	if strings.HasPrefix(tok.rel.depType, "lin_") {
		min, max, err := parseLinRange(tok.column, tok.rel.depType)
		if err != nil {
			return relation{}, err
		}
		rel.kind = relLin
		rel.minDist, rel.maxDist = min, max
	}

	child, err := p.parseOperand()
	if err != nil {
		return relation{}, err
	}
	rel.child = child
	return rel, nil
}

func parseLinRange(column int, depType string) (int, int, error) {
	bounds := strings.TrimPrefix(depType, "lin_")
	low, high, found := strings.Cut(bounds, ":")
	if !found {
		return 0, 0, errorAt(column, "expected lin_min:max")
	}
	min, err := strconv.Atoi(low)
	if err != nil {
		return 0, 0, errorAt(column, "lin bound "+strconv.Quote(low)+" is not an integer")
	}
	max, err := strconv.Atoi(high)
	if err != nil {
		return 0, 0, errorAt(column, "lin bound "+strconv.Quote(high)+" is not an integer")
	}
	if min < 0 || max < min {
		return 0, 0, errorAt(column, "invalid lin range "+bounds)
	}
	return min, max, nil
}

// parseOperand parses the right-hand side of a relation: a token
// expression, or a parenthesized subexpression with its own relations.
func (p *parser) parseOperand() (*node, error) {
	return p.parseDisjunction()
}

func (p *parser) parseDisjunction() (*node, error) {
	left, err := p.parseConjunction()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tPipe {
		p.advance()
		right, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		left, err = combine(left, right, func(preds []ir.Predicate) (ir.Predicate, error) {
			return ir.DisjunctionOf(preds)
		})
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) parseConjunction() (*node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tAmp {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left, err = combine(left, right, func(preds []ir.Predicate) (ir.Predicate, error) {
			return ir.ConjunctionOf(preds)
		})
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// combine merges two relation-free token expressions into one token.
func combine(left, right *node, junction func([]ir.Predicate) (ir.Predicate, error)) (*node, error) {
	if len(left.rels) > 0 || len(right.rels) > 0 {
		return nil, ir.NotSupported("boolean operators over dependency expressions cannot be translated")
	}
	if left.pred == nil {
		return right, nil
	}
	if right.pred == nil {
		return left, nil
	}
	pred, err := junction([]ir.Predicate{left.pred, right.pred})
	if err != nil {
		return nil, err
	}
	return &node{pred: pred}, nil
}

func (p *parser) parseUnary() (*node, error) {
	if p.peek().kind == tBang {
		bang := p.advance()
		if p.peek().kind == tRel {
			return nil, ir.NotSupported("absence of a dependency relation cannot be translated")
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if len(inner.rels) > 0 {
			return nil, ir.NotSupported("negated dependency expressions cannot be translated")
		}
		if inner.pred == nil {
			return nil, errorAt(bang.column, "cannot negate the wildcard token")
		}
		return &node{pred: ir.Negation{Inner: inner.pred}}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (*node, error) {
	switch tok := p.peek(); tok.kind {
	case tLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.advance(); closing.kind != tRParen {
			return nil, errorAt(closing.column, "expected ')'")
		}
		return inner, nil
	case tAtom:
		p.advance()
		return &node{pred: atomPredicate(tok)}, nil
	case tRel:
		return nil, ir.NotSupported("a dependency relation cannot stand in for a token expression")
	default:
		return nil, errorAt(tok.column, "expected a token expression")
	}
}
