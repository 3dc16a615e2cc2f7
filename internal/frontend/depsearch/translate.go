package depsearch

import (
	"strings"

	"github.com/corpling/cqptree/internal/ir"
)

// Corpus attributes the expressions translate onto, matching the
// Språkbanken mapping the other front ends use.
const (
	attrWord   = "word"
	attrLemma  = "lemma"
	attrPOS    = "pos"
	attrFeats  = "ufeats"
	attrDeprel = "deprel"
)

// uposTags is the UD part-of-speech inventory. An all-caps atom matching
// one of these is a tag search rather than a word search.
var uposTags = map[string]bool{
	"ADJ": true, "ADP": true, "ADV": true, "AUX": true, "CCONJ": true,
	"DET": true, "INTJ": true, "NOUN": true, "NUM": true, "PART": true,
	"PRON": true, "PROPN": true, "PUNCT": true, "SCONJ": true, "SYM": true,
	"VERB": true, "X": true,
}

func attributeEquals(name, value string) ir.Predicate {
	return ir.Comparison{
		LHS: ir.Attribute{Name: name},
		Op:  "=",
		RHS: ir.NewLiteral(value),
	}
}

// atomPredicate maps one scanned atom to its token predicate.
//
// Quoted strings search the word form only. L=value searches the lemma,
// any other Key=Value pair is a morphological feature. A bare UPOS tag
// searches the part of speech; every other bare atom searches word form,
// lemma and features at once, which is how dep_search treats unqualified
// search terms.
func atomPredicate(tok token) ir.Predicate {
	text := tok.text
	if tok.quoted {
		return attributeEquals(attrWord, text)
	}
	if text == "_" {
		return nil
	}

	if key, value, found := strings.Cut(text, "="); found {
		if key == "L" {
			return attributeEquals(attrLemma, value)
		}
		return ir.Comparison{
			LHS: ir.Attribute{Name: attrFeats},
			Op:  "contains",
			RHS: ir.NewLiteral(text),
		}
	}

	if uposTags[text] {
		return attributeEquals(attrPOS, text)
	}
	return ir.Disjunction{Preds: []ir.Predicate{
		attributeEquals(attrWord, text),
		attributeEquals(attrLemma, text),
		ir.Comparison{
			LHS: ir.Attribute{Name: attrFeats},
			Op:  "contains",
			RHS: ir.NewLiteral(text),
		},
	}}
}

// Translate translates one dep_search expression into a plan.
func Translate(input string) (*ir.Plan, error) {
	root, err := parse(input)
	if err != nil {
		return nil, err
	}

	b := &builder{alloc: ir.NewAllocator(), preds: map[ir.Identifier][]ir.Predicate{}}
	b.addNode(root)

	tokens := make([]ir.Token, len(b.order))
	for i, id := range b.order {
		attrs, err := ir.ConjunctionOf(b.preds[id])
		if err == nil {
			tokens[i] = ir.Token{ID: id, Attrs: attrs}
		} else {
			tokens[i] = ir.Token{ID: id}
		}
	}

	query, err := ir.NewQuery(b.alloc, tokens, b.deps, b.cons, nil)
	if err != nil {
		return nil, err
	}
	return ir.PlanOf(query), nil
}

// builder flattens the expression tree, allocating identifiers in
// left-to-right source order.
type builder struct {
	alloc *ir.Allocator
	order []ir.Identifier
	preds map[ir.Identifier][]ir.Predicate
	deps  []ir.Dependency
	cons  []ir.Constraint
}

func (b *builder) addNode(n *node) ir.Identifier {
	id := b.alloc.Fresh()
	b.order = append(b.order, id)
	if n.pred != nil {
		b.preds[id] = append(b.preds[id], n.pred)
	}

	for _, rel := range n.rels {
		child := b.addNode(rel.child)
		switch rel.kind {
		case relAdjacent:
			b.cons = append(b.cons,
				ir.Order{A: id, B: child},
				ir.Distance{A: id, B: child, Cmp: ir.CmpEqual, K: 0},
			)
		case relLin:
			b.cons = append(b.cons,
				ir.DistanceAtLeast(id, child, rel.minDist),
				ir.DistanceAtMost(id, child, rel.maxDist),
			)
			b.anchorOrder(rel.spec, id, child)
		case relDep:
			head, dependent := id, child
			if rel.spec.inverted {
				head, dependent = child, id
			}
			b.deps = append(b.deps, ir.Dependency{Src: head, Dst: dependent})
			if rel.spec.depType != "" {
				pred := attributeEquals(attrDeprel, rel.spec.depType)
				if rel.spec.negated {
					pred = ir.Negation{Inner: pred}
				}
				b.preds[dependent] = append(b.preds[dependent], pred)
			}
			b.anchorOrder(rel.spec, id, child)
		}
	}
	return id
}

// anchorOrder turns an @L or @R marker into an order constraint: @R puts
// the right operand after the left one, @L before it.
func (b *builder) anchorOrder(spec relSpec, left, right ir.Identifier) {
	switch spec.anchor {
	case 'R':
		b.cons = append(b.cons, ir.Order{A: left, B: right})
	case 'L':
		b.cons = append(b.cons, ir.Order{A: right, B: left})
	}
}
