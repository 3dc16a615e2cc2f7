// Package deptreepy translates deptreepy tree patterns, a lisp-style
// notation where (FIELD value) matches a token field and (TREE_ root
// dep...) matches a subtree rooted at a token.
package deptreepy

import (
	"strings"

	"github.com/corpling/cqptree/internal/ir"
)

// Translate translates one deptreepy pattern into a plan. AND and OR over
// token constraints stay predicates on a single token; over subtree
// patterns they become set operations on separate queries.
func Translate(input string) (*ir.Plan, error) {
	expr, err := parse(input)
	if err != nil {
		return nil, err
	}

	alloc := ir.NewAllocator()
	t := &translator{alloc: alloc, builder: ir.NewPlanBuilder(alloc)}

	res, err := t.convert(expr)
	if err != nil {
		return nil, err
	}
	goal, err := t.promote(res)
	if err != nil {
		return nil, err
	}
	t.builder.SetGoal(goal.id)
	return t.builder.Build()
}

type translator struct {
	alloc   *ir.Allocator
	builder *ir.PlanBuilder
}

// result is what converting one expression yields.
//
// Sealed: tokenConstraint, treeConstraint and queryStep.
type result interface {
	resultNode()
}

// tokenConstraint restricts a single token. A nil predicate matches any.
type tokenConstraint struct {
	pred ir.Predicate
}

// treeConstraint is a root token plus the dependents hanging off it.
type treeConstraint struct {
	root   ir.Token
	tokens []ir.Token
	deps   []ir.Dependency
}

// queryStep names a finished step of the plan under construction.
type queryStep struct {
	id ir.Identifier
}

func (tokenConstraint) resultNode() {}
func (*treeConstraint) resultNode() {}
func (queryStep) resultNode()       {}

// asTree views a result as a subtree. Token constraints become a fresh
// single-token tree; plan steps cannot, since their matches are no longer
// individual tokens.
func (t *translator) asTree(r result) (*treeConstraint, error) {
	switch v := r.(type) {
	case *treeConstraint:
		return v, nil
	case tokenConstraint:
		token := ir.Token{ID: t.alloc.Fresh(), Attrs: v.pred}
		return &treeConstraint{root: token, tokens: []ir.Token{token}}, nil
	default:
		return nil, ir.NotSupported("a set operation cannot be nested inside TREE_")
	}
}

// promote turns any result into a plan step.
func (t *translator) promote(r result) (queryStep, error) {
	if step, ok := r.(queryStep); ok {
		return step, nil
	}
	tree, err := t.asTree(r)
	if err != nil {
		return queryStep{}, err
	}
	q, err := ir.NewQuery(t.alloc, tree.tokens, tree.deps, nil, nil)
	if err != nil {
		return queryStep{}, err
	}
	return queryStep{id: t.builder.AddQuery(q)}, nil
}

func (t *translator) convert(expr sexpr) (result, error) {
	items, ok := expr.(list)
	if !ok {
		return nil, ir.NotSupported("unsupported expression: %s", string(expr.(atom)))
	}
	if len(items) == 0 {
		return nil, ir.NotSupported("empty expression")
	}

	if head, ok := items[0].(atom); ok && head == "TREE" {
		// TREE demands an exhaustive match of all dependents.
		return nil, ir.NotSupported("only TREE_ is supported for matching subtrees")
	}
	if len(items) == 1 {
		return t.convert(items[0])
	}

	if head, ok := items[0].(atom); ok {
		switch head {
		case "TREE_":
			return t.convertTree(items[1:])
		case "AND":
			return t.convertJunction(items[1:], ir.OpConjunction)
		case "OR":
			return t.convertJunction(items[1:], ir.OpDisjunction)
		case "NOT":
			return t.convertNegation(items[1:])
		}
	}
	return t.convertComparison(items)
}

func (t *translator) convertTree(args []sexpr) (result, error) {
	root, err := t.convert(args[0])
	if err != nil {
		return nil, err
	}
	tree, err := t.asTree(root)
	if err != nil {
		return nil, err
	}

	for _, arg := range args[1:] {
		dep, err := t.convert(arg)
		if err != nil {
			return nil, err
		}
		sub, err := t.asTree(dep)
		if err != nil {
			return nil, err
		}
		tree.deps = append(tree.deps, ir.Dependency{Src: tree.root.ID, Dst: sub.root.ID})
		tree.tokens = append(tree.tokens, sub.tokens...)
		tree.deps = append(tree.deps, sub.deps...)
	}
	return tree, nil
}

// convertJunction keeps AND/OR over plain token constraints as a predicate
// junction; as soon as one operand is a subtree or a plan step, every
// operand is promoted and the junction becomes chained set operations.
func (t *translator) convertJunction(args []sexpr, op ir.SetOp) (result, error) {
	parts := make([]result, 0, len(args))
	plain := true
	for _, arg := range args {
		part, err := t.convert(arg)
		if err != nil {
			return nil, err
		}
		if _, ok := part.(tokenConstraint); !ok {
			plain = false
		}
		parts = append(parts, part)
	}

	if plain {
		var preds []ir.Predicate
		for _, part := range parts {
			if pred := part.(tokenConstraint).pred; pred != nil {
				preds = append(preds, pred)
			}
		}
		if len(preds) == 0 {
			return tokenConstraint{}, nil
		}
		var pred ir.Predicate
		var err error
		if op == ir.OpDisjunction {
			pred, err = ir.DisjunctionOf(preds)
		} else {
			pred, err = ir.ConjunctionOf(preds)
		}
		if err != nil {
			return nil, err
		}
		return tokenConstraint{pred: pred}, nil
	}

	acc, err := t.promote(parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		step, err := t.promote(part)
		if err != nil {
			return nil, err
		}
		acc = queryStep{id: t.builder.AddOperation(acc.id, op, step.id)}
	}
	return acc, nil
}

func (t *translator) convertNegation(args []sexpr) (result, error) {
	if len(args) != 1 {
		return nil, ir.NotSupported("NOT requires exactly 1 argument, got %d", len(args))
	}
	negated, err := t.convert(args[0])
	if err != nil {
		return nil, err
	}
	constraint, ok := negated.(tokenConstraint)
	if !ok || constraint.pred == nil {
		return nil, ir.NotSupported("searching for the absence of dependencies with NOT is not supported")
	}
	return tokenConstraint{pred: ir.Negation{Inner: constraint.pred}}, nil
}

// convertComparison handles (FIELD value) and (FIELD IN value...). A field
// name ending in underscore matches anywhere inside a set-valued field.
func (t *translator) convertComparison(items list) (result, error) {
	compare, err := fieldComparison(items[0])
	if err != nil {
		return nil, err
	}

	if in, ok := items[1].(atom); ok && in == "IN" {
		if len(items) == 2 {
			return nil, ir.NotSupported("IN requires at least one value")
		}
		var preds []ir.Predicate
		for _, v := range items[2:] {
			pred, err := compare(v)
			if err != nil {
				return nil, err
			}
			preds = append(preds, pred)
		}
		pred, err := ir.DisjunctionOf(preds)
		if err != nil {
			return nil, err
		}
		return tokenConstraint{pred: pred}, nil
	}

	if len(items) != 2 {
		return nil, ir.NotSupported("unsupported expression: %s", render(items))
	}
	pred, err := compare(items[1])
	if err != nil {
		return nil, err
	}
	return tokenConstraint{pred: pred}, nil
}

func fieldComparison(field sexpr) (func(sexpr) (ir.Predicate, error), error) {
	name, ok := field.(atom)
	if !ok {
		return nil, ir.NotSupported("the matched field must be a plain name")
	}

	op := "="
	text := string(name)
	if strings.HasSuffix(text, "_") {
		text = strings.TrimSuffix(text, "_")
		op = "contains"
	}
	attr := ir.Attribute{Name: text}

	return func(v sexpr) (ir.Predicate, error) {
		value, ok := v.(atom)
		if !ok {
			return nil, ir.NotSupported("the matched value must be a plain string")
		}
		// Values pass through unescaped; deptreepy treats them as regular
		// expression patterns.
		return ir.Comparison{LHS: attr, Op: op, RHS: ir.NewRegexLiteral(string(value))}, nil
	}, nil
}

func render(expr sexpr) string {
	switch v := expr.(type) {
	case atom:
		return string(v)
	default:
		parts := make([]string, len(v.(list)))
		for i, item := range v.(list) {
			parts[i] = render(item)
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
}
