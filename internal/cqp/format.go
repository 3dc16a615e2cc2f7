package cqp

import (
	"strconv"
	"strings"

	"github.com/corpling/cqptree/internal/ir"
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz"

// environment maps identifiers that are referenced across token boundaries
// to their short printable names.
type environment map[ir.Identifier]string

// Format renders a linear query as CQP text. Only identifiers referenced
// across token boundaries receive names (a, b, ..., z, aa, ...); names are
// assigned in first-appearance order of a left-to-right tree walk, so the
// output is stable for a fixed tree.
func Format(q Query) string {
	env := environment{}
	for i, id := range crossRefs(q) {
		env[id] = alphaName(tokenAlphabet, i)
	}
	return formatQuery(q, env)
}

// crossRefs collects, in deterministic tree order, every identifier some
// token's committed predicates or dependencies point at from the outside.
func crossRefs(q Query) []ir.Identifier {
	var ordered []ir.Identifier
	seen := ir.IdentifierSet{}
	add := func(id ir.Identifier) {
		if id != ir.NoIdentifier && !seen.Has(id) {
			seen.Add(id)
			ordered = append(ordered, id)
		}
	}

	var walk func(q Query)
	walk = func(q Query) {
		switch node := q.(type) {
		case *Token:
			for _, d := range node.Dependencies {
				if d.Src != node.ID {
					add(d.Src)
				}
				if d.Dst != node.ID {
					add(d.Dst)
				}
			}
			for _, p := range node.Predicates {
				walkPredicateRefs(p, func(id ir.Identifier) {
					if id != node.ID {
						add(id)
					}
				})
			}
		case *Sequence:
			walk(node.LHS)
			walk(node.RHS)
		case *Operator:
			for _, sub := range node.Queries {
				walk(sub)
			}
		case *Region:
			walk(node.Inner)
		}
	}
	walk(q)
	return ordered
}

// walkPredicateRefs visits attribute references in source order.
func walkPredicateRefs(p ir.Predicate, visit func(ir.Identifier)) {
	switch pred := p.(type) {
	case ir.Comparison:
		walkOperandRefs(pred.LHS, visit)
		walkOperandRefs(pred.RHS, visit)
	case ir.Exists:
		visit(pred.Attr.Ref)
	case ir.Negation:
		walkPredicateRefs(pred.Inner, visit)
	case ir.Conjunction:
		for _, member := range pred.Preds {
			walkPredicateRefs(member, visit)
		}
	case ir.Disjunction:
		for _, member := range pred.Preds {
			walkPredicateRefs(member, visit)
		}
	}
}

func walkOperandRefs(o ir.Operand, visit func(ir.Identifier)) {
	if attr, ok := o.(ir.Attribute); ok {
		visit(attr.Ref)
	}
}

func formatQuery(q Query, env environment) string {
	switch node := q.(type) {
	case *Token:
		return formatToken(node, env)
	case *Sequence:
		return formatSequence(node, env)
	case *Operator:
		parts := make([]string, len(node.Queries))
		for i, sub := range node.Queries {
			switch sub.(type) {
			case *Token, *Sequence:
				parts[i] = formatQuery(sub, env)
			default:
				parts[i] = "(" + formatQuery(sub, env) + ")"
			}
		}
		return strings.Join(parts, " "+node.Symbol+" ")
	case *Region:
		text := formatQuery(node.Inner, env)
		if node.OpenStart {
			text = "<s> " + text
		}
		if node.CloseEnd {
			text = text + " </s>"
		}
		return text
	default:
		return ""
	}
}

func formatToken(t *Token, env environment) string {
	prefix := ""
	if name, ok := env[t.ID]; ok {
		prefix = name + ":"
	}

	var parts []string
	for _, p := range t.Predicates {
		// Predicates on a token are already conjunct; expand a top-level
		// conjunction instead of parenthesizing it.
		if conj, ok := p.(ir.Conjunction); ok {
			for _, member := range conj.Preds {
				parts = append(parts, formatPredicate(member, env))
			}
		} else {
			parts = append(parts, formatPredicate(p, env))
		}
	}
	for _, d := range t.Dependencies {
		if d.Src == t.ID {
			parts = append(parts, env[d.Dst]+".dephead = ref")
		} else {
			parts = append(parts, "dephead = "+env[d.Src]+".ref")
		}
	}

	return prefix + "[" + strings.Join(parts, " & ") + "]"
}

func formatSequence(s *Sequence, env environment) string {
	sub := func(q Query) string {
		text := formatQuery(q, env)
		switch q.(type) {
		case *Token, *Sequence:
			return text
		default:
			return "(" + text + ")"
		}
	}

	parts := []string{sub(s.LHS)}
	if gap := formatSpacing(s.Spacing); gap != "" {
		parts = append(parts, gap)
	}
	parts = append(parts, sub(s.RHS))
	return strings.Join(parts, " ")
}

func formatSpacing(s Spacing) string {
	switch {
	case s.Min == 0 && s.Max == Unbounded:
		return "[]*"
	case s.Min == s.Max:
		return strings.TrimSuffix(strings.Repeat("[] ", s.Min), " ")
	case s.Max == Unbounded:
		return "[]{" + strconv.Itoa(s.Min) + ",}"
	default:
		return "[]{" + strconv.Itoa(s.Min) + "," + strconv.Itoa(s.Max) + "}"
	}
}

func formatPredicate(p ir.Predicate, env environment) string {
	switch pred := p.(type) {
	case ir.Comparison:
		return "(" + formatOperand(pred.LHS, env) + " " + pred.Op + " " + formatOperand(pred.RHS, env) + ")"
	case ir.Exists:
		return formatOperand(pred.Attr, env)
	case ir.Negation:
		return "!" + formatPredicate(pred.Inner, env)
	case ir.Conjunction:
		return formatJunction(pred.Preds, "&", env)
	case ir.Disjunction:
		return formatJunction(pred.Preds, "|", env)
	default:
		return ""
	}
}

func formatJunction(preds []ir.Predicate, symbol string, env environment) string {
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = formatPredicate(p, env)
	}
	return "(" + strings.Join(parts, " "+symbol+" ") + ")"
}

func formatOperand(o ir.Operand, env environment) string {
	switch op := o.(type) {
	case ir.Literal:
		return op.Value
	case ir.Attribute:
		if op.Ref != ir.NoIdentifier {
			return env[op.Ref] + "." + op.Name
		}
		return op.Name
	default:
		return ""
	}
}

// alphaName yields a, b, ..., z, aa, ab, ... for i = 0, 1, ...
func alphaName(alphabet string, i int) string {
	n := len(alphabet)
	name := ""
	for i++; i > 0; i /= n {
		i--
		name = string(alphabet[i%n]) + name
	}
	return name
}

