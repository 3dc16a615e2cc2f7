package cqp

import (
	"strings"

	"github.com/corpling/cqptree/internal/ir"
)

const stepAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// StepKind distinguishes the two kinds of program steps.
type StepKind uint8

const (
	// StepQuery matches a linear query against the corpus.
	StepQuery StepKind = iota
	// StepOperation combines the match results of two earlier steps.
	StepOperation
)

// Step is one named step of a compiled program. Query steps carry the
// formatted query text; operation steps name their operands and operator.
type Step struct {
	Name string
	Kind StepKind

	// Query step.
	Text string

	// Operation step.
	LHS string
	Op  ir.SetOp
	RHS string
}

func (s Step) render() string {
	if s.Kind == StepOperation {
		return s.Name + " = " + s.LHS + " " + string(s.Op) + " " + s.RHS
	}
	return s.Name + " = " + s.Text
}

// Program is the compiled form of a plan: a list of sequential steps whose
// last relevant result is Goal. A plan with a single query and no parts
// compiles to a single query step.
type Program struct {
	Steps []Step
	Goal  string
}

// String renders the program. A single-step program is the bare query
// text; anything longer renders one named step per line.
func (p *Program) String() string {
	if len(p.Steps) == 1 {
		return p.Steps[0].Text
	}
	lines := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		lines[i] = s.render()
	}
	return strings.Join(lines, "\n")
}

// Primary is the first step's rendering; together with AdditionalSteps it
// splits the program for callers that present the first query separately.
func (p *Program) Primary() string {
	if len(p.Steps) == 1 {
		return p.Steps[0].Text
	}
	return p.Steps[0].render()
}

// AdditionalSteps renders every step after the first.
func (p *Program) AdditionalSteps() []string {
	if len(p.Steps) <= 1 {
		return nil
	}
	steps := make([]string, 0, len(p.Steps)-1)
	for _, s := range p.Steps[1:] {
		steps = append(steps, s.render())
	}
	return steps
}

// CompileQuery compiles a single stand-alone query to its program.
func CompileQuery(q *ir.Query) (*Program, error) {
	return CompilePlan(ir.PlanOf(q))
}

// CompilePlan compiles every query of the plan, chains each query's parts
// as set-operation steps in declaration order, and finally maps the plan's
// own operations over the results. Parts are not fused into their parent
// query; sequential execution of the steps is the contract.
func CompilePlan(plan *ir.Plan) (*Program, error) {
	program := &Program{}
	addStep := func(s Step) string {
		s.Name = alphaName(stepAlphabet, len(program.Steps))
		program.Steps = append(program.Steps, s)
		return s.Name
	}

	// effective maps a plan step identifier to the name of the program
	// step currently holding its result. A query's effective step moves
	// forward as its parts chain onto it.
	effective := map[ir.Identifier]string{}

	for _, q := range plan.Queries {
		text, err := compileBody(q.Tokens, q.Dependencies, q.Constraints, q.Predicates)
		if err != nil {
			return nil, err
		}
		effective[q.ID] = addStep(Step{Kind: StepQuery, Text: text})

		for _, part := range q.Parts {
			text, err := compilePart(q, part)
			if err != nil {
				return nil, err
			}
			partName := addStep(Step{Kind: StepQuery, Text: text})

			op := ir.OpConjunction
			if part.Kind == ir.PartNegative {
				op = ir.OpSubtraction
			}
			effective[q.ID] = addStep(Step{
				Kind: StepOperation,
				LHS:  effective[q.ID],
				Op:   op,
				RHS:  partName,
			})
		}
	}

	for _, op := range plan.Operations {
		effective[op.ID] = addStep(Step{
			Kind: StepOperation,
			LHS:  effective[op.LHS],
			Op:   op.Op,
			RHS:  effective[op.RHS],
		})
	}

	program.Goal = effective[plan.Goal]
	return program, nil
}

// compilePart compiles one additional or negative part. Inherited
// identifiers the part references re-match as bare tokens, in the parent's
// declaration order, ahead of the part's own tokens.
func compilePart(q *ir.Query, part ir.Part) (string, error) {
	local := ir.IdentifierSet{}
	for _, t := range part.Tokens {
		local.Add(t.ID)
	}

	referenced := ir.IdentifierSet{}
	for _, d := range part.Dependencies {
		referenced.AddAll(d.Refs())
	}
	for _, c := range part.Constraints {
		referenced.AddAll(c.Refs())
	}
	for _, p := range part.Predicates {
		referenced.AddAll(p.Refs())
	}
	for _, t := range part.Tokens {
		if t.Attrs != nil {
			referenced.AddAll(t.Attrs.Refs())
		}
	}

	var tokens []ir.Token
	for _, t := range q.Tokens {
		if referenced.Has(t.ID) && !local.Has(t.ID) {
			tokens = append(tokens, ir.Token{ID: t.ID})
		}
	}
	tokens = append(tokens, part.Tokens...)

	return compileBody(tokens, part.Dependencies, part.Constraints, part.Predicates)
}

// compileBody runs the arrangement, lowering and formatting pipeline over
// one query body and returns the formatted text.
func compileBody(tokens []ir.Token, deps []ir.Dependency, cons []ir.Constraint, preds []ir.Predicate) (string, error) {
	if len(tokens) == 0 {
		return "", ir.Invalid("query body without tokens")
	}
	ids := make([]ir.Identifier, len(tokens))
	for i, t := range tokens {
		ids[i] = t.ID
	}

	// Token-local predicates raise into the global set ahead of the
	// already-global ones; everything is normalized and deduplicated so
	// equivalent spellings commit exactly once.
	var global []ir.Predicate
	appendUnique := func(p ir.Predicate) {
		p = p.Normalize()
		for _, existing := range global {
			if ir.PredicateEqual(existing, p) {
				return
			}
		}
		global = append(global, p)
	}
	for _, t := range tokens {
		if t.Attrs != nil {
			appendUnique(t.Attrs.RaiseFrom(t.ID))
		}
	}
	for _, p := range preds {
		appendUnique(p)
	}

	var branches []Query
	for arr := range Arrangements(ids, cons) {
		branch, err := fromArrangement(arr, deps, global, cons)
		if err != nil {
			return "", err
		}
		branches = append(branches, branch)
	}

	switch len(branches) {
	case 0:
		return "", ir.NotSupported("order constraints rule out every arrangement")
	case 1:
		return Format(branches[0]), nil
	default:
		return Format(&Operator{Symbol: "|", Queries: branches}), nil
	}
}
