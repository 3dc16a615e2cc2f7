package ir

// SetOp combines the match results of two plan steps.
type SetOp string

const (
	OpConjunction SetOp = "&"
	OpDisjunction SetOp = "|"
	OpSubtraction SetOp = "-"
)

// Operation is a named set operation over two earlier plan steps.
type Operation struct {
	ID  Identifier
	LHS Identifier
	Op  SetOp
	RHS Identifier
}

// Plan is a full compilation unit: one or more queries, set operations
// chained over them, and the identifier of the final result. Built through
// PlanBuilder, which validates that every operand resolves to a previously
// defined step.
type Plan struct {
	Queries    []*Query
	Operations []Operation
	Goal       Identifier
}

// PlanOf wraps a single query into a plan with that query as its goal.
func PlanOf(q *Query) *Plan {
	return &Plan{Queries: []*Query{q}, Goal: q.ID}
}

// PlanBuilder accumulates queries and operations, then freezes them into an
// immutable Plan on Build. The builder owns its lists until then.
type PlanBuilder struct {
	alloc      *Allocator
	queries    []*Query
	operations []Operation
	goal       Identifier
}

// NewPlanBuilder creates a builder allocating step identifiers from alloc.
func NewPlanBuilder(alloc *Allocator) *PlanBuilder {
	return &PlanBuilder{alloc: alloc}
}

// AddQuery appends a query step and returns its identifier.
func (b *PlanBuilder) AddQuery(q *Query) Identifier {
	b.queries = append(b.queries, q)
	return q.ID
}

// AddOperation appends a set operation over two earlier steps and returns
// the identifier of the new step.
func (b *PlanBuilder) AddOperation(lhs Identifier, op SetOp, rhs Identifier) Identifier {
	operation := Operation{ID: b.alloc.Fresh(), LHS: lhs, Op: op, RHS: rhs}
	b.operations = append(b.operations, operation)
	return operation.ID
}

// SetGoal fixes the plan's final result. Without an explicit goal, Build
// uses the sole query, or the last operation when operations exist.
func (b *PlanBuilder) SetGoal(id Identifier) {
	b.goal = id
}

// Build validates and freezes the plan.
func (b *PlanBuilder) Build() (*Plan, error) {
	if len(b.queries) == 0 {
		return nil, Invalid("plan without queries")
	}

	goal := b.goal
	if goal == NoIdentifier {
		if len(b.operations) > 0 {
			goal = b.operations[len(b.operations)-1].ID
		} else if len(b.queries) == 1 {
			goal = b.queries[0].ID
		} else {
			return nil, Invalid("plan with several queries needs an explicit goal")
		}
	}

	defined := IdentifierSet{}
	for _, q := range b.queries {
		defined.Add(q.ID)
	}
	for _, op := range b.operations {
		if !defined.Has(op.LHS) || !defined.Has(op.RHS) {
			return nil, Invalid("operation references a step not defined earlier in the plan")
		}
		defined.Add(op.ID)
	}
	if !defined.Has(goal) {
		return nil, Invalid("plan goal does not name a defined step")
	}

	return &Plan{Queries: b.queries, Operations: b.operations, Goal: goal}, nil
}
