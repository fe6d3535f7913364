package graph

import (
	"context"

	"github.com/kbukum/difflow/errors"
)

// Graph owns a list of operators built in construction order, plus an
// ambient frontier stack reserved for nested iterate scopes. Finalize
// freezes the topology once; it does not check connectivity (that every
// edge has exactly one writer and an attached reader). Step and Run then
// execute it repeatedly.
type Graph struct {
	operators  []Operator
	finalized  bool
	scopeStack []ScopeID
	decorators []func(Operator) Operator
}

// New returns an empty, unfinalized Graph.
func New() *Graph {
	return &Graph{}
}

// Use registers a decorator applied to every operator passed to Add from
// this point on, in registration order — e.g. observability.Decorator,
// which wraps Step in a span without graph needing to import observability
// itself. Operator construction helpers (operators.Map, operators.Filter,
// ...) call Add on the caller's behalf, so a decorator registered once on g
// reaches every operator a builder.Factory wires in, not just ones a
// caller happens to wrap by hand.
func (g *Graph) Use(decorator func(Operator) Operator) {
	g.decorators = append(g.decorators, decorator)
}

// Add registers an operator with the graph, passing it through any
// decorators registered via Use first. It is a topology error to add an
// operator after Finalize.
func (g *Graph) Add(op Operator) error {
	if g.finalized {
		return errors.Topology("cannot add operator after finalize")
	}
	for _, decorate := range g.decorators {
		op = decorate(op)
	}
	g.operators = append(g.operators, op)
	return nil
}

// Finalize freezes the graph's topology. A second call is a topology
// error: "duplicate finalize" is explicitly a fatal construction mistake,
// not a no-op.
func (g *Graph) Finalize() error {
	if g.finalized {
		return errors.Topology("graph already finalized")
	}
	g.finalized = true
	return nil
}

// Operators returns the operators in construction order.
func (g *Graph) Operators() []Operator {
	out := make([]Operator, len(g.operators))
	copy(out, g.operators)
	return out
}

// ready reports whether op has at least one input edge with pending
// messages.
func ready(op Operator) bool {
	for _, in := range op.Inputs() {
		if in.Pending() > 0 {
			return true
		}
	}
	return false
}

// Step executes one ready operator — any operator with pending input
// messages — and reports whether one was found and run. Implementations
// may choose round-robin or topological order; Step here walks operators
// in construction order each call, which is sufficient because a
// cyclic feedback edge (iterate) only ever needs *some* ready operator
// to make progress, not a specific one.
func (g *Graph) Step(ctx context.Context) (bool, error) {
	for _, op := range g.operators {
		if !ready(op) {
			continue
		}
		if _, err := op.Step(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Run executes Step until no operator is ready. It does not rely on
// static topological order — cycles created by iterate's feedback edge
// are handled because each Step only requires finding some ready
// operator, and Drain-per-step plus monotone frontiers is what guarantees
// eventual quiescence, not graph reachability.
func (g *Graph) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		progressed, err := g.Step(ctx)
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
}

// RunBounded is Run with a safety valve: it returns after at most
// maxSteps successful Step calls even if the graph remains ready,
// reporting whether it stopped because the graph went quiescent (true)
// or the bound was hit (false). maxSteps <= 0 means unbounded, identical
// to Run.
func (g *Graph) RunBounded(ctx context.Context, maxSteps int) (quiescent bool, err error) {
	if maxSteps <= 0 {
		return true, g.Run(ctx)
	}
	for i := 0; i < maxSteps; i++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		progressed, err := g.Step(ctx)
		if err != nil {
			return false, err
		}
		if !progressed {
			return true, nil
		}
	}
	return false, nil
}
