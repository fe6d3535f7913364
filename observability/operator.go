package observability

import (
	"context"
	"time"

	"github.com/kbukum/difflow/graph"
)

// TracedOperator wraps a graph.Operator with a span and, when metrics is
// non-nil, an operation-duration recording per Step call. It satisfies
// graph.Operator itself, so it drops into a graph exactly where the
// wrapped operator would have gone.
type TracedOperator struct {
	inner   graph.Operator
	service string
	metrics *Metrics
}

// WithTracing wraps op so every Step call is recorded as a span named
// after op.Name(), tagged with the owning service. Pass a nil metrics to
// skip metric recording and only emit spans.
func WithTracing(service string, op graph.Operator, metrics *Metrics) *TracedOperator {
	return &TracedOperator{inner: op, service: service, metrics: metrics}
}

// Decorator returns a graph.Graph.Use-compatible function that wraps every
// operator passed through it with WithTracing. Passing it to Graph.Use
// instruments a graph's operators as they're added, regardless of whether
// the caller constructing them (e.g. builder.ResolveGraphSpec) knows
// anything about observability itself.
func Decorator(service string, metrics *Metrics) func(graph.Operator) graph.Operator {
	return func(op graph.Operator) graph.Operator {
		return WithTracing(service, op, metrics)
	}
}

func (t *TracedOperator) ID() graph.OperatorID  { return t.inner.ID() }
func (t *TracedOperator) Name() string          { return t.inner.Name() }
func (t *TracedOperator) Inputs() []graph.Queue { return t.inner.Inputs() }

func (t *TracedOperator) Step(ctx context.Context) (bool, error) {
	ctx, span := StartSpan(ctx, t.Name())
	SetSpanAttribute(ctx, AttrOperationName, t.Name())
	start := time.Now()

	progressed, err := t.inner.Step(ctx)

	status := "ok"
	if err != nil {
		status = "error"
		SetSpanError(ctx, err)
	}
	span.End()

	if t.metrics != nil {
		t.metrics.RecordOperation(ctx, t.service, t.Name(), status, time.Since(start))
		if err != nil {
			t.metrics.RecordError(ctx, "step_failure", t.Name())
		}
	}

	return progressed, err
}
