package operators

import (
	"context"

	"github.com/google/uuid"
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/version"
)

// DefaultFeedbackEmptyRounds is how many consecutive rounds of silence the
// feedback operator waits for, per outer version, before declaring that
// outer version's inner fixpoint closed and letting its frontier advance
// downstream. Three is a small fixed threshold chosen the way the source
// material chooses it — documented here since nothing in the corpus pins
// an exact value.
const DefaultFeedbackEmptyRounds = 3

// IterateOption configures an Iterate call.
type IterateOption func(*iterateConfig)

type iterateConfig struct {
	emptyRounds int
}

// WithFeedbackEmptyRounds overrides DefaultFeedbackEmptyRounds.
func WithFeedbackEmptyRounds(n int) IterateOption {
	return func(c *iterateConfig) { c.emptyRounds = n }
}

// Iterate feeds input through an extended-version loop scope: ingress
// tags arriving data with a fresh inner dimension, body is invoked once
// against the merged ingress+feedback stream, its output is fed back with
// the inner dimension advanced by one, and egress strips the inner
// dimension back off on the way out. The returned edge carries the
// truncated-version output; because the accumulated truncated output is
// the sum of every delta body ever emits, it converges to body's fixpoint
// once the graph drains to quiescence — the engine's normal ready-operator
// scheduling (graph.Graph.Run) already halts exactly when body stops
// producing new data, which is what gives iteration its termination
// property for a contractive body.
func Iterate[T comparable](g *graph.Graph, input *graph.Edge[T], body func(loopInput *graph.Edge[T]) (*graph.Edge[T], error), opts ...IterateOption) (*graph.Edge[T], error) {
	cfg := iterateConfig{emptyRounds: DefaultFeedbackEmptyRounds}
	for _, opt := range opts {
		opt(&cfg)
	}

	ingressOut, err := ingress[T](g, input)
	if err != nil {
		return nil, err
	}
	feedbackEdge := graph.NewEdge[T]()
	loopInput, err := Concat(g, ingressOut, feedbackEdge)
	if err != nil {
		return nil, err
	}
	bodyOut, err := body(loopInput)
	if err != nil {
		return nil, err
	}
	bodyOutForFeedback, bodyOutForEgress, err := Tee(g, bodyOut)
	if err != nil {
		return nil, err
	}
	closureEdge := graph.NewEdge[T]()
	if err := feedback(g, bodyOutForFeedback, feedbackEdge, closureEdge, cfg.emptyRounds); err != nil {
		return nil, err
	}
	return egress[T](g, bodyOutForEgress, closureEdge)
}

// ingress enters a loop scope: every arriving entry is re-emitted at its
// version extended with a fresh zero sub-step, and retracted one
// sub-step later — so the loop body sees it exactly once at sub-step 0
// and the seed does not linger as a standing duplicate once the
// feedback-driven accumulation takes over.
func ingress[T any](g *graph.Graph, input *graph.Edge[T]) (*graph.Edge[T], error) {
	output := graph.NewEdge[T]()
	op := &ingressOperator[T]{id: uuid.New(), input: input, output: output}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type ingressOperator[T any] struct {
	id     graph.OperatorID
	input  *graph.Edge[T]
	output *graph.Edge[T]
}

func (i *ingressOperator[T]) ID() graph.OperatorID  { return i.id }
func (i *ingressOperator[T]) Name() string          { return "operators.ingress" }
func (i *ingressOperator[T]) Inputs() []graph.Queue { return []graph.Queue{i.input} }

func (i *ingressOperator[T]) Step(_ context.Context) (bool, error) {
	msgs := i.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	for _, msg := range msgs {
		switch msg.Kind {
		case graph.KindData:
			entered := msg.Version.Extend()
			i.output.Send(graph.DataAt(entered, msg.Collection))
			i.output.Send(graph.DataAt(entered.AdvanceInner(), collection.Negate(msg.Collection)))
		case graph.KindFrontier:
			i.output.Send(graph.FrontierAdvance[T](msg.Frontier.Extend()))
		}
	}
	return true, nil
}

// feedback consumes the body's output, advances its inner sub-step by
// one, and re-sends it into the loop's merged input edge so the next
// round of the body sees it. It also tracks, per outer version (the
// version with the inner dimension truncated off), how many consecutive
// rounds have passed with no data for that outer version; once every
// outer version touched so far has gone silent for emptyRounds straight
// rounds, it truncates the latest frontier advance it observed from the
// body back down to the outer scope and forwards it on closureOut —
// gating egress's own output frontier on actual fixpoint closure instead
// of on whatever frontier happens to arrive from the loop's ingress leg.
func feedback[T any](g *graph.Graph, bodyOut *graph.Edge[T], feedbackEdge *graph.Edge[T], closureOut *graph.Edge[T], emptyRounds int) error {
	op := &feedbackOperator[T]{
		id:          uuid.New(),
		input:       bodyOut,
		output:      feedbackEdge,
		closureOut:  closureOut,
		emptyRounds: emptyRounds,
		silence:     make(map[string]int),
		open:        make(map[string]bool),
	}
	return g.Add(op)
}

type feedbackOperator[T any] struct {
	id          graph.OperatorID
	input       *graph.Edge[T]
	output      *graph.Edge[T]
	closureOut  *graph.Edge[T]
	emptyRounds int
	silence     map[string]int
	// open holds true for every outer version touched so far whose inner
	// fixpoint hasn't closed yet; an outer version absent from this map
	// has never been touched.
	open        map[string]bool
	pending     version.Frontier
	havePending bool
}

func (f *feedbackOperator[T]) ID() graph.OperatorID  { return f.id }
func (f *feedbackOperator[T]) Name() string          { return "operators.feedback" }
func (f *feedbackOperator[T]) Inputs() []graph.Queue { return []graph.Queue{f.input} }

func (f *feedbackOperator[T]) Step(_ context.Context) (bool, error) {
	msgs := f.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	touched := make(map[string]bool)
	hadData := make(map[string]bool)
	for _, msg := range msgs {
		switch msg.Kind {
		case graph.KindData:
			outer := msg.Version.Truncate().String()
			touched[outer] = true
			if msg.Collection.Len() > 0 {
				hadData[outer] = true
			}
			f.output.Send(graph.DataAt(msg.Version.AdvanceInner(), msg.Collection))
		case graph.KindFrontier:
			f.pending = msg.Frontier
			f.havePending = true
		}
	}
	for outer := range touched {
		if _, known := f.open[outer]; !known {
			f.open[outer] = true
		}
		if hadData[outer] {
			f.silence[outer] = 0
			continue
		}
		f.silence[outer]++
		if f.silence[outer] >= f.emptyRounds {
			f.open[outer] = false
		}
	}
	if f.havePending && f.allClosed() {
		f.closureOut.Send(graph.FrontierAdvance[T](f.pending.Truncate()))
		f.havePending = false
	}
	return true, nil
}

// allClosed reports whether every outer version touched so far has had
// its inner fixpoint close.
func (f *feedbackOperator[T]) allClosed() bool {
	for _, open := range f.open {
		if open {
			return false
		}
	}
	return true
}

// egress leaves a loop scope: every entry's version has its innermost
// dimension truncated off before being forwarded. Because every delta
// body ever produced flows through here exactly once, the truncated
// stream's accumulated sum downstream is precisely body's fixpoint — no
// buffering until closure is required for correctness, only for
// frontier timing. Data streams out of input as produced; the output
// frontier advance itself comes from closure instead, since input's own
// frontier messages are driven purely by the loop's ingress leg and say
// nothing about whether the inner fixpoint has actually been reached —
// closure carries the feedback operator's gated, already-truncated
// signal that it has.
func egress[T any](g *graph.Graph, input *graph.Edge[T], closure *graph.Edge[T]) (*graph.Edge[T], error) {
	output := graph.NewEdge[T]()
	op := &egressOperator[T]{id: uuid.New(), input: input, closure: closure, output: output}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type egressOperator[T any] struct {
	id      graph.OperatorID
	input   *graph.Edge[T]
	closure *graph.Edge[T]
	output  *graph.Edge[T]
}

func (e *egressOperator[T]) ID() graph.OperatorID  { return e.id }
func (e *egressOperator[T]) Name() string          { return "operators.egress" }
func (e *egressOperator[T]) Inputs() []graph.Queue { return []graph.Queue{e.input, e.closure} }

func (e *egressOperator[T]) Step(_ context.Context) (bool, error) {
	progressed := false
	for _, msg := range e.input.Drain() {
		if msg.Kind == graph.KindData {
			e.output.Send(graph.DataAt(msg.Version.Truncate(), msg.Collection))
			progressed = true
		}
	}
	for _, msg := range e.closure.Drain() {
		if msg.Kind == graph.KindFrontier {
			e.output.Send(msg)
			progressed = true
		}
	}
	return progressed, nil
}
