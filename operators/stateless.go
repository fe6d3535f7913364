package operators

import (
	"context"

	"github.com/google/uuid"
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
)

// Map applies f to every value flowing through input, preserving each
// entry's multiplicity, and returns the edge carrying the mapped stream.
// No state is retained beyond per-call locals.
func Map[T, U any](g *graph.Graph, input *graph.Edge[T], f func(T) U) (*graph.Edge[U], error) {
	output := graph.NewEdge[U]()
	op := &mapOperator[T, U]{id: uuid.New(), input: input, output: output, f: f}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type mapOperator[T, U any] struct {
	id     graph.OperatorID
	input  *graph.Edge[T]
	output *graph.Edge[U]
	f      func(T) U
}

func (m *mapOperator[T, U]) ID() graph.OperatorID  { return m.id }
func (m *mapOperator[T, U]) Name() string          { return "operators.map" }
func (m *mapOperator[T, U]) Inputs() []graph.Queue { return []graph.Queue{m.input} }

func (m *mapOperator[T, U]) Step(_ context.Context) (produced bool, err error) {
	msgs := m.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	defer guard(m.Name(), &err)
	toSend := make([]graph.Message[U], 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Kind {
		case graph.KindData:
			toSend = append(toSend, graph.DataAt(msg.Version, collection.Map(msg.Collection, m.f)))
		case graph.KindFrontier:
			toSend = append(toSend, graph.FrontierAdvance[U](msg.Frontier))
		}
	}
	for _, out := range toSend {
		m.output.Send(out)
	}
	return true, nil
}

// Filter drops entries whose value fails p, preserving multiplicity on
// the survivors.
func Filter[T any](g *graph.Graph, input *graph.Edge[T], p func(T) bool) (*graph.Edge[T], error) {
	output := graph.NewEdge[T]()
	op := &filterOperator[T]{id: uuid.New(), input: input, output: output, p: p}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type filterOperator[T any] struct {
	id     graph.OperatorID
	input  *graph.Edge[T]
	output *graph.Edge[T]
	p      func(T) bool
}

func (f *filterOperator[T]) ID() graph.OperatorID  { return f.id }
func (f *filterOperator[T]) Name() string          { return "operators.filter" }
func (f *filterOperator[T]) Inputs() []graph.Queue { return []graph.Queue{f.input} }

func (f *filterOperator[T]) Step(_ context.Context) (produced bool, err error) {
	msgs := f.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	defer guard(f.Name(), &err)
	toSend := make([]graph.Message[T], 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Kind {
		case graph.KindData:
			toSend = append(toSend, graph.DataAt(msg.Version, collection.Filter(msg.Collection, f.p)))
		case graph.KindFrontier:
			toSend = append(toSend, graph.FrontierAdvance[T](msg.Frontier))
		}
	}
	for _, out := range toSend {
		f.output.Send(out)
	}
	return true, nil
}

// Negate flips the sign of every multiplicity flowing through input.
func Negate[T any](g *graph.Graph, input *graph.Edge[T]) (*graph.Edge[T], error) {
	output := graph.NewEdge[T]()
	op := &negateOperator[T]{id: uuid.New(), input: input, output: output}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type negateOperator[T any] struct {
	id     graph.OperatorID
	input  *graph.Edge[T]
	output *graph.Edge[T]
}

func (n *negateOperator[T]) ID() graph.OperatorID  { return n.id }
func (n *negateOperator[T]) Name() string          { return "operators.negate" }
func (n *negateOperator[T]) Inputs() []graph.Queue { return []graph.Queue{n.input} }

func (n *negateOperator[T]) Step(_ context.Context) (bool, error) {
	msgs := n.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	for _, msg := range msgs {
		switch msg.Kind {
		case graph.KindData:
			n.output.Send(graph.DataAt(msg.Version, collection.Negate(msg.Collection)))
		case graph.KindFrontier:
			n.output.Send(graph.FrontierAdvance[T](msg.Frontier))
		}
	}
	return true, nil
}

// Concat merges two streams of the same type into their logical union.
// The output may be non-canonical; a downstream Consolidate canonicalizes
// it.
func Concat[T any](g *graph.Graph, left, right *graph.Edge[T]) (*graph.Edge[T], error) {
	output := graph.NewEdge[T]()
	op := &concatOperator[T]{id: uuid.New(), left: left, right: right, output: output}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type concatOperator[T any] struct {
	id     graph.OperatorID
	left   *graph.Edge[T]
	right  *graph.Edge[T]
	output *graph.Edge[T]
}

func (c *concatOperator[T]) ID() graph.OperatorID  { return c.id }
func (c *concatOperator[T]) Name() string          { return "operators.concat" }
func (c *concatOperator[T]) Inputs() []graph.Queue { return []graph.Queue{c.left, c.right} }

func (c *concatOperator[T]) Step(_ context.Context) (bool, error) {
	progressed := false
	for _, msg := range c.left.Drain() {
		c.output.Send(msg)
		progressed = true
	}
	for _, msg := range c.right.Drain() {
		c.output.Send(msg)
		progressed = true
	}
	return progressed, nil
}

// Fanout duplicates every message arriving on input onto n independent
// output edges, since an Edge is single-reader: any stream consumed by
// more than one downstream operator (or referenced twice by the same
// pipeline, as iterate bodies referencing "self" typically do) must be
// split first so each consumer drains its own FIFO view.
func Fanout[T any](g *graph.Graph, input *graph.Edge[T], n int) ([]*graph.Edge[T], error) {
	outputs := make([]*graph.Edge[T], n)
	for i := range outputs {
		outputs[i] = graph.NewEdge[T]()
	}
	op := &fanoutOperator[T]{id: uuid.New(), input: input, outputs: outputs}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Tee is Fanout specialized to the common two-consumer case.
func Tee[T any](g *graph.Graph, input *graph.Edge[T]) (*graph.Edge[T], *graph.Edge[T], error) {
	outputs, err := Fanout(g, input, 2)
	if err != nil {
		return nil, nil, err
	}
	return outputs[0], outputs[1], nil
}

type fanoutOperator[T any] struct {
	id      graph.OperatorID
	input   *graph.Edge[T]
	outputs []*graph.Edge[T]
}

func (f *fanoutOperator[T]) ID() graph.OperatorID  { return f.id }
func (f *fanoutOperator[T]) Name() string          { return "operators.fanout" }
func (f *fanoutOperator[T]) Inputs() []graph.Queue { return []graph.Queue{f.input} }

func (f *fanoutOperator[T]) Step(_ context.Context) (bool, error) {
	msgs := f.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	for _, msg := range msgs {
		for _, out := range f.outputs {
			out.Send(msg)
		}
	}
	return true, nil
}

// Output installs a side effect that receives every forwarded multiset
// and frontier notification, and forwards the stream unchanged. handle
// may be nil if the caller does not need frontier probing; fn may be nil
// if only frontier tracking via handle is wanted.
func Output[T any](g *graph.Graph, input *graph.Edge[T], handle *graph.OutputHandle[T], fn func(collection.Multiset[T])) (*graph.Edge[T], error) {
	output := graph.NewEdge[T]()
	op := &outputOperator[T]{id: uuid.New(), input: input, output: output, handle: handle, fn: fn}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type outputOperator[T any] struct {
	id     graph.OperatorID
	input  *graph.Edge[T]
	output *graph.Edge[T]
	handle *graph.OutputHandle[T]
	fn     func(collection.Multiset[T])
}

func (o *outputOperator[T]) ID() graph.OperatorID  { return o.id }
func (o *outputOperator[T]) Name() string          { return "operators.output" }
func (o *outputOperator[T]) Inputs() []graph.Queue { return []graph.Queue{o.input} }

func (o *outputOperator[T]) Step(_ context.Context) (produced bool, err error) {
	msgs := o.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	defer guard(o.Name(), &err)
	for _, msg := range msgs {
		if msg.Kind == graph.KindData && o.fn != nil {
			o.fn(msg.Collection)
		}
		if o.handle != nil {
			o.handle.Notify(msg)
		}
		o.output.Send(msg)
	}
	return true, nil
}
