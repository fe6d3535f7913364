package operators

import (
	"context"

	"github.com/google/uuid"
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/version"
)

// Consolidate aggregates every in-flight input multiset drained in a
// single step — in the versioned mode, separately per version — and
// emits the canonical result. It never emits an empty multiset: a round
// whose net multiplicities all cancel produces no output message for
// that version. Consolidate∘Consolidate is equivalent to Consolidate,
// since collection.Consolidate is idempotent and a version seen in two
// successive steps is aggregated independently each time.
func Consolidate[T comparable](g *graph.Graph, input *graph.Edge[T]) (*graph.Edge[T], error) {
	output := graph.NewEdge[T]()
	op := &consolidateOperator[T]{id: uuid.New(), input: input, output: output}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type consolidateOperator[T comparable] struct {
	id     graph.OperatorID
	input  *graph.Edge[T]
	output *graph.Edge[T]
}

func (c *consolidateOperator[T]) ID() graph.OperatorID  { return c.id }
func (c *consolidateOperator[T]) Name() string          { return "operators.consolidate" }
func (c *consolidateOperator[T]) Inputs() []graph.Queue { return []graph.Queue{c.input} }

func (c *consolidateOperator[T]) Step(_ context.Context) (bool, error) {
	msgs := c.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}

	groups := make(map[string]collection.Multiset[T])
	var order []version.Version
	var frontierMsgs []graph.Message[T]

	for _, msg := range msgs {
		switch msg.Kind {
		case graph.KindData:
			key := msg.Version.String()
			if _, ok := groups[key]; !ok {
				order = append(order, msg.Version)
			}
			groups[key] = collection.Concat(groups[key], msg.Collection)
		case graph.KindFrontier:
			frontierMsgs = append(frontierMsgs, msg)
		}
	}

	for _, v := range order {
		merged := collection.Consolidate(groups[v.String()])
		if merged.Len() > 0 {
			c.output.Send(graph.DataAt(v, merged))
		}
	}
	for _, fm := range frontierMsgs {
		c.output.Send(fm)
	}
	return true, nil
}
