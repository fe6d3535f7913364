package operators

import (
	"context"

	"github.com/google/uuid"
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/version"
)

// Distinct maps a stream of (value, Δ) deltas to the presence function:
// a value is emitted with multiplicity +1 the moment its accumulated
// multiplicity becomes positive, and −1 the moment it stops being
// positive. No output is produced while presence does not change. Deltas
// arriving in the same step at the same version are first consolidated,
// so a round that nets to no change in presence emits nothing even if
// intermediate entries within the round would have.
func Distinct[T comparable](g *graph.Graph, input *graph.Edge[T]) (*graph.Edge[T], error) {
	output := graph.NewEdge[T]()
	op := &distinctOperator[T]{id: uuid.New(), input: input, output: output, acc: make(map[T]int)}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type distinctOperator[T comparable] struct {
	id     graph.OperatorID
	input  *graph.Edge[T]
	output *graph.Edge[T]
	acc    map[T]int
}

func (d *distinctOperator[T]) ID() graph.OperatorID  { return d.id }
func (d *distinctOperator[T]) Name() string          { return "operators.distinct" }
func (d *distinctOperator[T]) Inputs() []graph.Queue { return []graph.Queue{d.input} }

func (d *distinctOperator[T]) Step(_ context.Context) (bool, error) {
	msgs := d.input.Drain()
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
		consolidated := collection.Consolidate(groups[v.String()])
		var deltas []collection.Entry[T]
		for _, e := range consolidated.Entries() {
			old := d.acc[e.Value]
			updated := old + e.Multiplicity
			oldPresent := old > 0
			newPresent := updated > 0
			if updated == 0 {
				delete(d.acc, e.Value)
			} else {
				d.acc[e.Value] = updated
			}
			if oldPresent == newPresent {
				continue
			}
			mult := 1
			if !newPresent {
				mult = -1
			}
			deltas = append(deltas, collection.Entry[T]{Value: e.Value, Multiplicity: mult})
		}
		if len(deltas) > 0 {
			d.output.Send(graph.DataAt(v, collection.Of(deltas...)))
		}
	}
	for _, fm := range frontierMsgs {
		d.output.Send(fm)
	}
	return true, nil
}

// DistinctBy applies Distinct's presence logic under a user-supplied
// equivalence key instead of native equality: values that map to the same
// key are treated as the same value for presence purposes. The emitted
// representative for a key is whichever value in the round's consolidated
// bag is encountered first, mirroring collection.ConsolidateBy.
func DistinctBy[T any, K comparable](g *graph.Graph, input *graph.Edge[T], key func(T) K) (*graph.Edge[KV[K, T]], error) {
	output := graph.NewEdge[KV[K, T]]()
	op := &distinctByOperator[T, K]{id: uuid.New(), input: input, output: output, key: key, acc: make(map[K]int)}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type distinctByOperator[T any, K comparable] struct {
	id     graph.OperatorID
	input  *graph.Edge[T]
	output *graph.Edge[KV[K, T]]
	key    func(T) K
	acc    map[K]int
}

func (d *distinctByOperator[T, K]) ID() graph.OperatorID  { return d.id }
func (d *distinctByOperator[T, K]) Name() string          { return "operators.distinctBy" }
func (d *distinctByOperator[T, K]) Inputs() []graph.Queue { return []graph.Queue{d.input} }

func (d *distinctByOperator[T, K]) Step(_ context.Context) (produced bool, err error) {
	msgs := d.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	defer guard(d.Name(), &err)

	groups := make(map[string]collection.Multiset[T])
	var order []version.Version
	var frontierMsgs []graph.Message[KV[K, T]]
	for _, msg := range msgs {
		switch msg.Kind {
		case graph.KindData:
			k := msg.Version.String()
			if _, ok := groups[k]; !ok {
				order = append(order, msg.Version)
			}
			groups[k] = collection.Concat(groups[k], msg.Collection)
		case graph.KindFrontier:
			frontierMsgs = append(frontierMsgs, graph.FrontierAdvance[KV[K, T]](msg.Frontier))
		}
	}

	for _, v := range order {
		consolidated := collection.ConsolidateBy(groups[v.String()], d.key)
		var deltas []collection.Entry[KV[K, T]]
		for _, e := range consolidated.Entries() {
			k := d.key(e.Value)
			old := d.acc[k]
			updated := old + e.Multiplicity
			oldPresent := old > 0
			newPresent := updated > 0
			if updated == 0 {
				delete(d.acc, k)
			} else {
				d.acc[k] = updated
			}
			if oldPresent == newPresent {
				continue
			}
			mult := 1
			if !newPresent {
				mult = -1
			}
			deltas = append(deltas, collection.Entry[KV[K, T]]{Value: KV[K, T]{Key: k, Value: e.Value}, Multiplicity: mult})
		}
		if len(deltas) > 0 {
			d.output.Send(graph.DataAt(v, collection.Of(deltas...)))
		}
	}
	for _, fm := range frontierMsgs {
		d.output.Send(fm)
	}
	return true, nil
}
