package operators

import (
	"cmp"
	"context"

	"github.com/google/uuid"
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/index"
	"github.com/kbukum/difflow/version"
)

// ReduceFunc computes the full accumulated output bag for a key from its
// full accumulated input bag. It is not a delta function — Reduce itself
// computes the delta between successive calls to f.
type ReduceFunc[V, W any] func(bag []collection.Entry[V]) []collection.Entry[W]

// Reduce accepts a stream of (K, V) deltas and, at every key touched
// since the last emission, computes new = f(accumulated input at that
// key), diffs it against the previously emitted output for that key, and
// emits only the delta — so the accumulated output is always exactly f
// applied to the accumulated input. Keys with no net change in f's result
// produce no output message.
func Reduce[K comparable, V comparable, W comparable](g *graph.Graph, input *graph.Edge[KV[K, V]], f ReduceFunc[V, W]) (*graph.Edge[KV[K, W]], error) {
	output := graph.NewEdge[KV[K, W]]()
	op := &reduceOperator[K, V, W]{
		id:     uuid.New(),
		input:  input,
		output: output,
		f:      f,
		in:     index.New[K, V](),
		out:    make(map[K][]collection.Entry[W]),
	}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type reduceOperator[K comparable, V comparable, W comparable] struct {
	id     graph.OperatorID
	input  *graph.Edge[KV[K, V]]
	output *graph.Edge[KV[K, W]]
	f      ReduceFunc[V, W]
	in     *index.Index[K, V]
	out    map[K][]collection.Entry[W]
}

func (r *reduceOperator[K, V, W]) ID() graph.OperatorID  { return r.id }
func (r *reduceOperator[K, V, W]) Name() string          { return "operators.reduce" }
func (r *reduceOperator[K, V, W]) Inputs() []graph.Queue { return []graph.Queue{r.input} }

func (r *reduceOperator[K, V, W]) Step(_ context.Context) (produced bool, err error) {
	msgs := r.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	defer guard(r.Name(), &err)

	var versions []version.Version
	var frontierMsgs []graph.Message[KV[K, W]]
	for _, msg := range msgs {
		switch msg.Kind {
		case graph.KindData:
			versions = append(versions, msg.Version)
			for _, e := range msg.Collection.Entries() {
				r.in.AddVersioned(e.Value.Key, e.Value.Value, e.Multiplicity, msg.Version)
			}
		case graph.KindFrontier:
			frontierMsgs = append(frontierMsgs, graph.FrontierAdvance[KV[K, W]](msg.Frontier))
		}
	}

	dirty := r.in.DirtyKeys()
	r.in.Compact(dirty...)

	var deltaEntries []collection.Entry[KV[K, W]]
	for _, k := range dirty {
		bag := r.in.Get(k)
		vEntries := make([]collection.Entry[V], len(bag))
		for i, e := range bag {
			vEntries[i] = collection.Entry[V]{Value: e.Value, Multiplicity: e.Multiplicity}
		}
		newBag := r.f(vEntries)
		delta := diffBags(r.out[k], newBag)
		for _, d := range delta {
			deltaEntries = append(deltaEntries, collection.Entry[KV[K, W]]{
				Value:        KV[K, W]{Key: k, Value: d.Value},
				Multiplicity: d.Multiplicity,
			})
		}
		if len(newBag) == 0 {
			delete(r.out, k)
		} else {
			r.out[k] = newBag
		}
	}

	if len(deltaEntries) > 0 {
		r.output.Send(graph.DataAt(joinVersions(versions), collection.Of(deltaEntries...)))
	}
	for _, fm := range frontierMsgs {
		r.output.Send(fm)
	}
	return true, nil
}

// diffBags computes the canonical difference new − old: entries present
// in one but not the other, or whose multiplicities differ, with zero
// net differences dropped. Implementations of ReduceFunc are expected to
// return an already-canonical bag; diffBags still sums by value in case
// they don't.
func diffBags[W comparable](old, updated []collection.Entry[W]) []collection.Entry[W] {
	totals := make(map[W]int)
	var order []W
	for _, e := range old {
		if _, seen := totals[e.Value]; !seen {
			order = append(order, e.Value)
		}
		totals[e.Value] -= e.Multiplicity
	}
	for _, e := range updated {
		if _, seen := totals[e.Value]; !seen {
			order = append(order, e.Value)
		}
		totals[e.Value] += e.Multiplicity
	}
	out := make([]collection.Entry[W], 0, len(order))
	for _, v := range order {
		if mult := totals[v]; mult != 0 {
			out = append(out, collection.Entry[W]{Value: v, Multiplicity: mult})
		}
	}
	return out
}

// joinVersions folds version.Join across every version observed in a
// step's data messages; an empty input yields the zero-dimensional
// version, correct for the version-free mode where versions are never
// populated to begin with.
func joinVersions(versions []version.Version) version.Version {
	if len(versions) == 0 {
		return version.Version{}
	}
	v := versions[0]
	for _, other := range versions[1:] {
		v = version.Join(v, other)
	}
	return v
}

// Count derives (K, int) emissions from f summing the multiplicities of
// the accumulated bag at each key.
func Count[K comparable, V comparable](g *graph.Graph, input *graph.Edge[KV[K, V]]) (*graph.Edge[KV[K, int]], error) {
	return Reduce(g, input, func(bag []collection.Entry[V]) []collection.Entry[int] {
		total := 0
		for _, e := range bag {
			total += e.Multiplicity
		}
		if total == 0 {
			return nil
		}
		return []collection.Entry[int]{{Value: total, Multiplicity: 1}}
	})
}

// Sum derives (K, V) emissions summing every present copy of the
// accumulated bag's values (a value with multiplicity m contributes m
// copies; a negative multiplicity subtracts).
func Sum[K comparable, V Numeric](g *graph.Graph, input *graph.Edge[KV[K, V]]) (*graph.Edge[KV[K, V]], error) {
	return Reduce(g, input, func(bag []collection.Entry[V]) []collection.Entry[V] {
		var total V
		for _, e := range bag {
			total += e.Value * V(e.Multiplicity)
		}
		return []collection.Entry[V]{{Value: total, Multiplicity: 1}}
	})
}

// Avg derives (K, float64) emissions: the mean of the accumulated bag's
// values, each value counted once per unit of positive multiplicity.
func Avg[K comparable, V Numeric](g *graph.Graph, input *graph.Edge[KV[K, V]]) (*graph.Edge[KV[K, float64]], error) {
	return Reduce(g, input, func(bag []collection.Entry[V]) []collection.Entry[float64] {
		var total float64
		var count int
		for _, e := range bag {
			if e.Multiplicity <= 0 {
				continue
			}
			total += float64(e.Value) * float64(e.Multiplicity)
			count += e.Multiplicity
		}
		if count == 0 {
			return nil
		}
		return []collection.Entry[float64]{{Value: total / float64(count), Multiplicity: 1}}
	})
}

// Min derives (K, V) emissions: the smallest currently-present value
// (net multiplicity > 0) at each key.
func Min[K comparable, V cmp.Ordered](g *graph.Graph, input *graph.Edge[KV[K, V]]) (*graph.Edge[KV[K, V]], error) {
	return extremum(g, input, func(a, b V) bool { return a < b })
}

// Max derives (K, V) emissions: the largest currently-present value (net
// multiplicity > 0) at each key.
func Max[K comparable, V cmp.Ordered](g *graph.Graph, input *graph.Edge[KV[K, V]]) (*graph.Edge[KV[K, V]], error) {
	return extremum(g, input, func(a, b V) bool { return a > b })
}

func extremum[K comparable, V cmp.Ordered](g *graph.Graph, input *graph.Edge[KV[K, V]], better func(a, b V) bool) (*graph.Edge[KV[K, V]], error) {
	return Reduce(g, input, func(bag []collection.Entry[V]) []collection.Entry[V] {
		var best V
		found := false
		for _, e := range bag {
			if e.Multiplicity <= 0 {
				continue
			}
			if !found || better(e.Value, best) {
				best = e.Value
				found = true
			}
		}
		if !found {
			return nil
		}
		return []collection.Entry[V]{{Value: best, Multiplicity: 1}}
	})
}
