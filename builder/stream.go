// Package builder provides a chaining stream-builder API over graph and
// operators: free functions that take a Stream and return a new one,
// rather than methods, since a type-changing operation like Map cannot be
// expressed as a generic method on its own receiver.
package builder

import (
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/operators"
)

// Stream pairs an edge with the graph it belongs to, so builder functions
// don't need a graph argument threaded through every call.
type Stream[T any] struct {
	g    *graph.Graph
	edge *graph.Edge[T]
}

// From wraps an existing edge as the head of a chain.
func From[T any](g *graph.Graph, edge *graph.Edge[T]) Stream[T] {
	return Stream[T]{g: g, edge: edge}
}

// Edge returns the underlying edge, for wiring into a ProducerHandle or
// another chain.
func (s Stream[T]) Edge() *graph.Edge[T] { return s.edge }

// Graph returns the graph this stream's operators are attached to.
func (s Stream[T]) Graph() *graph.Graph { return s.g }

// Map applies f to every value in s.
func Map[T, U any](s Stream[T], f func(T) U) (Stream[U], error) {
	out, err := operators.Map(s.g, s.edge, f)
	if err != nil {
		return Stream[U]{}, err
	}
	return Stream[U]{g: s.g, edge: out}, nil
}

// Filter keeps only values satisfying p.
func Filter[T any](s Stream[T], p func(T) bool) (Stream[T], error) {
	out, err := operators.Filter(s.g, s.edge, p)
	if err != nil {
		return Stream[T]{}, err
	}
	return Stream[T]{g: s.g, edge: out}, nil
}

// Negate flips every multiplicity in s.
func Negate[T any](s Stream[T]) (Stream[T], error) {
	out, err := operators.Negate(s.g, s.edge)
	if err != nil {
		return Stream[T]{}, err
	}
	return Stream[T]{g: s.g, edge: out}, nil
}

// Concat merges two streams of the same type.
func Concat[T any](left, right Stream[T]) (Stream[T], error) {
	out, err := operators.Concat(left.g, left.edge, right.edge)
	if err != nil {
		return Stream[T]{}, err
	}
	return Stream[T]{g: left.g, edge: out}, nil
}

// Consolidate canonicalizes s: one entry per distinct value, zero nets
// dropped.
func Consolidate[T comparable](s Stream[T]) (Stream[T], error) {
	out, err := operators.Consolidate(s.g, s.edge)
	if err != nil {
		return Stream[T]{}, err
	}
	return Stream[T]{g: s.g, edge: out}, nil
}

// Tee splits s into two independent views, required before feeding the
// same stream into two different downstream chains.
func Tee[T any](s Stream[T]) (Stream[T], Stream[T], error) {
	a, b, err := operators.Tee(s.g, s.edge)
	if err != nil {
		return Stream[T]{}, Stream[T]{}, err
	}
	return Stream[T]{g: s.g, edge: a}, Stream[T]{g: s.g, edge: b}, nil
}

// Fanout splits s into n independent views.
func Fanout[T any](s Stream[T], n int) ([]Stream[T], error) {
	edges, err := operators.Fanout(s.g, s.edge, n)
	if err != nil {
		return nil, err
	}
	out := make([]Stream[T], len(edges))
	for i, e := range edges {
		out[i] = Stream[T]{g: s.g, edge: e}
	}
	return out, nil
}

// Distinct reduces every key's accumulated bag to presence: multiplicity
// 1 if net-present, absent otherwise.
func Distinct[T comparable](s Stream[T]) (Stream[T], error) {
	out, err := operators.Distinct(s.g, s.edge)
	if err != nil {
		return Stream[T]{}, err
	}
	return Stream[T]{g: s.g, edge: out}, nil
}

// DistinctBy groups by a derived key and reduces to key-presence pairs.
func DistinctBy[T any, K comparable](s Stream[T], key func(T) K) (Stream[operators.KV[K, T]], error) {
	out, err := operators.DistinctBy(s.g, s.edge, key)
	if err != nil {
		return Stream[operators.KV[K, T]]{}, err
	}
	return Stream[operators.KV[K, T]]{g: s.g, edge: out}, nil
}

// Reduce collapses each key's accumulated bag through f.
func Reduce[K, V, W comparable](s Stream[operators.KV[K, V]], f operators.ReduceFunc[V, W]) (Stream[operators.KV[K, W]], error) {
	out, err := operators.Reduce(s.g, s.edge, f)
	if err != nil {
		return Stream[operators.KV[K, W]]{}, err
	}
	return Stream[operators.KV[K, W]]{g: s.g, edge: out}, nil
}

// Count, Sum and Avg mirror the operators package's Reduce-derived
// aggregations as chaining functions.

func Count[K, V comparable](s Stream[operators.KV[K, V]]) (Stream[operators.KV[K, int]], error) {
	out, err := operators.Count(s.g, s.edge)
	if err != nil {
		return Stream[operators.KV[K, int]]{}, err
	}
	return Stream[operators.KV[K, int]]{g: s.g, edge: out}, nil
}

func Sum[K comparable, V operators.Numeric](s Stream[operators.KV[K, V]]) (Stream[operators.KV[K, V]], error) {
	out, err := operators.Sum(s.g, s.edge)
	if err != nil {
		return Stream[operators.KV[K, V]]{}, err
	}
	return Stream[operators.KV[K, V]]{g: s.g, edge: out}, nil
}

func Avg[K comparable, V operators.Numeric](s Stream[operators.KV[K, V]]) (Stream[operators.KV[K, float64]], error) {
	out, err := operators.Avg(s.g, s.edge)
	if err != nil {
		return Stream[operators.KV[K, float64]]{}, err
	}
	return Stream[operators.KV[K, float64]]{g: s.g, edge: out}, nil
}

// Join, Anti, LeftOuter, RightOuter, FullOuter generalize operators' join
// family as chaining functions over a pair of keyed streams.

func Join[K, V1, V2 comparable](left Stream[operators.KV[K, V1]], right Stream[operators.KV[K, V2]]) (Stream[operators.Joined[K, V1, V2]], error) {
	out, err := operators.Join(left.g, left.edge, right.edge)
	if err != nil {
		return Stream[operators.Joined[K, V1, V2]]{}, err
	}
	return Stream[operators.Joined[K, V1, V2]]{g: left.g, edge: out}, nil
}

func Anti[K, V1, V2 comparable](left Stream[operators.KV[K, V1]], right Stream[operators.KV[K, V2]]) (Stream[operators.AntiJoined[K, V1]], error) {
	out, err := operators.Anti(left.g, left.edge, right.edge)
	if err != nil {
		return Stream[operators.AntiJoined[K, V1]]{}, err
	}
	return Stream[operators.AntiJoined[K, V1]]{g: left.g, edge: out}, nil
}

func LeftOuter[K, V1, V2 comparable](left Stream[operators.KV[K, V1]], right Stream[operators.KV[K, V2]]) (Stream[operators.LeftJoined[K, V1, V2]], error) {
	out, err := operators.LeftOuter(left.g, left.edge, right.edge)
	if err != nil {
		return Stream[operators.LeftJoined[K, V1, V2]]{}, err
	}
	return Stream[operators.LeftJoined[K, V1, V2]]{g: left.g, edge: out}, nil
}

func RightOuter[K, V1, V2 comparable](left Stream[operators.KV[K, V1]], right Stream[operators.KV[K, V2]]) (Stream[operators.RightJoined[K, V1, V2]], error) {
	out, err := operators.RightOuter(left.g, left.edge, right.edge)
	if err != nil {
		return Stream[operators.RightJoined[K, V1, V2]]{}, err
	}
	return Stream[operators.RightJoined[K, V1, V2]]{g: left.g, edge: out}, nil
}

func FullOuter[K, V1, V2 comparable](left Stream[operators.KV[K, V1]], right Stream[operators.KV[K, V2]]) (Stream[operators.FullJoined[K, V1, V2]], error) {
	out, err := operators.FullOuter(left.g, left.edge, right.edge)
	if err != nil {
		return Stream[operators.FullJoined[K, V1, V2]]{}, err
	}
	return Stream[operators.FullJoined[K, V1, V2]]{g: left.g, edge: out}, nil
}

// TopK, TopKWithIndex, TopKWithFractionalIndex and TopKWithPreviousRef
// chain operators' ordering variants.

func TopK[K, V comparable](s Stream[operators.KV[K, V]], cmp operators.Comparator[V], limit, offset int) (Stream[operators.KV[K, V]], error) {
	out, err := operators.TopK(s.g, s.edge, cmp, limit, offset)
	if err != nil {
		return Stream[operators.KV[K, V]]{}, err
	}
	return Stream[operators.KV[K, V]]{g: s.g, edge: out}, nil
}

func TopKWithIndex[K, V comparable](s Stream[operators.KV[K, V]], cmp operators.Comparator[V], limit, offset int) (Stream[operators.KV[K, operators.Indexed[V]]], error) {
	out, err := operators.TopKWithIndex(s.g, s.edge, cmp, limit, offset)
	if err != nil {
		return Stream[operators.KV[K, operators.Indexed[V]]]{}, err
	}
	return Stream[operators.KV[K, operators.Indexed[V]]]{g: s.g, edge: out}, nil
}

func TopKWithFractionalIndex[K, V comparable](s Stream[operators.KV[K, V]], cmp operators.Comparator[V], limit, offset int) (Stream[operators.KV[K, operators.Fractional[V]]], error) {
	out, err := operators.TopKWithFractionalIndex(s.g, s.edge, cmp, limit, offset)
	if err != nil {
		return Stream[operators.KV[K, operators.Fractional[V]]]{}, err
	}
	return Stream[operators.KV[K, operators.Fractional[V]]]{g: s.g, edge: out}, nil
}

func TopKWithPreviousRef[K, V comparable](s Stream[operators.KV[K, V]], cmp operators.Comparator[V], limit, offset int) (Stream[operators.KV[K, operators.Ref[V]]], error) {
	out, err := operators.TopKWithPreviousRef(s.g, s.edge, cmp, limit, offset)
	if err != nil {
		return Stream[operators.KV[K, operators.Ref[V]]]{}, err
	}
	return Stream[operators.KV[K, operators.Ref[V]]]{g: s.g, edge: out}, nil
}

// Iterate feeds s through a fixpoint loop. body receives a Stream wrapping
// the loop's merged input edge and must return a Stream wrapping its
// output; it should use Tee on its input whenever it needs to reference
// both the loop variable's current value and a transformation of it (the
// "self" pattern), since an edge can only be drained by one consumer.
func Iterate[T comparable](s Stream[T], body func(Stream[T]) (Stream[T], error), opts ...operators.IterateOption) (Stream[T], error) {
	out, err := operators.Iterate(s.g, s.edge, func(loopInput *graph.Edge[T]) (*graph.Edge[T], error) {
		result, err := body(Stream[T]{g: s.g, edge: loopInput})
		if err != nil {
			return nil, err
		}
		return result.edge, nil
	}, opts...)
	if err != nil {
		return Stream[T]{}, err
	}
	return Stream[T]{g: s.g, edge: out}, nil
}

// Output installs a side-effect sink on s and returns a pass-through
// stream so the chain can continue.
func Output[T any](s Stream[T], handle *graph.OutputHandle[T], fn func(collection.Multiset[T])) (Stream[T], error) {
	out, err := operators.Output(s.g, s.edge, handle, fn)
	if err != nil {
		return Stream[T]{}, err
	}
	return Stream[T]{g: s.g, edge: out}, nil
}
