package builder

import (
	"fmt"

	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/operators"
)

// Narrow recovers a concrete type T from an untyped edge produced by
// ResolveGraphSpec's any-typed wiring. Component factories call this on
// each input before handing it to a type-specific operator. A value that
// isn't a T panics, which operators.Map's Step turns into a
// CallbackFailure rather than crashing the host.
func Narrow[T any](g *graph.Graph, input *graph.Edge[any]) (*graph.Edge[T], error) {
	return operators.Map(g, input, func(v any) T {
		t, ok := v.(T)
		if !ok {
			panic(fmt.Errorf("builder: expected %T, got %T", t, v))
		}
		return t
	})
}

// Widen erases a concrete edge's type to any, so a component factory can
// return it as a GraphSpec node's output.
func Widen[T any](g *graph.Graph, input *graph.Edge[T]) (*graph.Edge[any], error) {
	return operators.Map(g, input, func(v T) any { return v })
}
