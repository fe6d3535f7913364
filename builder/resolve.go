package builder

import (
	"fmt"

	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/observability"
)

// Option configures an optional ResolveGraphSpec behavior.
type Option func(*resolveOptions)

type resolveOptions struct {
	tracingService string
	tracingMetrics *observability.Metrics
}

// WithTracing instruments every operator ResolveGraphSpec wires into g with
// an observability span — and, when metrics is non-nil, per-step duration
// and error recording — tagged with service. Without this option,
// ResolveGraphSpec wires components exactly as their factories built them.
func WithTracing(service string, metrics *observability.Metrics) Option {
	return func(o *resolveOptions) {
		o.tracingService = service
		o.tracingMetrics = metrics
	}
}

type dependencyEdge struct {
	From string
	To   string
}

// buildLevels groups node names into levels via Kahn's algorithm, so that
// every node in a level has had all its in-spec dependencies wired by an
// earlier level. Dependencies already resolved through an include are not
// part of this graph; they're satisfied before level 0 starts.
func buildLevels(names []string, edges []dependencyEdge) ([][]string, error) {
	inDegree := make(map[string]int, len(names))
	dependents := make(map[string][]string)
	known := make(map[string]bool, len(names))
	for _, n := range names {
		inDegree[n] = 0
		known[n] = true
	}
	for _, e := range edges {
		if !known[e.From] {
			return nil, fmt.Errorf("builder: node %q depends on unknown node %q", e.To, e.From)
		}
		if !known[e.To] {
			return nil, fmt.Errorf("builder: edge references unknown node %q", e.To)
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	var queue []string
	for _, n := range names {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	var levels [][]string
	visited := 0
	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)
		var next []string
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}
	if visited != len(names) {
		return nil, fmt.Errorf("builder: cycle detected among graph spec nodes, resolved %d of %d", visited, len(names))
	}
	return levels, nil
}

// ResolveGraphSpec resolves a GraphSpec's includes recursively and wires
// each node into g by calling its registered Factory with the
// already-resolved output edges of its declared dependencies. Unlike a
// batch DAG walked fresh on every run, this wires a long-lived streaming
// graph.Graph once at startup; the returned map lets the caller attach
// producers and probes to named nodes by name.
//
// With WithTracing passed in opts, every node this call wires (including
// ones reached through an include) is instrumented via g.Use before any
// factory runs, so spans cover the full resolved topology, not just nodes
// named directly in spec.
func ResolveGraphSpec(g *graph.Graph, spec *GraphSpec, registry *Registry, loader GraphSpecLoader, opts ...Option) (map[string]*graph.Edge[any], error) {
	var ro resolveOptions
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.tracingService != "" {
		g.Use(observability.Decorator(ro.tracingService, ro.tracingMetrics))
	}

	stack := make(map[string]bool)
	resolved := make(map[string]bool)
	return resolveGraphSpec(g, spec, registry, loader, stack, resolved, make(map[string]*graph.Edge[any]))
}

func resolveGraphSpec(g *graph.Graph, spec *GraphSpec, registry *Registry, loader GraphSpecLoader, stack, resolved map[string]bool, outputs map[string]*graph.Edge[any]) (map[string]*graph.Edge[any], error) {
	if stack[spec.Name] {
		return nil, fmt.Errorf("builder: circular include detected for graph spec %q", spec.Name)
	}
	stack[spec.Name] = true
	defer delete(stack, spec.Name)

	for _, includeName := range spec.Includes {
		if resolved[includeName] {
			continue // already resolved in a different branch (diamond)
		}
		sub, err := loader.Load(includeName)
		if err != nil {
			return nil, fmt.Errorf("builder: loading include %q: %w", includeName, err)
		}
		if _, err := resolveGraphSpec(g, sub, registry, loader, stack, resolved, outputs); err != nil {
			return nil, err
		}
		resolved[includeName] = true
	}

	byName := make(map[string]NodeSpec, len(spec.Nodes))
	var names []string
	var edges []dependencyEdge
	for _, n := range spec.Nodes {
		if _, exists := outputs[n.Name]; exists {
			continue // already wired via include
		}
		byName[n.Name] = n
		names = append(names, n.Name)
		for _, dep := range n.DependsOn {
			if _, already := outputs[dep]; already {
				continue // satisfied by an include, outside this spec's levels
			}
			edges = append(edges, dependencyEdge{From: dep, To: n.Name})
		}
	}

	levels, err := buildLevels(names, edges)
	if err != nil {
		return nil, err
	}
	for _, level := range levels {
		for _, name := range level {
			n := byName[name]
			factory, ok := registry.Get(n.Component)
			if !ok {
				return nil, fmt.Errorf("builder: component %q not found in registry", n.Component)
			}
			inputs := make([]*graph.Edge[any], len(n.DependsOn))
			for i, dep := range n.DependsOn {
				in, ok := outputs[dep]
				if !ok {
					return nil, fmt.Errorf("builder: node %q depends on unresolved node %q", n.Name, dep)
				}
				inputs[i] = in
			}
			out, err := factory(g, inputs, n.Params)
			if err != nil {
				return nil, fmt.Errorf("builder: wiring node %q (%s): %w", n.Name, n.Component, err)
			}
			outputs[n.Name] = out
		}
	}

	resolved[spec.Name] = true
	return outputs, nil
}
