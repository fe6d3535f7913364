// Package operators implements the dataflow engine's operator set: the
// stateless operators (map, filter, negate, concat, output), consolidate,
// the stateful-by-key operators (reduce and its count/sum/avg/min/max
// derivatives, distinct, join and its anti/left/right/full derivatives),
// the ordering operators (topK and its index/fractional-index/previous-ref
// variants), and the iteration primitives (ingress, egress, feedback,
// iterate).
//
// Every constructor is a graph.Operator factory: it registers one or more
// operators with a *graph.Graph and returns the edge(s) a caller chains
// further operators from.
package operators
