// Package version implements the partially ordered logical-time values the
// dataflow runtime stamps messages with, and the antichain frontiers
// operators use to bound which times are still possible on an input.
//
// A Version is an integer tuple compared pointwise; Extend/Truncate add and
// remove the extra dimension iterate uses to scope loop bodies.
package version
