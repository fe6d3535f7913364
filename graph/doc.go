// Package graph implements the dataflow runtime: a directed graph of
// operators connected by edges, each carrying a FIFO queue of messages.
// The graph exposes input handles for producers, a step primitive that
// drains one round of ready messages, and a run primitive that steps
// until no operator has pending work.
//
// Scheduling is single-threaded and cooperative: step and run execute on
// the caller's goroutine, and there is no implicit parallelism between
// operators. Cyclic topologies (the feedback edge inside iterate) are
// handled by ready-operator scheduling rather than a static topological
// sort — frontier arithmetic, not graph reachability, is what proves an
// iterate eventually closes.
package graph
