package graph

import (
	"context"

	"github.com/google/uuid"
)

// OperatorID identifies an operator within a graph.
type OperatorID = uuid.UUID

// Operator is the shape every dataflow stage shares: drain pending input,
// run to completion, emit output. The operator set is meant to be
// extensible (a host may register its own), so Operator is a plain
// interface rather than a closed tagged enum.
//
// User-supplied functions (reducer, comparator, predicate) are owned by
// the concrete Operator that holds them; Step must leave the operator's
// state unchanged if a user callback returns an error, since emission may
// only happen after all computation for the step has succeeded.
type Operator interface {
	// ID returns the operator's identity.
	ID() OperatorID
	// Name returns a human-readable label, used in logs and traces
	// (e.g. "operators.map", "operators.join").
	Name() string
	// Inputs returns the operator's input queues, used by the scheduler
	// to decide whether the operator has pending work.
	Inputs() []Queue
	// Step drains currently pending input and emits output. It returns
	// whether it did anything (false means it was invoked with nothing
	// to drain). Step runs to completion; operators never suspend
	// mid-step.
	Step(ctx context.Context) (bool, error)
}
