package graph

import "github.com/google/uuid"

// EdgeID identifies an edge within a graph.
type EdgeID = uuid.UUID

// Queue is the type-erased view of an Edge the scheduler needs: enough to
// decide whether an operator has pending work, without knowing the
// element type the edge carries.
type Queue interface {
	ID() EdgeID
	Pending() int
}

// Edge[T] is a single-writer, multi-reader-view FIFO queue of Message[T]
// from one writer operator to one reader operator. When a builder handle
// is piped into multiple downstream operators, the writer publishes once
// per fan-out edge — each reader gets its own Edge and therefore its own
// independent FIFO view of the same logical sequence of messages.
type Edge[T any] struct {
	id    EdgeID
	queue []Message[T]
}

// NewEdge creates an empty edge.
func NewEdge[T any]() *Edge[T] {
	return &Edge[T]{id: uuid.New()}
}

// ID returns the edge's identity.
func (e *Edge[T]) ID() EdgeID { return e.id }

// Pending reports how many messages are queued and not yet drained.
func (e *Edge[T]) Pending() int { return len(e.queue) }

// Send appends a message to the tail of the queue. Messages are never
// reordered: FIFO delivery on a single edge is relied on by every
// downstream operator.
func (e *Edge[T]) Send(msg Message[T]) {
	e.queue = append(e.queue, msg)
}

// Drain removes and returns every currently queued message, in order.
// Reader operators drain all currently buffered messages on each step.
func (e *Edge[T]) Drain() []Message[T] {
	if len(e.queue) == 0 {
		return nil
	}
	out := e.queue
	e.queue = nil
	return out
}
