package graph

import (
	"sync"

	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/errors"
	"github.com/kbukum/difflow/version"
)

// ProducerHandle lets an external producer push data and frontier
// advances into the graph. A single handle may fan out to several reader
// edges — one per downstream operator piped from the same builder handle
// — so that each reader observes its own independent FIFO view of the
// same logical sequence of messages.
type ProducerHandle[T any] struct {
	edges    []*Edge[T]
	frontier version.Frontier
	sent     bool
}

// NewProducerHandle returns a handle with no attached readers yet; the
// graph builder attaches readers as downstream operators are wired.
func NewProducerHandle[T any]() *ProducerHandle[T] {
	return &ProducerHandle[T]{}
}

// AddReader attaches another edge to the handle's fan-out set.
func (p *ProducerHandle[T]) AddReader(e *Edge[T]) {
	p.edges = append(p.edges, e)
}

// SendData pushes a version-free data message to every attached reader.
func (p *ProducerHandle[T]) SendData(m collection.Multiset[T]) {
	msg := Data(m)
	for _, e := range p.edges {
		e.Send(msg)
	}
}

// SendDataAt pushes a versioned data message to every attached reader.
func (p *ProducerHandle[T]) SendDataAt(v version.Version, m collection.Multiset[T]) {
	msg := DataAt(v, m)
	for _, e := range p.edges {
		e.Send(msg)
	}
}

// SendFrontier advances the handle's frontier and pushes the advance to
// every attached reader. f must be monotone with respect to any
// previously sent frontier and must cover every version sent via
// SendData/SendDataAt on this handle so far. Only monotonicity is
// checked: a non-monotone f is rejected with a FrontierViolation error and
// nothing is sent. f is not checked against the versions already sent as
// data.
func (p *ProducerHandle[T]) SendFrontier(f version.Frontier) error {
	if p.sent && !p.frontier.LessEqual(f) {
		return errors.FrontierViolation("producer frontier must advance monotonically")
	}
	p.frontier = f
	p.sent = true
	msg := FrontierAdvance[T](f)
	for _, e := range p.edges {
		e.Send(msg)
	}
	return nil
}

// OutputHandle lets an external consumer install a side-effect callback
// over every forwarded message and probe the accumulated output frontier,
// e.g. to drive an iterate's host loop to quiescence.
type OutputHandle[T any] struct {
	mu        sync.Mutex
	frontier  version.Frontier
	callbacks []func(Message[T])
}

// NewOutputHandle returns a handle with no installed callbacks and an
// empty output frontier.
func NewOutputHandle[T any]() *OutputHandle[T] {
	return &OutputHandle[T]{}
}

// Output installs a side effect invoked on every forwarded message,
// including frontier notifications.
func (h *OutputHandle[T]) Output(cb func(Message[T])) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, cb)
}

// Notify is called by the terminal operator feeding this handle for every
// message it forwards. It updates the tracked output frontier on
// KindFrontier messages and fans out to installed callbacks.
func (h *OutputHandle[T]) Notify(msg Message[T]) {
	h.mu.Lock()
	if msg.Kind == KindFrontier {
		h.frontier = msg.Frontier
	}
	cbs := make([]func(Message[T]), len(h.callbacks))
	copy(cbs, h.callbacks)
	h.mu.Unlock()

	for _, cb := range cbs {
		cb(msg)
	}
}

// Frontier returns the most recently observed output frontier.
func (h *OutputHandle[T]) Frontier() version.Frontier {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frontier
}

// ProbeFrontierLessThan reports whether the output frontier has not yet
// advanced past target — true means the host should keep stepping/running
// the graph; false means quiescence at target has been reached. An empty
// output frontier (none forwarded yet) reports true, and a non-empty one
// reports false against an empty target.
func (h *OutputHandle[T]) ProbeFrontierLessThan(target version.Frontier) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.frontier.IsEmpty() {
		return true
	}
	if target.IsEmpty() {
		return false
	}
	return h.frontier.LessEqual(target)
}
