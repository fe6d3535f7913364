package graph

import "github.com/google/uuid"

// ScopeID identifies a nested iterate scope: the extra lattice dimension
// an ingress/egress pair appends to and strips from every version passing
// through a loop body.
type ScopeID = uuid.UUID

// NewScopeID returns a fresh scope identity.
func NewScopeID() ScopeID {
	return uuid.New()
}

// PushScope records entry into a nested iterate scope, innermost last.
func (g *Graph) PushScope(id ScopeID) {
	g.scopeStack = append(g.scopeStack, id)
}

// PopScope records exit from the innermost iterate scope. It is a no-op
// if no scope is active.
func (g *Graph) PopScope() {
	if len(g.scopeStack) == 0 {
		return
	}
	g.scopeStack = g.scopeStack[:len(g.scopeStack)-1]
}

// CurrentScope returns the innermost active scope and whether one exists.
func (g *Graph) CurrentScope() (ScopeID, bool) {
	if len(g.scopeStack) == 0 {
		return ScopeID{}, false
	}
	return g.scopeStack[len(g.scopeStack)-1], true
}
