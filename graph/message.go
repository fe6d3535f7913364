package graph

import (
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/version"
)

// Kind discriminates the two message shapes an edge carries.
type Kind int

const (
	// KindData carries a collection delta, optionally tagged with a
	// version in the versioned execution mode.
	KindData Kind = iota
	// KindFrontier carries a frontier advance: a promise that every future
	// Data message on this edge carries a version the new frontier
	// covers.
	KindFrontier
)

// Message[T] is the tagged sum an edge transports: either Data{version?,
// collection} or Frontier{antichain}. The version-free execution mode
// never produces KindFrontier messages and leaves Version at its zero
// value on Data messages.
type Message[T any] struct {
	Kind       Kind
	Version    version.Version
	Collection collection.Multiset[T]
	Frontier   version.Frontier
}

// Data builds a version-free data message.
func Data[T any](m collection.Multiset[T]) Message[T] {
	return Message[T]{Kind: KindData, Collection: m}
}

// DataAt builds a versioned data message.
func DataAt[T any](v version.Version, m collection.Multiset[T]) Message[T] {
	return Message[T]{Kind: KindData, Version: v, Collection: m}
}

// FrontierAdvance builds a frontier-advance message.
func FrontierAdvance[T any](f version.Frontier) Message[T] {
	return Message[T]{Kind: KindFrontier, Frontier: f}
}
