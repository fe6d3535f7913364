package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/difflow/index"
	"github.com/kbukum/difflow/version"
)

// Store durably backs the bag of entries at a single logical key, with
// Lookup/Append/Compact counterparts of index.Index's Get/Append/Compact
// that a host
// might want to survive past a single run — not the whole Index, and not
// transparently substitutable for it: an operator still does its own
// in-memory accounting and treats Store as an external checkpoint.
type Store[V comparable] struct {
	client    *Client
	keyPrefix string
}

// NewStore creates a Store backed by client, namespacing every Redis key
// under keyPrefix.
func NewStore[V comparable](client *Client, keyPrefix string) *Store[V] {
	return &Store[V]{client: client, keyPrefix: keyPrefix}
}

func (s *Store[V]) redisKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// wireEntry is index.Entry[V]'s JSON-safe form. version.Version exposes no
// exported fields of its own, so its coordinate tuple is carried separately
// and rebuilt with version.New on the way back in.
type wireEntry[V any] struct {
	Value        V     `json:"value"`
	Multiplicity int   `json:"multiplicity"`
	Coords       []int `json:"coords"`
}

func toWire[V any](e index.Entry[V]) wireEntry[V] {
	return wireEntry[V]{Value: e.Value, Multiplicity: e.Multiplicity, Coords: e.Version.Coords()}
}

func fromWire[V any](w wireEntry[V]) index.Entry[V] {
	return index.Entry[V]{Value: w.Value, Multiplicity: w.Multiplicity, Version: version.New(w.Coords...)}
}

// Lookup returns the bag of entries stored at key, in no particular order.
// A missing key returns an empty slice, not an error.
func (s *Store[V]) Lookup(ctx context.Context, key string) ([]index.Entry[V], error) {
	raw, err := s.client.Get(ctx, s.redisKey(key))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("persist: lookup %q: %w", key, err)
	}

	var wire []wireEntry[V]
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("persist: lookup %q: unmarshal: %w", key, err)
	}
	entries := make([]index.Entry[V], len(wire))
	for i, w := range wire {
		entries[i] = fromWire(w)
	}
	return entries, nil
}

// Append unions fresh into whatever bag is already stored at key and
// writes the result back, mirroring index.Index.Append's union semantics
// for a single key instead of a whole index.
func (s *Store[V]) Append(ctx context.Context, key string, fresh []index.Entry[V]) error {
	existing, err := s.Lookup(ctx, key)
	if err != nil {
		return err
	}
	merged := append(existing, fresh...)
	return s.save(ctx, key, merged)
}

// Compact consolidates the bag stored at key, summing multiplicities of
// value-and-version-equal entries and dropping zeros, mirroring
// index.Index.Compact for a single key.
func (s *Store[V]) Compact(ctx context.Context, key string) error {
	entries, err := s.Lookup(ctx, key)
	if err != nil {
		return err
	}
	consolidated := consolidate(entries)
	if len(consolidated) == 0 {
		return s.client.Del(ctx, s.redisKey(key))
	}
	return s.save(ctx, key, consolidated)
}

func (s *Store[V]) save(ctx context.Context, key string, entries []index.Entry[V]) error {
	wire := make([]wireEntry[V], len(entries))
	for i, e := range entries {
		wire[i] = toWire(e)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("persist: save %q: marshal: %w", key, err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), data, 0); err != nil {
		return fmt.Errorf("persist: save %q: %w", key, err)
	}
	return nil
}

type groupKey[V comparable] struct {
	value   V
	version string
}

// consolidate sums multiplicities of (value, version)-equal entries and
// drops any that net to zero, preserving first-seen order among the
// survivors.
func consolidate[V comparable](entries []index.Entry[V]) []index.Entry[V] {
	sums := make(map[groupKey[V]]int, len(entries))
	versions := make(map[groupKey[V]]version.Version, len(entries))
	var order []groupKey[V]

	for _, e := range entries {
		gk := groupKey[V]{value: e.Value, version: e.Version.String()}
		if _, seen := sums[gk]; !seen {
			order = append(order, gk)
			versions[gk] = e.Version
		}
		sums[gk] += e.Multiplicity
	}

	out := make([]index.Entry[V], 0, len(order))
	for _, gk := range order {
		if mult := sums[gk]; mult != 0 {
			out = append(out, index.Entry[V]{Value: gk.value, Multiplicity: mult, Version: versions[gk]})
		}
	}
	return out
}
