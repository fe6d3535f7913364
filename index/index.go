package index

import (
	"github.com/kbukum/difflow/version"
)

// entry is one (value, multiplicity) pair stored under a key, tagged with
// the version at which it was added.
type entry[V any] struct {
	Value        V
	Multiplicity int
	Version      version.Version
}

// Entry is the externally visible form of a stored entry, returned by Get
// and ReconstructAt.
type Entry[V any] struct {
	Value        V
	Multiplicity int
	Version      version.Version
}

// Index is a keyed multimap from K to a bag of (V, multiplicity) entries.
// Each stateful operator exclusively owns its Index; there is no sharing
// between operators.
type Index[K comparable, V comparable] struct {
	data  map[K][]entry[V]
	dirty map[K]struct{}
}

// New returns an empty Index.
func New[K comparable, V comparable]() *Index[K, V] {
	return &Index[K, V]{
		data:  make(map[K][]entry[V]),
		dirty: make(map[K]struct{}),
	}
}

// Add inserts a (value, multiplicity) entry at the zero version, for use
// in the version-free execution mode.
func (ix *Index[K, V]) Add(key K, value V, multiplicity int) {
	ix.AddVersioned(key, value, multiplicity, version.Version{})
}

// AddVersioned inserts a (value, multiplicity) entry tagged with v.
func (ix *Index[K, V]) AddVersioned(key K, value V, multiplicity int, v version.Version) {
	ix.data[key] = append(ix.data[key], entry[V]{Value: value, Multiplicity: multiplicity, Version: v})
	ix.dirty[key] = struct{}{}
}

// Append unions other into ix: every entry of other is inserted into ix,
// and every key it touches is marked dirty.
func (ix *Index[K, V]) Append(other *Index[K, V]) {
	for k, entries := range other.data {
		ix.data[k] = append(ix.data[k], entries...)
		ix.dirty[k] = struct{}{}
	}
}

// Get returns the bag of entries stored at key, in insertion order. The
// bag is not implicitly compacted; call Compact first if canonical
// multiplicities are required.
func (ix *Index[K, V]) Get(key K) []Entry[V] {
	stored := ix.data[key]
	out := make([]Entry[V], len(stored))
	for i, e := range stored {
		out[i] = Entry[V](e)
	}
	return out
}

// Keys returns every key with at least one stored entry.
func (ix *Index[K, V]) Keys() []K {
	keys := make([]K, 0, len(ix.data))
	for k, entries := range ix.data {
		if len(entries) > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// DirtyKeys returns the keys touched since the last Compact call.
func (ix *Index[K, V]) DirtyKeys() []K {
	keys := make([]K, 0, len(ix.dirty))
	for k := range ix.dirty {
		keys = append(keys, k)
	}
	return keys
}

// Compact consolidates the bag at each given key, summing multiplicities
// of value-and-version-equal entries and dropping zeros. With no keys
// given, it compacts every dirty key and clears the dirty set.
func (ix *Index[K, V]) Compact(keys ...K) {
	targets := keys
	clearAllDirty := len(keys) == 0
	if clearAllDirty {
		targets = ix.DirtyKeys()
	}
	for _, k := range targets {
		ix.data[k] = consolidateEntries(ix.data[k])
		if len(ix.data[k]) == 0 {
			delete(ix.data, k)
		}
		if !clearAllDirty {
			delete(ix.dirty, k)
		}
	}
	if clearAllDirty {
		ix.dirty = make(map[K]struct{})
	}
}

// CompactFrontier merges, at every key, entries whose version is no
// longer coverable by frontier (i.e. no future sendData can land at or
// below that version) — these are summed by (value, version) and zeros
// dropped, since no further deltas will ever split them apart again.
// Entries whose version is still covered by frontier are left untouched,
// since a later delta at that exact version may yet need to stand apart.
func (ix *Index[K, V]) CompactFrontier(f version.Frontier) {
	for k, entries := range ix.data {
		var live, closed []entry[V]
		for _, e := range entries {
			if f.Covers(e.Version) {
				live = append(live, e)
			} else {
				closed = append(closed, e)
			}
		}
		merged := consolidateEntries(closed)
		merged = append(merged, live...)
		if len(merged) == 0 {
			delete(ix.data, k)
		} else {
			ix.data[k] = merged
		}
	}
}

// Versions returns the distinct versions with at least one entry at key,
// used by consumers to enumerate join versions.
func (ix *Index[K, V]) Versions(key K) []version.Version {
	seen := make(map[string]version.Version)
	for _, e := range ix.data[key] {
		seen[e.Version.String()] = e.Version
	}
	out := make([]version.Version, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	return out
}

// ReconstructAt returns the consolidated bag visible at key as of v: every
// stored entry whose version is less-equal to v, summed by value.
func (ix *Index[K, V]) ReconstructAt(key K, v version.Version) []Entry[V] {
	var visible []entry[V]
	for _, e := range ix.data[key] {
		if e.Version.LessEqual(v) {
			visible = append(visible, e)
		}
	}
	consolidated := consolidateByValue(visible)
	out := make([]Entry[V], len(consolidated))
	for i, e := range consolidated {
		out[i] = Entry[V]{Value: e.Value, Multiplicity: e.Multiplicity, Version: v}
	}
	return out
}

func consolidateEntries[V comparable](entries []entry[V]) []entry[V] {
	type key struct {
		value V
		v     string
	}
	totals := make(map[key]int, len(entries))
	versions := make(map[key]version.Version, len(entries))
	var order []key
	for _, e := range entries {
		k := key{value: e.Value, v: e.Version.String()}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
			versions[k] = e.Version
		}
		totals[k] += e.Multiplicity
	}
	out := make([]entry[V], 0, len(order))
	for _, k := range order {
		if mult := totals[k]; mult != 0 {
			out = append(out, entry[V]{Value: k.value, Multiplicity: mult, Version: versions[k]})
		}
	}
	return out
}

func consolidateByValue[V comparable](entries []entry[V]) []entry[V] {
	totals := make(map[V]int, len(entries))
	var order []V
	for _, e := range entries {
		if _, seen := totals[e.Value]; !seen {
			order = append(order, e.Value)
		}
		totals[e.Value] += e.Multiplicity
	}
	out := make([]entry[V], 0, len(order))
	for _, v := range order {
		if mult := totals[v]; mult != 0 {
			out = append(out, entry[V]{Value: v, Multiplicity: mult})
		}
	}
	return out
}
