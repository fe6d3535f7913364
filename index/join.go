package index

import "github.com/kbukum/difflow/version"

// Joined is one entry of a keyed join's output: the shared key and one
// (left, right) pair drawn from the Cartesian product of the two sides'
// bags at that key, with the multiplicities multiplied and the version set
// to the lattice join of the two contributing entries' versions.
type Joined[K, V1, V2 any] struct {
	Key          K
	Left         V1
	Right        V2
	Multiplicity int
	Version      version.Version
}

// Join produces, for each key present in both a and b, the Cartesian
// product of their bags with multiplicities multiplied. The result is a
// (possibly non-canonical) set of Joined entries — callers wanting a
// canonical Multiset should consolidate downstream, since Joined itself
// carries a per-entry version that a plain Multiset cannot.
//
// The implementation iterates the smaller index's keys outer, since doing
// so only changes the amount of work performed and never the observable
// result.
func Join[K comparable, V1 comparable, V2 comparable](a *Index[K, V1], b *Index[K, V2]) []Joined[K, V1, V2] {
	var out []Joined[K, V1, V2]
	emit := func(k K, l entry[V1], r entry[V2]) {
		out = append(out, Joined[K, V1, V2]{
			Key:          k,
			Left:         l.Value,
			Right:        r.Value,
			Multiplicity: l.Multiplicity * r.Multiplicity,
			Version:      version.Join(l.Version, r.Version),
		})
	}
	if len(a.data) <= len(b.data) {
		for k, leftEntries := range a.data {
			rightEntries, ok := b.data[k]
			if !ok {
				continue
			}
			for _, l := range leftEntries {
				for _, r := range rightEntries {
					emit(k, l, r)
				}
			}
		}
		return out
	}
	for k, rightEntries := range b.data {
		leftEntries, ok := a.data[k]
		if !ok {
			continue
		}
		for _, r := range rightEntries {
			for _, l := range leftEntries {
				emit(k, l, r)
			}
		}
	}
	return out
}
