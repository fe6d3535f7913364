package version

// Frontier is an antichain of versions: no element is less-equal to
// another. It represents "no data at or below these times is still
// possible" on some input or output.
type Frontier struct {
	elements []Version
}

// NewFrontier builds the minimal antichain covering the given candidate
// versions, dropping any candidate dominated by (greater-equal to) another
// candidate — a dominated element contributes nothing to the covered set
// that the smaller element doesn't already contribute.
func NewFrontier(candidates ...Version) Frontier {
	var kept []Version
	for _, c := range candidates {
		dominated := false
		for _, k := range kept {
			if k.LessEqual(c) {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}
		// Drop any already-kept element that c dominates.
		filtered := kept[:0]
		for _, k := range kept {
			if !c.LessEqual(k) || c.Equal(k) {
				filtered = append(filtered, k)
			}
		}
		kept = append(filtered, c)
	}
	return Frontier{elements: kept}
}

// Empty is the frontier with no elements — it covers nothing, the state
// of an input that has not yet produced any data.
func Empty() Frontier { return Frontier{} }

// Elements returns a copy of the antichain's versions.
func (f Frontier) Elements() []Version {
	cp := make([]Version, len(f.elements))
	copy(cp, f.elements)
	return cp
}

// IsEmpty reports whether the frontier has no elements.
func (f Frontier) IsEmpty() bool { return len(f.elements) == 0 }

// Covers reports whether some element of f is less-equal to v — i.e.
// whether v lies at or beyond a time the frontier has already cleared.
func (f Frontier) Covers(v Version) bool {
	for _, e := range f.elements {
		if e.LessEqual(v) {
			return true
		}
	}
	return false
}

// LessEqual reports whether f has advanced no further than g: every
// element of g is covered by f. A monotone frontier sequence
// satisfies prev.LessEqual(next) for every successive pair.
func (f Frontier) LessEqual(g Frontier) bool {
	for _, e := range g.elements {
		if !f.Covers(e) {
			return false
		}
	}
	return true
}

// Equal reports whether f and g cover exactly the same set of versions.
func (f Frontier) Equal(g Frontier) bool {
	return f.LessEqual(g) && g.LessEqual(f)
}

// Merge combines two frontiers into the minimal antichain covering the
// union of their elements — used when an operator has multiple inputs and
// its effective frontier is the meet of each input frontier's coverage.
func Merge(a, b Frontier) Frontier {
	all := append(append([]Version{}, a.elements...), b.elements...)
	return NewFrontier(all...)
}

// Extend returns the frontier obtained by replacing every element with
// its extension into a fresh loop dimension (ingress).
func (f Frontier) Extend() Frontier {
	out := make([]Version, len(f.elements))
	for i, e := range f.elements {
		out[i] = e.Extend()
	}
	return NewFrontier(out...)
}

// Truncate drops the innermost dimension of every element (egress).
func (f Frontier) Truncate() Frontier {
	out := make([]Version, len(f.elements))
	for i, e := range f.elements {
		out[i] = e.Truncate()
	}
	return NewFrontier(out...)
}

func (f Frontier) String() string {
	s := "{"
	for i, e := range f.elements {
		if i > 0 {
			s += ","
		}
		s += e.String()
	}
	return s + "}"
}
