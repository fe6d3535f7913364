package version

import (
	"fmt"
	"strings"
)

// Version is a point in a partially ordered logical-time lattice: an
// integer tuple compared pointwise. The zero value is the tuple of all
// zeros at dimension 0 (an empty Version), which compares less-equal to
// everything of the same dimension.
type Version struct {
	coords []int
}

// New constructs a Version from its coordinates. The coordinates are
// copied; the returned Version is safe to share.
func New(coords ...int) Version {
	cp := make([]int, len(coords))
	copy(cp, coords)
	return Version{coords: cp}
}

// Dim returns the number of dimensions (tuple length).
func (v Version) Dim() int { return len(v.coords) }

// At returns the coordinate at dim i.
func (v Version) At(i int) int { return v.coords[i] }

// Coords returns a copy of the underlying coordinates.
func (v Version) Coords() []int {
	cp := make([]int, len(v.coords))
	copy(cp, v.coords)
	return cp
}

// Equal reports whether two versions have identical coordinates.
func (v Version) Equal(o Version) bool {
	if len(v.coords) != len(o.coords) {
		return false
	}
	for i, c := range v.coords {
		if c != o.coords[i] {
			return false
		}
	}
	return true
}

// LessEqual reports whether v <= o under the pointwise partial order.
// Versions of differing dimension are compared after padding the shorter
// one with leading zeros — this only happens transiently in ingress/egress
// bookkeeping, never across a frontier boundary the caller mixes itself.
func (v Version) LessEqual(o Version) bool {
	n := max(len(v.coords), len(o.coords))
	for i := 0; i < n; i++ {
		if v.coordAt(n, i) > o.coordAt(n, i) {
			return false
		}
	}
	return true
}

// coordAt returns the coordinate as if the tuple were right-aligned to
// width n (i.e. padded with leading zeros).
func (v Version) coordAt(n, i int) int {
	offset := n - len(v.coords)
	if i < offset {
		return 0
	}
	return v.coords[i-offset]
}

// Meet returns the componentwise minimum (lattice meet, greatest lower
// bound) of two versions of equal dimension.
func Meet(a, b Version) Version {
	n := len(a.coords)
	out := make([]int, n)
	for i := 0; i < n; i++ {
		if a.coords[i] < b.coords[i] {
			out[i] = a.coords[i]
		} else {
			out[i] = b.coords[i]
		}
	}
	return Version{coords: out}
}

// Join returns the componentwise maximum (lattice join, least upper
// bound) of two versions of equal dimension.
func Join(a, b Version) Version {
	n := len(a.coords)
	out := make([]int, n)
	for i := 0; i < n; i++ {
		if a.coords[i] > b.coords[i] {
			out[i] = a.coords[i]
		} else {
			out[i] = b.coords[i]
		}
	}
	return Version{coords: out}
}

// Extend appends a fresh zero-valued dimension, used when a value enters
// an iterate scope.
func (v Version) Extend() Version {
	out := make([]int, len(v.coords)+1)
	copy(out, v.coords)
	return Version{coords: out}
}

// Truncate drops the last dimension, used when a value leaves an iterate
// scope (egress). Panics if v has no dimensions to drop — a programming
// error, never a runtime condition driven by input data.
func (v Version) Truncate() Version {
	if len(v.coords) == 0 {
		panic("version: Truncate on zero-dimensional version")
	}
	out := make([]int, len(v.coords)-1)
	copy(out, v.coords[:len(v.coords)-1])
	return Version{coords: out}
}

// AdvanceInner returns v with its innermost (last) dimension incremented
// by one, the sub-step advance feedback applies before looping data back
// into the body of an iterate.
func (v Version) AdvanceInner() Version {
	out := v.Coords()
	if len(out) == 0 {
		panic("version: AdvanceInner on zero-dimensional version")
	}
	out[len(out)-1]++
	return Version{coords: out}
}

func (v Version) String() string {
	parts := make([]string, len(v.coords))
	for i, c := range v.coords {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
