package collection

import "testing"

func TestMapFilterNegateRoundtrip(t *testing.T) {
	// S1 — map+filter+negate roundtrip.
	input := Of(
		Entry[int]{Value: 1, Multiplicity: 1},
		Entry[int]{Value: 2, Multiplicity: 2},
		Entry[int]{Value: 3, Multiplicity: 1},
		Entry[int]{Value: 4, Multiplicity: 1},
		Entry[int]{Value: 5, Multiplicity: 2},
	)

	doubled := Map(input, func(x int) int { return 2 * x })
	big := Filter(doubled, func(x int) bool { return x > 4 })
	incremented := Map(big, func(x int) int { return x + 1 })
	out := Consolidate(Negate(incremented))

	want := map[int]int{7: -1, 9: -1, 11: -2}
	if out.Len() != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", out.Len(), len(want), out.Entries())
	}
	for _, e := range out.Entries() {
		if want[e.Value] != e.Multiplicity {
			t.Fatalf("entry %v: got multiplicity %d, want %d", e.Value, e.Multiplicity, want[e.Value])
		}
	}
}

func TestMapComposition(t *testing.T) {
	m := Of(Entry[int]{Value: 3, Multiplicity: 5})
	f := func(x int) int { return x + 1 }
	g := func(x int) int { return x * 2 }

	composed := Map(m, func(x int) int { return f(g(x)) })
	sequential := Map(Map(m, g), f)

	if !Equal(composed, sequential) {
		t.Fatalf("map(f)∘map(g) = %v, want map(f∘g) = %v", sequential.Entries(), composed.Entries())
	}
}

func TestNegateInvolution(t *testing.T) {
	m := Of(
		Entry[string]{Value: "a", Multiplicity: 3},
		Entry[string]{Value: "b", Multiplicity: -2},
	)
	back := Negate(Negate(m))
	if !Equal(back, m) {
		t.Fatalf("negate(negate(m)) = %v, want %v", back.Entries(), m.Entries())
	}
}

func TestConsolidateIdempotent(t *testing.T) {
	m := Consolidate(Of(
		Entry[int]{Value: 1, Multiplicity: 2},
		Entry[int]{Value: 1, Multiplicity: -1},
		Entry[int]{Value: 2, Multiplicity: 3},
	))
	twice := Consolidate(m)
	if !Equal(m, twice) {
		t.Fatalf("consolidate not idempotent: %v vs %v", m.Entries(), twice.Entries())
	}
	for _, e := range m.Entries() {
		if e.Multiplicity == 0 {
			t.Fatalf("canonical multiset has zero-multiplicity entry: %+v", e)
		}
	}
}

func TestConsolidateDropsZero(t *testing.T) {
	m := Consolidate(Of(
		Entry[int]{Value: 5, Multiplicity: 2},
		Entry[int]{Value: 5, Multiplicity: -2},
	))
	if m.Len() != 0 {
		t.Fatalf("expected zero entries after cancellation, got %+v", m.Entries())
	}
}

func TestConcatNotCanonicalButConsolidatesCorrectly(t *testing.T) {
	a := Of(Entry[int]{Value: 1, Multiplicity: 1})
	b := Of(Entry[int]{Value: 1, Multiplicity: 1})
	combined := Concat(a, b)
	if combined.Len() != 2 {
		t.Fatalf("concat should not consolidate, got %+v", combined.Entries())
	}
	c := Consolidate(combined)
	if c.Len() != 1 || c.Entries()[0].Multiplicity != 2 {
		t.Fatalf("consolidate(concat(a,b)) = %+v, want [{1 2}]", c.Entries())
	}
}

func TestConcatCommutativeUpToConsolidation(t *testing.T) {
	a := Of(Entry[int]{Value: 1, Multiplicity: 1}, Entry[int]{Value: 2, Multiplicity: 1})
	b := Of(Entry[int]{Value: 2, Multiplicity: -1}, Entry[int]{Value: 3, Multiplicity: 1})
	if !Equal(Concat(a, b), Concat(b, a)) {
		t.Fatalf("concat not commutative up to consolidation")
	}
}
