package collection

import (
	"context"
	"testing"
)

func TestLazyMaterialize(t *testing.T) {
	l := FromSlice(
		Entry[int]{Value: 1, Multiplicity: 1},
		Entry[int]{Value: 2, Multiplicity: 1},
	)
	doubled := MapLazy(l, func(x int) int { return x * 2 })
	even := FilterLazy(doubled, func(x int) bool { return x%2 == 0 })

	m, err := even.Materialize(context.Background())
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("got %d entries, want 2: %+v", m.Len(), m.Entries())
	}
}

func TestLazySingleConsumption(t *testing.T) {
	l := FromSlice(Entry[int]{Value: 1, Multiplicity: 1})
	ctx := context.Background()
	if _, err := l.Materialize(ctx); err != nil {
		t.Fatalf("first Materialize: %v", err)
	}
	if _, err := l.Materialize(ctx); err == nil {
		t.Fatalf("expected error on second Materialize of the same LazyMultiset")
	}
}

func TestLazyForEach(t *testing.T) {
	l := FromSlice(
		Entry[int]{Value: 1, Multiplicity: 1},
		Entry[int]{Value: 2, Multiplicity: 1},
		Entry[int]{Value: 3, Multiplicity: 1},
	)
	var sum int
	err := l.ForEach(context.Background(), func(e Entry[int]) error {
		sum += e.Value
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if sum != 6 {
		t.Fatalf("sum = %d, want 6", sum)
	}
}
