package operators

import (
	"context"
	"testing"

	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
)

func TestCountS2Scenario(t *testing.T) {
	g := graph.New()
	in := graph.NewEdge[KV[string, int]]()
	out, err := Count[string, int](g, in)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	producer := graph.NewProducerHandle[KV[string, int]]()
	producer.AddReader(in)

	round := func(entries ...collection.Entry[KV[string, int]]) []collection.Entry[KV[string, int]] {
		producer.SendData(collection.Of(entries...))
		if err := g.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
		msgs := out.Drain()
		if len(msgs) == 0 {
			return nil
		}
		var all []collection.Entry[KV[string, int]]
		for _, m := range msgs {
			if m.Kind == graph.KindData {
				all = append(all, m.Collection.Entries()...)
			}
		}
		return all
	}

	kv := func(k string, v, mult int) collection.Entry[KV[string, int]] {
		return collection.Entry[KV[string, int]]{Value: KV[string, int]{Key: k, Value: v}, Multiplicity: mult}
	}

	r1 := round(kv("A", 10, 1), kv("A", 20, 1))
	assertCountDelta(t, r1, map[int]int{2: 1})

	r2 := round(kv("A", 30, 1), kv("A", 30, 1))
	assertCountDelta(t, r2, map[int]int{2: -1, 4: 1})

	r3 := round(kv("A", 30, -1))
	assertCountDelta(t, r3, map[int]int{4: -1, 3: 1})

	r4 := round(kv("A", 30, -1))
	assertCountDelta(t, r4, map[int]int{3: -1, 2: 1})
}

func assertCountDelta(t *testing.T, got []collection.Entry[KV[string, int]], want map[int]int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d delta entries, want %d: %+v", len(got), len(want), got)
	}
	for _, e := range got {
		if want[e.Value.Value] != e.Multiplicity {
			t.Fatalf("entry %+v: want multiplicity %d", e, want[e.Value.Value])
		}
	}
}

func TestReduceNoOpEmitsNothing(t *testing.T) {
	g := graph.New()
	in := graph.NewEdge[KV[string, int]]()
	out, err := Count[string, int](g, in)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	producer := graph.NewProducerHandle[KV[string, int]]()
	producer.AddReader(in)

	producer.SendData(collection.Of(
		collection.Entry[KV[string, int]]{Value: KV[string, int]{Key: "A", Value: 1}, Multiplicity: 1},
		collection.Entry[KV[string, int]]{Value: KV[string, int]{Key: "A", Value: 1}, Multiplicity: -1},
	))
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	msgs := out.Drain()
	for _, m := range msgs {
		if m.Kind == graph.KindData && m.Collection.Len() > 0 {
			t.Fatalf("expected no data emission for a zero-delta round, got %+v", m.Collection.Entries())
		}
	}
}
