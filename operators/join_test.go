package operators

import (
	"context"
	"testing"

	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
)

func TestJoinS3Scenario(t *testing.T) {
	g := graph.New()
	left := graph.NewEdge[KV[int, string]]()
	right := graph.NewEdge[KV[int, string]]()
	out, err := Join[int, string, string](g, left, right)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	leftProducer := graph.NewProducerHandle[KV[int, string]]()
	leftProducer.AddReader(left)
	rightProducer := graph.NewProducerHandle[KV[int, string]]()
	rightProducer.AddReader(right)

	kv := func(k int, v string, mult int) collection.Entry[KV[int, string]] {
		return collection.Entry[KV[int, string]]{Value: KV[int, string]{Key: k, Value: v}, Multiplicity: mult}
	}

	leftProducer.SendData(collection.Of(kv(1, "a", 1), kv(2, "b", -1)))
	rightProducer.SendData(collection.Of(kv(1, "x", 1), kv(2, "y", 1)))
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got []collection.Entry[Joined[int, string, string]]
	for _, m := range out.Drain() {
		if m.Kind == graph.KindData {
			got = append(got, m.Collection.Entries()...)
		}
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(got), got)
	}
	want := map[int]struct {
		left, right string
		mult        int
	}{
		1: {"a", "x", 1},
		2: {"b", "y", -1},
	}
	for _, e := range got {
		w, ok := want[e.Value.Key]
		if !ok {
			t.Fatalf("unexpected key %d", e.Value.Key)
		}
		if e.Value.Left != w.left || e.Value.Right != w.right || e.Multiplicity != w.mult {
			t.Fatalf("key %d: got (%s,%s,%d), want (%s,%s,%d)", e.Value.Key, e.Value.Left, e.Value.Right, e.Multiplicity, w.left, w.right, w.mult)
		}
	}
}

func TestAntiEmitsUnmatchedLeftOnly(t *testing.T) {
	g := graph.New()
	left := graph.NewEdge[KV[int, string]]()
	right := graph.NewEdge[KV[int, string]]()
	out, err := Anti[int, string, string](g, left, right)
	if err != nil {
		t.Fatalf("Anti: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	leftProducer := graph.NewProducerHandle[KV[int, string]]()
	leftProducer.AddReader(left)
	rightProducer := graph.NewProducerHandle[KV[int, string]]()
	rightProducer.AddReader(right)

	kv := func(k int, v string, mult int) collection.Entry[KV[int, string]] {
		return collection.Entry[KV[int, string]]{Value: KV[int, string]{Key: k, Value: v}, Multiplicity: mult}
	}

	leftProducer.SendData(collection.Of(kv(1, "a", 1), kv(2, "b", 1)))
	rightProducer.SendData(collection.Of(kv(1, "x", 1)))
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got []collection.Entry[AntiJoined[int, string]]
	for _, m := range out.Drain() {
		if m.Kind == graph.KindData {
			got = append(got, m.Collection.Entries()...)
		}
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1: %+v", len(got), got)
	}
	if got[0].Value.Key != 2 || got[0].Value.Left != "b" || got[0].Multiplicity != 1 {
		t.Fatalf("got %+v, want key 2 value b mult 1", got[0])
	}
}

func TestFullOuterCoversBothSidesUnmatched(t *testing.T) {
	g := graph.New()
	left := graph.NewEdge[KV[int, string]]()
	right := graph.NewEdge[KV[int, string]]()
	out, err := FullOuter[int, string, string](g, left, right)
	if err != nil {
		t.Fatalf("FullOuter: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	leftProducer := graph.NewProducerHandle[KV[int, string]]()
	leftProducer.AddReader(left)
	rightProducer := graph.NewProducerHandle[KV[int, string]]()
	rightProducer.AddReader(right)

	kv := func(k int, v string, mult int) collection.Entry[KV[int, string]] {
		return collection.Entry[KV[int, string]]{Value: KV[int, string]{Key: k, Value: v}, Multiplicity: mult}
	}

	// key 1 matches on both sides; key 2 is left-only; key 3 is right-only.
	leftProducer.SendData(collection.Of(kv(1, "a", 1), kv(2, "b", 1)))
	rightProducer.SendData(collection.Of(kv(1, "x", 1), kv(3, "z", 1)))
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got []collection.Entry[FullJoined[int, string, string]]
	for _, m := range out.Drain() {
		if m.Kind == graph.KindData {
			got = append(got, m.Collection.Entries()...)
		}
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(got), got)
	}
	seen := make(map[int]FullJoined[int, string, string])
	for _, e := range got {
		seen[e.Value.Key] = e.Value
	}
	if m := seen[1]; !m.LeftMatched || !m.RightMatched || m.Left != "a" || m.Right != "x" {
		t.Fatalf("key 1: %+v", m)
	}
	if m := seen[2]; m.LeftMatched || m.RightMatched || m.Left != "b" {
		t.Fatalf("key 2: %+v", m)
	}
	if m := seen[3]; m.LeftMatched || m.RightMatched || m.Right != "z" {
		t.Fatalf("key 3: %+v", m)
	}
}
