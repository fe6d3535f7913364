package operators

import (
	"context"
	"testing"

	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/version"
)

func TestIterateGeometricSeriesS6Scenario(t *testing.T) {
	g := graph.New()
	seed := graph.NewEdge[int]()

	out, err := Iterate(g, seed, func(loopInput *graph.Edge[int]) (*graph.Edge[int], error) {
		selfA, selfB, err := Tee(g, loopInput)
		if err != nil {
			return nil, err
		}
		doubled, err := Map(g, selfA, func(x int) int { return 2 * x })
		if err != nil {
			return nil, err
		}
		unioned, err := Concat(g, doubled, selfB)
		if err != nil {
			return nil, err
		}
		filtered, err := Filter(g, unioned, func(x int) bool { return x <= 50 })
		if err != nil {
			return nil, err
		}
		return Distinct(g, filtered)
	})
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	producer := graph.NewProducerHandle[int]()
	producer.AddReader(seed)
	producer.SendData(collection.Single(1, 1))

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	totals := make(map[int]int)
	for _, m := range out.Drain() {
		if m.Kind == graph.KindData {
			for _, e := range m.Collection.Entries() {
				totals[e.Value] += e.Multiplicity
			}
		}
	}

	want := map[int]int{1: 1, 2: 1, 4: 1, 8: 1, 16: 1, 32: 1}
	for v, mult := range want {
		if totals[v] != mult {
			t.Errorf("value %d: got accumulated multiplicity %d, want %d (totals=%+v)", v, totals[v], mult, totals)
		}
	}
	for v, mult := range totals {
		if mult == 0 {
			continue
		}
		if _, expected := want[v]; !expected {
			t.Errorf("unexpected surviving value %d with multiplicity %d", v, mult)
		}
	}
}

// TestIterateProbeFrontierClosesOnFixpoint drives the same geometric-series
// loop through an OutputHandle and checks ProbeFrontierLessThan against the
// empty frontier: vacuously true before anything has closed (an empty
// frontier has no elements to fail covering), and false once the feedback
// operator has detected the inner fixpoint and egress has forwarded the
// closure advance — the wiring review comment 2 asked for, not just the
// final accumulated totals.
func TestIterateProbeFrontierClosesOnFixpoint(t *testing.T) {
	g := graph.New()
	seed := graph.NewEdge[int]()

	out, err := Iterate(g, seed, func(loopInput *graph.Edge[int]) (*graph.Edge[int], error) {
		selfA, selfB, err := Tee(g, loopInput)
		if err != nil {
			return nil, err
		}
		doubled, err := Map(g, selfA, func(x int) int { return 2 * x })
		if err != nil {
			return nil, err
		}
		unioned, err := Concat(g, doubled, selfB)
		if err != nil {
			return nil, err
		}
		filtered, err := Filter(g, unioned, func(x int) bool { return x <= 50 })
		if err != nil {
			return nil, err
		}
		return Distinct(g, filtered)
	})
	if err != nil {
		t.Fatalf("Iterate: %v", err)
	}

	handle := graph.NewOutputHandle[int]()
	if _, err := Output(g, out, handle, nil); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	producer := graph.NewProducerHandle[int]()
	producer.AddReader(seed)

	target := version.Empty()
	if !handle.ProbeFrontierLessThan(target) {
		t.Fatalf("probe should report not-yet-converged before any input has been sent")
	}

	producer.SendDataAt(version.New(), collection.Single(1, 1))
	if err := producer.SendFrontier(version.NewFrontier(version.New())); err != nil {
		t.Fatalf("SendFrontier: %v", err)
	}
	if !handle.ProbeFrontierLessThan(target) {
		t.Fatalf("probe should still report not-yet-converged before the graph has run")
	}

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if handle.ProbeFrontierLessThan(target) {
		t.Fatalf("probe should report converged once the loop's inner fixpoint has closed and egress has forwarded it")
	}
}
