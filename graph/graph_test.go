package graph

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/version"
)

func mustFrontier(n int) version.Frontier {
	return version.NewFrontier(version.New(n))
}

// doubleOperator is a minimal test Operator: it drains its input edge,
// doubles every int value preserving multiplicity, and forwards the
// result (plus any frontier message) to its output edge and handle.
type doubleOperator struct {
	id     OperatorID
	input  *Edge[int]
	output *Edge[int]
	handle *OutputHandle[int]
}

func newDoubleOperator(input, output *Edge[int], handle *OutputHandle[int]) *doubleOperator {
	return &doubleOperator{id: uuid.New(), input: input, output: output, handle: handle}
}

func (d *doubleOperator) ID() OperatorID  { return d.id }
func (d *doubleOperator) Name() string    { return "test.double" }
func (d *doubleOperator) Inputs() []Queue { return []Queue{d.input} }

func (d *doubleOperator) Step(_ context.Context) (bool, error) {
	msgs := d.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	for _, msg := range msgs {
		var out Message[int]
		switch msg.Kind {
		case KindData:
			out = DataAt(msg.Version, collection.Map(msg.Collection, func(x int) int { return x * 2 }))
		case KindFrontier:
			out = FrontierAdvance[int](msg.Frontier)
		}
		d.output.Send(out)
		if d.handle != nil {
			d.handle.Notify(out)
		}
	}
	return true, nil
}

func TestStepRunDrainsToQuiescence(t *testing.T) {
	g := New()
	in := NewEdge[int]()
	out := NewEdge[int]()
	handle := NewOutputHandle[int]()
	op := newDoubleOperator(in, out, handle)
	if err := g.Add(op); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	producer := NewProducerHandle[int]()
	producer.AddReader(in)
	producer.SendData(collection.Single(3, 1))

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := out.Drain()
	if len(msgs) != 1 || msgs[0].Collection.Len() != 1 {
		t.Fatalf("expected one forwarded data message, got %+v", msgs)
	}
	entry := msgs[0].Collection.Entries()[0]
	if entry.Value != 6 || entry.Multiplicity != 1 {
		t.Fatalf("got entry %+v, want {6 1}", entry)
	}

	progressed, err := g.Step(context.Background())
	if err != nil {
		t.Fatalf("Step after quiescence: %v", err)
	}
	if progressed {
		t.Fatalf("expected Step to report no progress once quiescent")
	}
}

func TestDuplicateFinalizeIsTopologyError(t *testing.T) {
	g := New()
	if err := g.Finalize(); err != nil {
		t.Fatalf("first Finalize: %v", err)
	}
	if err := g.Finalize(); err == nil {
		t.Fatalf("expected error on duplicate finalize")
	}
}

func TestAddAfterFinalizeIsTopologyError(t *testing.T) {
	g := New()
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	in := NewEdge[int]()
	out := NewEdge[int]()
	op := newDoubleOperator(in, out, nil)
	if err := g.Add(op); err == nil {
		t.Fatalf("expected error adding operator after finalize")
	}
}

func TestOutputHandleProbeFrontier(t *testing.T) {
	handle := NewOutputHandle[int]()
	var seen []Message[int]
	handle.Output(func(m Message[int]) { seen = append(seen, m) })

	target := mustFrontier(3)
	if !handle.ProbeFrontierLessThan(target) {
		t.Fatalf("expected probe true before any frontier advance")
	}

	handle.Notify(FrontierAdvance[int](target))
	if len(seen) != 1 {
		t.Fatalf("callback not invoked on Notify")
	}
	if handle.ProbeFrontierLessThan(mustFrontier(1)) {
		t.Fatalf("expected probe false once output frontier passed target")
	}
}
