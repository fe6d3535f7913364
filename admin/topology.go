package admin

import "github.com/kbukum/difflow/graph"

// TopologySnapshot is the JSON shape returned by GET /graph.
type TopologySnapshot struct {
	Operators []OperatorSnapshot `json:"operators"`
}

// OperatorSnapshot describes a single operator's identity and input
// queue depths at the moment the snapshot was taken.
type OperatorSnapshot struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Inputs []QueueSnapshot `json:"inputs"`
}

// QueueSnapshot describes one input edge of an operator.
type QueueSnapshot struct {
	ID      string `json:"id"`
	Pending int    `json:"pending"`
}

func snapshotTopology(g *graph.Graph) TopologySnapshot {
	ops := g.Operators()
	snap := TopologySnapshot{Operators: make([]OperatorSnapshot, 0, len(ops))}
	for _, op := range ops {
		inputs := op.Inputs()
		qs := make([]QueueSnapshot, 0, len(inputs))
		for _, in := range inputs {
			qs = append(qs, QueueSnapshot{ID: in.ID().String(), Pending: in.Pending()})
		}
		snap.Operators = append(snap.Operators, OperatorSnapshot{
			ID:     op.ID().String(),
			Name:   op.Name(),
			Inputs: qs,
		})
	}
	return snap
}
