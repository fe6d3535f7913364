package builder

// GraphSpec is a declarative, YAML-defined dataflow graph: a named set of
// nodes wired by dependency and resolved against a Registry into a live
// graph.Graph. Unlike a batch DAG where a node runs once per execution,
// every GraphSpec node here is a long-lived operator that keeps processing
// deltas for the life of the graph.
type GraphSpec struct {
	// Name is the graph spec identifier.
	Name string `yaml:"name" validate:"required"`
	// Mode is the execution mode: "batch" or "streaming".
	Mode string `yaml:"mode" validate:"required,oneof=batch streaming"`
	// Includes lists sub-graph-spec names to compose (recursive).
	Includes []string `yaml:"includes,omitempty"`
	// Nodes defines the graph's node specifications.
	Nodes []NodeSpec `yaml:"nodes" validate:"required,dive"`
}

// NodeSpec defines a single node within a GraphSpec.
type NodeSpec struct {
	// Name is this node's identifier within the graph, distinct from its
	// Component — a GraphSpec may instantiate the same component more
	// than once with different params, so node identity can't be the
	// registry key itself.
	Name string `yaml:"name" validate:"required"`
	// Component is the registry lookup key for this node's factory.
	Component string `yaml:"component" validate:"required"`
	// DependsOn lists node names this node consumes as input, in order.
	DependsOn []string `yaml:"depends_on,omitempty"`
	// Params configures the component; each factory interprets its own
	// keys.
	Params map[string]any `yaml:"params,omitempty"`
}
