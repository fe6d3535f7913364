package config

import (
	"fmt"

	"github.com/kbukum/difflow/operators"
)

// EngineConfig configures a difflow dataflow engine host. Projects embed
// it the way ServiceConfig documents embedding a base config:
//
//	type MyConfig struct {
//	    config.EngineConfig `yaml:",inline" mapstructure:",squash"`
//	    Pipelines []string   `yaml:"pipelines" mapstructure:"pipelines"`
//	}
type EngineConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// FeedbackEmptyRounds overrides the iterate feedback operator's
	// consecutive-silent-rounds threshold.
	FeedbackEmptyRounds int `yaml:"feedback_empty_rounds" mapstructure:"feedback_empty_rounds"`
	// DefaultEdgeBuffer reserves a future bound on how many undrained
	// messages an edge may queue. Edge is presently an unbounded
	// in-memory queue, so 0 (the default) means unbounded; a positive
	// value is accepted and carried but not yet enforced anywhere.
	DefaultEdgeBuffer int `yaml:"default_edge_buffer" mapstructure:"default_edge_buffer"`
	// MaxStepsPerRun bounds graph.Graph.RunBounded's step count as a
	// safety valve against a non-terminating iterate body. 0 means
	// unbounded (use graph.Graph.Run instead).
	MaxStepsPerRun int `yaml:"max_steps_per_run" mapstructure:"max_steps_per_run"`
}

// ApplyDefaults applies default values to the engine configuration.
func (c *EngineConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.FeedbackEmptyRounds <= 0 {
		c.FeedbackEmptyRounds = operators.DefaultFeedbackEmptyRounds
	}
}

// Validate validates the engine configuration fields.
func (c *EngineConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.FeedbackEmptyRounds < 1 {
		return fmt.Errorf("engine.feedback_empty_rounds must be >= 1")
	}
	if c.DefaultEdgeBuffer < 0 {
		return fmt.Errorf("engine.default_edge_buffer must be >= 0")
	}
	if c.MaxStepsPerRun < 0 {
		return fmt.Errorf("engine.max_steps_per_run must be >= 0")
	}
	return nil
}
