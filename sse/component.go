package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/difflow/observability"
)

// Component wraps a Hub as a start/stop lifecycle unit, so a host can run
// its event loop alongside the dataflow graph without hand-managing the
// goroutine itself.
type Component struct {
	hub  *Hub
	wg   sync.WaitGroup
	mu   sync.Mutex
	path string
}

var _ observability.HealthChecker = (*Component)(nil)

// NewComponent creates a new SSE component with a fresh Hub serving the
// given mount path (used only for Describe's details, not routing).
func NewComponent(path string) *Component {
	return &Component{
		hub:  NewHub(),
		path: path,
	}
}

// Hub returns the underlying Hub for event broadcasting and client management.
func (c *Component) Hub() *Hub { return c.hub }

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start launches the Hub's event loop in a background goroutine.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.hub.Run()
	}()

	return nil
}

// Stop signals the Hub to shut down and waits for Run to return.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hub.Stop()
	c.wg.Wait()
	return nil
}

// CheckHealth reports the SSE hub's health, keyed by connected client
// count, satisfying observability.HealthChecker.
func (c *Component) CheckHealth(_ context.Context) observability.Health {
	return observability.Health{
		Name:    c.Name(),
		Status:  observability.HealthStatusUp,
		Message: fmt.Sprintf("%d clients connected", c.hub.GetClientCount()),
	}
}

// Description summarizes an infrastructure component for a bootstrap
// display or admin topology listing.
type Description struct {
	Name    string
	Type    string
	Details string
}

// Describe returns infrastructure summary info for the bootstrap display.
func (c *Component) Describe() Description {
	return Description{
		Name:    "SSE Hub",
		Type:    "sse",
		Details: fmt.Sprintf("Path: %s", c.path),
	}
}
