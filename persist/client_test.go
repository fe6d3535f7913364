package persist

import (
	"context"
	"testing"

	"github.com/kbukum/difflow/logger"
	"github.com/kbukum/difflow/resilience"
)

// TestClientGetUnreachableRetriesAndTripsBreaker drives real Get calls
// against a port nothing listens on, proving the resilience wiring (retry,
// circuit breaker) is actually on the call path rather than just present
// in resilience/ with no caller. No live Redis is needed: a refused TCP
// connection is itself the failure being retried against.
func TestClientGetUnreachableRetriesAndTripsBreaker(t *testing.T) {
	log := logger.NewDefault("persist-test")
	cfg := Config{Enabled: true, Addr: "127.0.0.1:1"}
	cfg.ApplyDefaults()

	client, err := NewClient(cfg, log)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := client.Get(ctx, "k"); err == nil {
			t.Fatalf("expected an error against an unreachable Redis, got nil on attempt %d", i)
		}
	}
	if state := client.BreakerState(); state != resilience.StateOpen {
		t.Fatalf("expected the circuit breaker to be open after repeated failures, got %v", state)
	}
}
