// Package persist provides a Redis-backed demonstration adapter for a
// single key: Lookup, Append, and Compact (counterparts of index.Index's
// Get, Append and Compact) over a durably stored bag of entries. It is a shape, not the full persistent
// join/compaction engine a production index would need — every operator's
// live Index still lives in memory for the life of a run.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/difflow/logger"
	"github.com/kbukum/difflow/resilience"
)

// Client wraps a go-redis client with difflow logging. Every Get, Set and
// Del call is guarded by a bulkhead (caps concurrent Redis round-trips), a
// circuit breaker (fails fast once Redis looks unhealthy), and a bounded
// retry; Ping is not guarded.
type Client struct {
	rdb      *goredis.Client
	log      *logger.Logger
	cfg      Config
	closed   bool
	mu       sync.Mutex
	cb       *resilience.CircuitBreaker
	bulkhead *resilience.Bulkhead
	retry    resilience.RetryConfig
}

// NewClient creates a new Redis client with the given configuration and
// logger.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("persist client config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("persist: client is disabled")
	}

	dialTimeout, _ := time.ParseDuration(cfg.DialTimeout)
	readTimeout, _ := time.ParseDuration(cfg.ReadTimeout)
	writeTimeout, _ := time.ParseDuration(cfg.WriteTimeout)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	clog := log.WithComponent("persist")
	clog.Info("Redis client created", map[string]interface{}{
		"addr":      cfg.Addr,
		"db":        cfg.DB,
		"pool_size": cfg.PoolSize,
	})

	cbCfg := resilience.DefaultCircuitBreakerConfig("persist.redis")
	cbCfg.OnStateChange = func(name string, from, to resilience.State) {
		clog.Warn("circuit breaker state change", map[string]interface{}{
			"breaker": name, "from": from.String(), "to": to.String(),
		})
	}
	bhCfg := resilience.DefaultBulkheadConfig("persist.redis")
	bhCfg.MaxConcurrent = cfg.PoolSize

	retry := resilience.DefaultRetryConfig()
	retry.RetryIf = func(err error) bool {
		return resilience.DefaultRetryIf(err) && !errors.Is(err, goredis.Nil)
	}

	return &Client{
		rdb:      rdb,
		log:      clog,
		cfg:      cfg,
		cb:       resilience.NewCircuitBreaker(cbCfg),
		bulkhead: resilience.NewBulkhead(bhCfg),
		retry:    retry,
	}, nil
}

// guarded runs fn behind the client's bulkhead, circuit breaker, and retry
// — in that order, so a caller blocked waiting for a bulkhead slot never
// also racks up retry attempts against an already-open circuit.
func (c *Client) guarded(ctx context.Context, fn func() error) error {
	return c.bulkhead.Execute(ctx, func() error {
		return c.cb.Execute(func() error {
			return resilience.RetryFunc(ctx, c.retry, fn)
		})
	})
}

// BreakerState reports the Redis circuit breaker's current state, for
// health checks and tests.
func (c *Client) BreakerState() resilience.State {
	return c.cb.State()
}

// Ping verifies the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	pong, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("persist: ping failed: %w", err)
	}
	if pong != "PONG" {
		return fmt.Errorf("persist: unexpected ping response: %s", pong)
	}
	return nil
}

// Get retrieves a value by key. A missing key surfaces as goredis.Nil,
// same as the unwrapped client, and is never retried or counted against
// the circuit breaker since it's Redis correctly answering "not there",
// not a sign of an unhealthy server.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	var val string
	var missing bool
	err := c.guarded(ctx, func() error {
		v, err := c.rdb.Get(ctx, key).Result()
		if errors.Is(err, goredis.Nil) {
			missing = true
			return nil
		}
		if err != nil {
			return err
		}
		val = v
		return nil
	})
	if err != nil {
		return "", err
	}
	if missing {
		return "", goredis.Nil
	}
	return val, nil
}

// Set stores a value with a key and expiration. A zero expiration means no
// expiry.
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.guarded(ctx, func() error {
		return c.rdb.Set(ctx, key, value, expiration).Err()
	})
}

// Del deletes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.guarded(ctx, func() error {
		return c.rdb.Del(ctx, keys...).Err()
	})
}

// Close closes the Redis connection. Safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.log.Info("Closing Redis connection")
	c.closed = true
	return c.rdb.Close()
}

// Unwrap returns the underlying go-redis client for advanced operations.
func (c *Client) Unwrap() *goredis.Client {
	return c.rdb
}
