// Package cdc adapts an external change-data-capture stream into a
// graph.ProducerHandle: it decodes insert/update/delete events off a Kafka
// topic into (value, multiplicity) deltas and advances the handle's
// frontier from the consumer's own offset, so a dataflow graph can treat a
// live change feed the same way it treats any other versioned input. It is
// a standalone adapter, not part of the core engine — a host wires a
// Consumer to a graph's producer handle itself.
package cdc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/logger"
	"github.com/kbukum/difflow/version"
)

// Consumer reads change events for a single topic and decodes them into T.
type Consumer[T any] struct {
	reader   *kafkago.Reader
	topic    string
	groupID  string
	log      *logger.Logger
	failures int
}

// NewConsumer creates a CDC consumer bound to cfg.Topic under cfg.GroupID.
func NewConsumer[T any](cfg Config, log *logger.Logger) (*Consumer[T], error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cdc consumer config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("cdc: consumer is disabled")
	}

	dialer, err := CreateDialer(&cfg)
	if err != nil {
		return nil, fmt.Errorf("cdc consumer dialer: %w", err)
	}

	clog := log.WithComponent("cdc.consumer")

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             cfg.Topic,
		GroupID:           cfg.GroupID,
		Dialer:            dialer,
		StartOffset:       kafkago.FirstOffset,
		MinBytes:          1,
		MaxBytes:          10e6,
		SessionTimeout:    ParseDuration(cfg.SessionTimeout),
		HeartbeatInterval: ParseDuration(cfg.HeartbeatInterval),
		RebalanceTimeout:  ParseDuration(cfg.RebalanceTimeout),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			clog.Error("reader: "+msg, map[string]interface{}{
				"args":    fmt.Sprintf("%v", args),
				"topic":   cfg.Topic,
				"groupID": cfg.GroupID,
			})
		}),
	})

	clog.Info("CDC consumer initialized", map[string]interface{}{
		"topic":   cfg.Topic,
		"groupID": cfg.GroupID,
		"brokers": cfg.Brokers,
	})

	return &Consumer[T]{
		reader:  reader,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		log:     clog,
	}, nil
}

// Run reads change events in a loop, feeding each one's decoded delta into
// handle at a version built from the message's own partition/offset, and
// advancing handle's frontier past every offset it has delivered. It
// blocks until ctx is cancelled or an unrecoverable error occurs; a
// malformed message is logged and skipped rather than treated as fatal.
func (c *Consumer[T]) Run(ctx context.Context, handle *graph.ProducerHandle[T]) error {
	c.log.Info("Starting CDC consume loop", map[string]interface{}{
		"topic":   c.topic,
		"groupID": c.groupID,
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if retryErr := c.handleFailure(ctx, err); retryErr != nil {
				return retryErr
			}
			continue
		}
		c.failures = 0

		var evt ChangeEvent[T]
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			c.log.Error("CDC event decode failed", map[string]interface{}{
				"error":  err.Error(),
				"topic":  msg.Topic,
				"offset": msg.Offset,
			})
			continue
		}
		value, err := evt.decode()
		if err != nil {
			c.log.Error("CDC event value decode failed", map[string]interface{}{
				"error":  err.Error(),
				"topic":  msg.Topic,
				"offset": msg.Offset,
			})
			continue
		}

		v := version.New(int(msg.Partition), int(msg.Offset))
		handle.SendDataAt(v, collection.Single(value, evt.multiplicity()))

		next := version.New(int(msg.Partition), int(msg.Offset)+1)
		if err := handle.SendFrontier(version.NewFrontier(next)); err != nil {
			return fmt.Errorf("cdc: frontier advance: %w", err)
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer[T]) Close() error { return c.reader.Close() }

// Topic returns the consumer's topic.
func (c *Consumer[T]) Topic() string { return c.topic }

// GroupID returns the consumer's group ID.
func (c *Consumer[T]) GroupID() string { return c.groupID }

func (c *Consumer[T]) handleFailure(ctx context.Context, err error) error {
	c.failures++
	if c.failures <= 3 {
		c.log.Error("CDC read error", map[string]interface{}{
			"error":    err.Error(),
			"failures": c.failures,
			"topic":    c.topic,
			"groupID":  c.groupID,
		})
	}

	backoff := time.Duration(c.failures) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}
