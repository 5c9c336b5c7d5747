// Package consumer reads notification events from the Redis Streams event log
// through a consumer group and routes each entry to the handler registered
// for its topic. Routing is static: the topic set is fixed at construction
// and entries on unknown topics are acknowledged and dropped.
package consumer

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/common/metrics"
	"legalease-notifications/internal/common/observability"
	"legalease-notifications/internal/models"
)

// Handler processes events for exactly one topic.
type Handler interface {
	Topic() string
	Handle(ctx context.Context, event models.Event, payload map[string]interface{}) error
}

// Status is the operator view of the consumer loop.
type Status struct {
	Running       bool     `json:"running"`
	ConsumerGroup string   `json:"consumerGroup"`
	ConsumerName  string   `json:"consumerName"`
	Topics        []string `json:"topics"`
	CommitMode    string   `json:"commitMode"`
}

// Consumer is the event loop. One handler failure never stops the loop or
// affects neighboring events.
type Consumer struct {
	client   *redis.Client
	cfg      config.EventLogConfig
	handlers map[string]Handler
	logger   logger.Logger
	obs      *observability.Observability

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func New(client *redis.Client, cfg config.EventLogConfig, log logger.Logger, obs *observability.Observability, handlers ...Handler) (*Consumer, error) {
	registry := make(map[string]Handler, len(handlers))
	for _, h := range handlers {
		if _, dup := registry[h.Topic()]; dup {
			return nil, fmt.Errorf("duplicate handler for topic %s", h.Topic())
		}
		registry[h.Topic()] = h
	}
	return &Consumer{
		client:   client,
		cfg:      cfg,
		handlers: registry,
		logger:   log.WithFields(map[string]interface{}{"component": "consumer", "group": cfg.ConsumerGroup}),
		obs:      obs,
	}, nil
}

// Start creates the consumer groups and launches the poll loop. It returns an
// error if the loop is already running or the event log is unreachable.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("consumer already running")
	}

	if err := c.ensureGroups(ctx); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	go c.run(loopCtx)

	c.logger.Info("consumer started", map[string]interface{}{
		"topics":     c.cfg.Topics,
		"commitMode": c.cfg.CommitMode,
	})
	return nil
}

// Stop cancels the poll loop and waits for it to drain.
func (c *Consumer) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()
	<-done

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
	c.logger.Info("consumer stopped", nil)
}

func (c *Consumer) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Running:       c.running,
		ConsumerGroup: c.cfg.ConsumerGroup,
		ConsumerName:  c.cfg.ConsumerName,
		Topics:        append([]string(nil), c.cfg.Topics...),
		CommitMode:    c.cfg.CommitMode,
	}
}

func (c *Consumer) ensureGroups(ctx context.Context) error {
	for _, topic := range c.cfg.Topics {
		err := c.client.XGroupCreateMkStream(ctx, topic, c.cfg.ConsumerGroup, "$").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("create consumer group for %s: %w", topic, err)
		}
	}
	return nil
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)

	streams := make([]string, 0, len(c.cfg.Topics)*2)
	streams = append(streams, c.cfg.Topics...)
	for range c.cfg.Topics {
		streams = append(streams, ">")
	}

	block := time.Duration(c.cfg.PollTimeout) * time.Millisecond

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.ConsumerGroup,
			Consumer: c.cfg.ConsumerName,
			Streams:  streams,
			Count:    10,
			Block:    block,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("event log read failed", map[string]interface{}{"error": err})
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				c.process(ctx, stream.Stream, msg)
			}
		}
	}
}

func (c *Consumer) process(ctx context.Context, topic string, msg redis.XMessage) {
	metrics.EventsConsumed.WithLabelValues(topic).Inc()

	handler, ok := c.handlers[topic]
	if !ok {
		metrics.EventsDiscarded.WithLabelValues(topic, "unknown_topic").Inc()
		c.ack(ctx, topic, msg.ID)
		return
	}

	payload := extractPayload(msg)
	event := models.Event{Topic: topic, Payload: payload, ID: msg.ID}

	// at_most_once commits before the handler runs, so a crash mid-handle
	// drops the event. at_least_once commits only after success, so a crash
	// leaves it pending for redelivery.
	if c.cfg.CommitMode == config.CommitAtMostOnce {
		c.ack(ctx, topic, msg.ID)
	}

	err := c.handle(ctx, handler, event)
	if err != nil {
		metrics.HandlerFailures.WithLabelValues(topic).Inc()
		if c.obs != nil {
			c.obs.RecordEventProcessed(ctx, topic, "failed")
		}
		c.logger.Error("handler failed", map[string]interface{}{
			"error":   err,
			"topic":   topic,
			"eventId": msg.ID,
		})
		return
	}

	if c.cfg.CommitMode == config.CommitAtLeastOnce {
		c.ack(ctx, topic, msg.ID)
	}
	if c.obs != nil {
		c.obs.RecordEventProcessed(ctx, topic, "processed")
	}
}

// handle isolates a single event: a panic inside one handler is converted to
// an error and never takes down the loop.
func (c *Consumer) handle(ctx context.Context, handler Handler, event models.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			c.logger.Error("handler panicked", map[string]interface{}{
				"topic": event.Topic,
				"panic": fmt.Sprintf("%v", r),
				"stack": string(debug.Stack()),
			})
		}
	}()
	return handler.Handle(ctx, event, NormalizePayload(event.Payload))
}

func (c *Consumer) ack(ctx context.Context, topic, id string) {
	if err := c.client.XAck(ctx, topic, c.cfg.ConsumerGroup, id).Err(); err != nil {
		c.logger.Error("event commit failed", map[string]interface{}{
			"error":   err,
			"topic":   topic,
			"eventId": id,
		})
	}
}

func extractPayload(msg redis.XMessage) []byte {
	if raw, ok := msg.Values["payload"]; ok {
		if s, ok := raw.(string); ok {
			return []byte(s)
		}
	}
	// Fall back to the lexicographically first string field so hand-published
	// entries still route, and redeliveries pick the same field every time.
	keys := make([]string, 0, len(msg.Values))
	for k := range msg.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := msg.Values[k].(string); ok {
			return []byte(s)
		}
	}
	return nil
}
