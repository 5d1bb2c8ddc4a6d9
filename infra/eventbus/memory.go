package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
)

// Published is one envelope seen by the memory bus.
type Published struct {
	Topic    events.Topic
	Envelope events.Envelope
}

// MemoryEventBus delivers envelopes synchronously to in-process handlers.
// Used for local runs and tests.
type MemoryEventBus struct {
	handlers  map[events.Topic][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []Published
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryEventBus{
		handlers: make(map[events.Topic][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Subscribe registers a handler for a topic.
func (b *MemoryEventBus) Subscribe(topic events.Topic, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish records the envelope and runs every handler of the topic in order.
// A failing or panicking handler does not stop the others; their errors are
// joined and returned so the caller can retry the envelope.
func (b *MemoryEventBus) Publish(ctx context.Context, topic events.Topic, env events.Envelope) error {
	b.mu.Lock()
	b.published = append(b.published, Published{Topic: topic, Envelope: env})
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[topic]...)
	b.mu.Unlock()

	var errs []error
	for _, handler := range handlers {
		if err := b.run(ctx, handler, topic, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *MemoryEventBus) run(ctx context.Context, handler eventbus.HandlerFunc, topic events.Topic, env events.Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic recovered in event handler", "topic", topic, "event_type", env.EventType, "panic", r)
			err = fmt.Errorf("event handler panicked: %v", r)
		}
	}()
	if err = handler(ctx, env); err != nil {
		b.logger.Error("failed to process event", "topic", topic, "event_type", env.EventType, "event_id", env.EventID, "error", err)
	}
	return err
}

// Published returns a copy of every envelope published so far.
func (b *MemoryEventBus) Published() []Published {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Published(nil), b.published...)
}

// ClearPublished forgets recorded envelopes.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

// Close is a no-op.
func (b *MemoryEventBus) Close() error { return nil }

var _ eventbus.Bus = (*MemoryEventBus)(nil)
