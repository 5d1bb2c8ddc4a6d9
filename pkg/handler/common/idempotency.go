package common

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"golang.org/x/sync/singleflight"
)

// KeyExtractor extracts an idempotency key from an envelope
type KeyExtractor func(events.Envelope) string

// ByEventID keys deliveries by envelope id, so broker redeliveries are skipped.
func ByEventID(env events.Envelope) string {
	return env.EventID.String()
}

// DefaultIdempotencyCapacity is the number of keys a tracker remembers when
// no capacity is given.
const DefaultIdempotencyCapacity = 10000

// IdempotencyTracker remembers processed keys. Once capacity keys are held
// the oldest one is forgotten first.
type IdempotencyTracker struct {
	mu        sync.Mutex
	processed map[string]struct{}
	order     []string
	next      int
	inflight  singleflight.Group
}

// NewIdempotencyTracker creates a tracker holding up to capacity keys.
// A capacity below one means DefaultIdempotencyCapacity.
func NewIdempotencyTracker(capacity int) *IdempotencyTracker {
	if capacity < 1 {
		capacity = DefaultIdempotencyCapacity
	}
	return &IdempotencyTracker{
		processed: make(map[string]struct{}, capacity),
		order:     make([]string, 0, capacity),
	}
}

// Store marks a key as processed
func (t *IdempotencyTracker) Store(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.processed[key]; ok {
		return
	}
	if len(t.order) < cap(t.order) {
		t.order = append(t.order, key)
	} else {
		delete(t.processed, t.order[t.next])
		t.order[t.next] = key
		t.next = (t.next + 1) % len(t.order)
	}
	t.processed[key] = struct{}{}
}

// Delete removes a key from the tracker
func (t *IdempotencyTracker) Delete(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.processed, key)
}

// Seen reports whether key was processed successfully.
func (t *IdempotencyTracker) Seen(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.processed[key]
	return ok
}

// Len returns the number of keys held.
func (t *IdempotencyTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.processed)
}

// WithIdempotency wraps a handler so each key is handled at most once per
// process and handler name. Handlers sharing a tracker keep separate keys.
// Concurrent deliveries of one key share a single handler call.
// A failed call leaves the key unmarked so the next delivery retries it.
func WithIdempotency(
	handler eventbus.HandlerFunc,
	tracker *IdempotencyTracker,
	keyExtractor KeyExtractor,
	handlerName string,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, env events.Envelope) error {
		key := keyExtractor(env)
		if key == "" {
			return handler(ctx, env)
		}
		key = handlerName + ":" + key

		log := logger.With(
			"handler", handlerName,
			"event_type", env.EventType,
			"idempotency_key", key,
		)

		if tracker.Seen(key) {
			log.Info("🔁 [SKIP] Event already processed")
			return nil
		}

		_, err, _ := tracker.inflight.Do(key, func() (any, error) {
			if tracker.Seen(key) {
				return nil, nil
			}
			if err := handler(ctx, env); err != nil {
				return nil, err
			}
			tracker.Store(key)
			return nil, nil
		})
		return err
	}
}
