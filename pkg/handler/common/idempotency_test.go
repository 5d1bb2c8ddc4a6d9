package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	env, err := events.New(events.EventTypeAdvanceRequestApproved, 1, events.AdvanceRequestPayload{ID: 1})
	require.NoError(t, err)
	return env
}

func TestIdempotencyTracker(t *testing.T) {
	t.Parallel()
	tracker := NewIdempotencyTracker(0)
	assert.False(t, tracker.Seen("k"))
	tracker.Store("k")
	assert.True(t, tracker.Seen("k"))
	tracker.Delete("k")
	assert.False(t, tracker.Seen("k"))
}

func TestIdempotencyTrackerForgetsOldestKeys(t *testing.T) {
	t.Parallel()
	tracker := NewIdempotencyTracker(2)
	tracker.Store("a")
	tracker.Store("b")
	tracker.Store("b")
	assert.Equal(t, 2, tracker.Len())

	tracker.Store("c")
	assert.False(t, tracker.Seen("a"))
	assert.True(t, tracker.Seen("b"))
	assert.True(t, tracker.Seen("c"))

	tracker.Store("d")
	assert.False(t, tracker.Seen("b"))
	assert.True(t, tracker.Seen("d"))
	assert.Equal(t, 2, tracker.Len())
}

func TestIdempotencyTrackerDefaultCapacity(t *testing.T) {
	t.Parallel()
	tracker := NewIdempotencyTracker(0)
	for i := range DefaultIdempotencyCapacity + 5 {
		tracker.Store(fmt.Sprintf("k%d", i))
	}
	assert.Equal(t, DefaultIdempotencyCapacity, tracker.Len())
	assert.False(t, tracker.Seen("k0"))
	assert.True(t, tracker.Seen(fmt.Sprintf("k%d", DefaultIdempotencyCapacity+4)))
}

func TestWithIdempotency(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()

	t.Run("executes handler when key is empty", func(t *testing.T) {
		t.Parallel()
		calls := 0
		handler := func(context.Context, events.Envelope) error {
			calls++
			return nil
		}
		wrapped := WithIdempotency(handler, NewIdempotencyTracker(0), func(events.Envelope) string { return "" }, "test-handler", logger)
		env := testEnvelope(t)

		require.NoError(t, wrapped(ctx, env))
		require.NoError(t, wrapped(ctx, env))
		assert.Equal(t, 2, calls)
	})

	t.Run("skips redelivered envelope", func(t *testing.T) {
		t.Parallel()
		calls := 0
		handler := func(context.Context, events.Envelope) error {
			calls++
			return nil
		}
		wrapped := WithIdempotency(handler, NewIdempotencyTracker(0), ByEventID, "test-handler", logger)
		env := testEnvelope(t)

		require.NoError(t, wrapped(ctx, env))
		require.NoError(t, wrapped(ctx, env))
		assert.Equal(t, 1, calls)

		require.NoError(t, wrapped(ctx, testEnvelope(t)))
		assert.Equal(t, 2, calls)
	})

	t.Run("handlers sharing a tracker each run once", func(t *testing.T) {
		t.Parallel()
		tracker := NewIdempotencyTracker(0)
		var first, second int
		a := WithIdempotency(func(context.Context, events.Envelope) error {
			first++
			return nil
		}, tracker, ByEventID, "advance.HandleDisbursementCompleted", logger)
		b := WithIdempotency(func(context.Context, events.Envelope) error {
			second++
			return nil
		}, tracker, ByEventID, "audit.HandleDisbursementCompleted", logger)
		env := testEnvelope(t)

		require.NoError(t, a(ctx, env))
		require.NoError(t, b(ctx, env))
		require.NoError(t, a(ctx, env))
		require.NoError(t, b(ctx, env))
		assert.Equal(t, 1, first)
		assert.Equal(t, 1, second)
	})

	t.Run("failed handler can be retried", func(t *testing.T) {
		t.Parallel()
		tracker := NewIdempotencyTracker(0)
		handlerErr := errors.New("handler error")
		fail := true
		handler := func(context.Context, events.Envelope) error {
			if fail {
				return handlerErr
			}
			return nil
		}
		wrapped := WithIdempotency(handler, tracker, ByEventID, "test-handler", logger)
		env := testEnvelope(t)

		err := wrapped(ctx, env)
		assert.Equal(t, handlerErr, err)
		assert.False(t, tracker.Seen("test-handler:"+env.EventID.String()))

		fail = false
		require.NoError(t, wrapped(ctx, env))
		assert.True(t, tracker.Seen("test-handler:"+env.EventID.String()))
	})

	t.Run("concurrent deliveries run the handler once", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		release := make(chan struct{})
		handler := func(context.Context, events.Envelope) error {
			calls.Add(1)
			<-release
			return nil
		}
		wrapped := WithIdempotency(handler, NewIdempotencyTracker(0), ByEventID, "test-handler", nil)
		env := testEnvelope(t)

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, wrapped(ctx, env))
			}()
		}
		close(release)
		wg.Wait()
		assert.Equal(t, int32(1), calls.Load())

		require.NoError(t, wrapped(ctx, env))
		assert.Equal(t, int32(1), calls.Load())
	})
}
