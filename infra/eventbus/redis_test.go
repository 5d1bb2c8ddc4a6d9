package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/payadvance/internal/testutils"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisBus starts a Redis container using testcontainers-go and returns a
// RedisEventBus, its client and a cleanup function.
func setupRedisBus(tb testing.TB) (*RedisEventBus, *redis.Client, func()) {
	tb.Helper()
	testutils.SkipWithoutDocker(tb)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.2-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		tb.Fatalf("failed to start container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		tb.Fatalf("failed to get endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	cfg := DefaultRedisEventBusConfig()
	cfg.Block = 200 * time.Millisecond
	bus, err := NewWithRedisClient(client, discardLogger(), cfg)
	if err != nil {
		tb.Fatalf("failed to create redis event bus: %v", err)
	}

	cleanup := func() {
		_ = bus.Close()
		_ = client.Close()
		_ = container.Terminate(ctx)
	}
	return bus, client, cleanup
}

func TestRedisBusHandlerReceivesEvent(t *testing.T) {
	bus, _, cleanup := setupRedisBus(t)
	defer cleanup()

	received := make(chan events.Envelope, 1)
	bus.Subscribe(events.TopicDisbursementCompleted, func(_ context.Context, env events.Envelope) error {
		received <- env
		return nil
	})

	sent, err := events.New(events.EventTypeDisbursementCompleted, 5, events.DisbursementPayload{ID: 5})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), events.TopicDisbursementCompleted, sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.EventID, got.EventID)
		assert.Equal(t, events.EventTypeDisbursementCompleted, got.EventType)
	case <-time.After(10 * time.Second):
		t.Fatal("handler did not receive event in time")
	}
}

func TestRedisBusFailedHandlerGoesToDLQ(t *testing.T) {
	bus, client, cleanup := setupRedisBus(t)
	defer cleanup()

	done := make(chan struct{}, 1)
	bus.Subscribe(events.TopicRepaymentFailed, func(context.Context, events.Envelope) error {
		done <- struct{}{}
		return errors.New("simulated failure")
	})

	sent, err := events.New(events.EventTypeRepaymentFailed, 8, events.RepaymentPayload{ID: 8})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), events.TopicRepaymentFailed, sent))

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("handler was not called")
	}

	dlq := bus.streamName(events.TopicRepaymentFailed) + ":dlq"
	require.Eventually(t, func() bool {
		n, err := client.XLen(context.Background(), dlq).Result()
		return err == nil && n == 1
	}, 5*time.Second, 100*time.Millisecond)
}
