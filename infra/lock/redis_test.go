package lock

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/payadvance/internal/testutils"
	"github.com/amirasaad/payadvance/pkg/lock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisLocker(t *testing.T) {
	testutils.SkipWithoutDocker(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.2-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	defer func() { _ = client.Close() }()

	locker := NewRedisLocker(client, "test:", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	release, err := locker.Acquire(ctx, "employee:7")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(waitCtx, "employee:7")
	assert.ErrorIs(t, err, lock.ErrNotAcquired)

	other, err := locker.Acquire(ctx, "employee:8")
	require.NoError(t, err)
	other()

	release()
	exists, err := client.Exists(ctx, "test:lock:employee:7").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	again, err := locker.Acquire(ctx, "employee:7")
	require.NoError(t, err)
	again()
}
