package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/payadvance/internal/testutils"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func sampleInfo() *user.SalaryInfo {
	return &user.SalaryInfo{
		EmployeeID:    7,
		MonthlySalary: decimal.RequireFromString("3000.00"),
		EarnedAmount:  decimal.RequireFromString("1500.00"),
		Currency:      "USD",
		AsOf:          time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	got, err := c.Get(ctx, "salary:7")
	require.NoError(t, err)
	assert.Nil(t, got, "empty cache is a miss")

	require.NoError(t, c.Set(ctx, "salary:7", sampleInfo(), time.Minute))
	got, err = c.Get(ctx, "salary:7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.EarnedAmount.Equal(decimal.RequireFromString("1500")))

	now = now.Add(2 * time.Minute)
	got, err = c.Get(ctx, "salary:7")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry is a miss")

	require.NoError(t, c.Set(ctx, "salary:7", sampleInfo(), time.Minute))
	require.NoError(t, c.Delete(ctx, "salary:7"))
	got, err = c.Get(ctx, "salary:7")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSalaryCache(t *testing.T) {
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

	c := NewRedisSalaryCache(client, "test:salary:", slog.New(slog.NewTextHandler(io.Discard, nil)))

	got, err := c.Get(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "7", sampleInfo(), time.Minute))
	got, err = c.Get(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(7), got.EmployeeID)
	assert.True(t, got.MonthlySalary.Equal(decimal.RequireFromString("3000")))

	ttl, err := client.TTL(ctx, "test:salary:7").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	require.NoError(t, c.Delete(ctx, "7"))
	got, err = c.Get(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, got)
}
