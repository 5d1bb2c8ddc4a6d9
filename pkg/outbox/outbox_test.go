package outbox_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	infra_eventbus "github.com/amirasaad/payadvance/infra/eventbus"
	"github.com/amirasaad/payadvance/internal/fixtures/fakes"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/outbox"
	"github.com/amirasaad/payadvance/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func record(t *testing.T, uow *fakes.UoW) {
	t.Helper()
	err := uow.Do(context.Background(), func(tx repository.UnitOfWork) error {
		_, err := outbox.Record(context.Background(), tx, events.EventTypeUserCreated, 1, events.UserPayload{ID: 1})
		return err
	})
	require.NoError(t, err)
}

func TestDispatchRetriesFailedHandler(t *testing.T) {
	ctx := context.Background()
	uow := fakes.NewUoW()
	bus := infra_eventbus.NewWithMemory(discard())
	calls := 0
	bus.Subscribe(events.TopicUserCreated, func(context.Context, events.Envelope) error {
		calls++
		if calls == 1 {
			return errors.New("connection reset")
		}
		return nil
	})
	d := outbox.NewDispatcher(uow, eventbus.NewPublisher(bus, time.Second, discard()), 10, 3, discard())
	record(t, uow)

	n, err := d.Dispatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, calls)

	msgs := uow.Outbox()
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].DispatchedAt)
	assert.Equal(t, 1, msgs[0].Attempts)
	assert.Contains(t, msgs[0].LastError, "connection reset")

	n, err = d.Dispatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, calls)

	msgs = uow.Outbox()
	assert.NotNil(t, msgs[0].DispatchedAt)
	assert.Equal(t, 2, msgs[0].Attempts)
	assert.Empty(t, msgs[0].LastError)
}

func TestDispatchStopsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	uow := fakes.NewUoW()
	bus := infra_eventbus.NewWithMemory(discard())
	calls := 0
	bus.Subscribe(events.TopicUserCreated, func(context.Context, events.Envelope) error {
		calls++
		return errors.New("connection reset")
	})
	d := outbox.NewDispatcher(uow, eventbus.NewPublisher(bus, time.Second, discard()), 10, 2, discard())
	record(t, uow)

	for range 4 {
		_, err := d.Dispatch(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	msgs := uow.Outbox()
	assert.Equal(t, 2, msgs[0].Attempts)
	assert.Nil(t, msgs[0].DispatchedAt)
}
