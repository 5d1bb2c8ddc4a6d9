package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type delivererMock struct{ mock.Mock }

func (m *delivererMock) DeliverNotification(ctx context.Context, notice events.NotificationPayload) error {
	return m.Called(ctx, notice).Error(0)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestHandleRequested(t *testing.T) {
	notice := events.NotificationPayload{
		RecipientID:   7,
		Channel:       "EMAIL",
		Subject:       "Your salary advance was approved",
		SourceEventID: uuid.New(),
	}
	env, err := events.New(events.EventTypeNotificationRequested, 7, notice)
	require.NoError(t, err)

	t.Run("delivers", func(t *testing.T) {
		d := &delivererMock{}
		d.On("DeliverNotification", mock.Anything, notice).Return(nil).Once()
		assert.NoError(t, HandleRequested(d, discard())(context.Background(), env))
		d.AssertExpectations(t)
	})

	t.Run("returns transient failures", func(t *testing.T) {
		d := &delivererMock{}
		boom := errors.New("smtp down")
		d.On("DeliverNotification", mock.Anything, notice).Return(boom).Once()
		assert.ErrorIs(t, HandleRequested(d, discard())(context.Background(), env), boom)
	})

	t.Run("ignores delivered events", func(t *testing.T) {
		d := &delivererMock{}
		delivered, err := events.New(events.EventTypeNotificationDelivered, 7, notice)
		require.NoError(t, err)
		assert.NoError(t, HandleRequested(d, discard())(context.Background(), delivered))
		d.AssertNotCalled(t, "DeliverNotification", mock.Anything, mock.Anything)
	})
}
