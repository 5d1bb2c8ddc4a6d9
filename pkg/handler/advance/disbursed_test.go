package advance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type markerMock struct{ mock.Mock }

func (m *markerMock) MarkDisbursed(ctx context.Context, id uint) (*advance.AdvanceRequest, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*advance.AdvanceRequest)
	return a, args.Error(1)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func completedEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	env, err := events.New(events.EventTypeDisbursementCompleted, 4, events.DisbursementPayload{
		ID:                   4,
		AdvanceRequestID:     9,
		EmployeeID:           7,
		Status:               "COMPLETED",
		TransactionReference: "TXN-1",
	})
	require.NoError(t, err)
	return env
}

func TestHandleDisbursementCompleted(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "marks the advance", err: nil},
		{name: "unknown advance is dropped", err: domain.ErrNotFound},
		{name: "rejected advance is dropped", err: domain.ErrIllegalTransition},
		{name: "lost race is retried", err: domain.ErrConcurrentUpdate, wantErr: domain.ErrConcurrentUpdate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := &markerMock{}
			var ret *advance.AdvanceRequest
			if tt.err == nil {
				ret = &advance.AdvanceRequest{ID: 9, Status: advance.StatusDisbursed}
			}
			marker.On("MarkDisbursed", mock.Anything, uint(9)).Return(ret, tt.err).Once()

			err := HandleDisbursementCompleted(marker, discard())(context.Background(), completedEnvelope(t))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}
			marker.AssertExpectations(t)
		})
	}
}

func TestHandleDisbursementCompleted_IgnoresFailedDisbursements(t *testing.T) {
	marker := &markerMock{}
	env, err := events.New(events.EventTypeDisbursementFailed, 4, events.DisbursementPayload{ID: 4, AdvanceRequestID: 9})
	require.NoError(t, err)

	require.NoError(t, HandleDisbursementCompleted(marker, discard())(context.Background(), env))
	marker.AssertNotCalled(t, "MarkDisbursed", mock.Anything, mock.Anything)
}
