package disbursement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/payadvance/internal/fixtures/fakes"
	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/domain/disbursement"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	disbursementsvc "github.com/amirasaad/payadvance/pkg/service/disbursement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type creatorMock struct{ mock.Mock }

func (m *creatorMock) CreateForApprovedAdvance(ctx context.Context, approved events.AdvanceRequestPayload) (*disbursement.Disbursement, error) {
	args := m.Called(ctx, approved)
	d, _ := args.Get(0).(*disbursement.Disbursement)
	return d, args.Error(1)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func approvedEnvelope(t *testing.T, id uint) events.Envelope {
	t.Helper()
	approver := uint(3)
	env, err := events.New(events.EventTypeAdvanceRequestApproved, id, events.AdvanceRequestPayload{
		ID:         id,
		EmployeeID: 7,
		Amount:     decimal.RequireFromString("100.00"),
		Status:     string(advance.StatusApproved),
		ApprovedBy: &approver,
	})
	require.NoError(t, err)
	return env
}

func TestHandleAdvanceApproved_CreatesDisbursement(t *testing.T) {
	uow := fakes.NewUoW()
	svc := disbursementsvc.New(config.Deps{Uow: uow, Logger: discard()})
	handler := HandleAdvanceApproved(svc, discard())

	require.NoError(t, handler(context.Background(), approvedEnvelope(t, 1)))

	d, err := svc.GetByAdvanceRequest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(7), d.EmployeeID)
	assert.Equal(t, "2.00", d.FeeAmount.StringFixed(2))
	assert.Equal(t, "102.00", d.TotalRepaymentAmount.StringFixed(2))
	assert.Equal(t, []events.EventType{events.EventTypeDisbursementCreated}, uow.RecordedTypes())
}

func TestHandleAdvanceApproved_RedeliveryIsSkipped(t *testing.T) {
	uow := fakes.NewUoW()
	svc := disbursementsvc.New(config.Deps{Uow: uow, Logger: discard()})
	handler := HandleAdvanceApproved(svc, discard())
	env := approvedEnvelope(t, 1)

	require.NoError(t, handler(context.Background(), env))
	require.NoError(t, handler(context.Background(), env))

	assert.Len(t, uow.Outbox(), 1)
}

func TestHandleAdvanceApproved_IgnoresOtherTypes(t *testing.T) {
	creator := &creatorMock{}
	handler := HandleAdvanceApproved(creator, discard())
	env, err := events.New(events.EventTypeAdvanceRequestRejected, 1, events.AdvanceRequestPayload{ID: 1})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), env))
	creator.AssertNotCalled(t, "CreateForApprovedAdvance", mock.Anything, mock.Anything)
}

func TestHandleAdvanceApproved_UndecodablePayloadIsDropped(t *testing.T) {
	creator := &creatorMock{}
	handler := HandleAdvanceApproved(creator, discard())
	env := approvedEnvelope(t, 1)
	env.Payload = []byte(`{"amount":`)

	require.NoError(t, handler(context.Background(), env))
	creator.AssertNotCalled(t, "CreateForApprovedAdvance", mock.Anything, mock.Anything)
}

func TestHandleAdvanceApproved_TransientErrorIsReturned(t *testing.T) {
	creator := &creatorMock{}
	creator.On("CreateForApprovedAdvance", mock.Anything, mock.AnythingOfType("events.AdvanceRequestPayload")).
		Return(nil, domain.ErrDependencyUnavailable).Once()
	handler := HandleAdvanceApproved(creator, discard())

	err := handler(context.Background(), approvedEnvelope(t, 1))
	assert.True(t, errors.Is(err, domain.ErrDependencyUnavailable))
	creator.AssertExpectations(t)
}
