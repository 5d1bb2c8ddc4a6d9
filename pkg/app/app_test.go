package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	infra_eventbus "github.com/amirasaad/payadvance/infra/eventbus"
	infra_provider "github.com/amirasaad/payadvance/infra/provider"
	"github.com/amirasaad/payadvance/internal/fixtures/fakes"
	"github.com/amirasaad/payadvance/internal/fixtures/mocks"
	"github.com/amirasaad/payadvance/pkg/app"
	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	advancesvc "github.com/amirasaad/payadvance/pkg/service/advance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type FlowTestSuite struct {
	suite.Suite
	app     *app.App
	uow     *fakes.UoW
	bus     *infra_eventbus.MemoryEventBus
	gateway *infra_provider.MockPaymentGateway
	salary  *mocks.SalaryProvider
}

func (s *FlowTestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.uow = fakes.NewUoW()
	s.bus = infra_eventbus.NewWithMemory(logger)
	s.gateway = infra_provider.NewMockPaymentGateway()
	s.salary = mocks.NewSalaryProvider(s.T())
	s.app = app.New(config.Deps{
		Uow:            s.uow,
		EventBus:       s.bus,
		SalaryProvider: s.salary,
		PaymentGateway: s.gateway,
		Logger:         logger,
	}, &config.App{Services: "user,advance,disbursement,repayment"})
}

func (s *FlowTestSuite) earns(employeeID uint, amount string) {
	s.salary.On("GetSalaryInfo", mock.Anything, employeeID).
		Return(&user.SalaryInfo{EmployeeID: employeeID, EarnedAmount: decimal.RequireFromString(amount)}, nil)
}

func (s *FlowTestSuite) publishedTypes() []events.EventType {
	var out []events.EventType
	for _, p := range s.bus.Published() {
		out = append(out, p.Envelope.EventType)
	}
	return out
}

func (s *FlowTestSuite) TestAdvanceToDisbursedFlow() {
	ctx := context.Background()
	s.earns(7, "1000.00")

	created, err := s.app.AdvanceService.Submit(ctx, advancesvc.SubmitRequest{
		EmployeeID: 7,
		Amount:     decimal.RequireFromString("100.00"),
		Reason:     "rent",
	})
	s.Require().NoError(err)
	s.Equal(advance.StatusPending, created.Status)

	approverID := uint(3)
	approved, err := s.app.AdvanceService.UpdateStatus(ctx, created.ID, advance.StatusChange{
		Status:     advance.StatusApproved,
		ApprovedBy: &approverID,
	})
	s.Require().NoError(err)
	s.Equal(advance.StatusApproved, approved.Status)
	s.NotNil(approved.ApprovalDate)

	s.app.DispatchOutbox(ctx)

	d, err := s.app.DisbursementService.GetByAdvanceRequest(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(uint(7), d.EmployeeID)
	s.Equal("100.00", d.Amount.StringFixed(2))
	s.Equal("2.00", d.FeeAmount.StringFixed(2))
	s.Equal("102.00", d.TotalRepaymentAmount.StringFixed(2))
	s.Equal(payment.StatusPending, d.Status)

	processed, err := s.app.DisbursementService.Process(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(payment.StatusCompleted, processed.Status)
	s.Contains(processed.TransactionReference, "TXN-")

	s.app.DispatchOutbox(ctx)

	final, err := s.app.AdvanceService.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(advance.StatusDisbursed, final.Status)

	s.Equal([]events.EventType{
		events.EventTypeAdvanceRequestCreated,
		events.EventTypeAdvanceRequestApproved,
		events.EventTypeNotificationRequested,
		events.EventTypeDisbursementCreated,
		events.EventTypeDisbursementCompleted,
		events.EventTypeAdvanceRequestUpdated,
	}, s.publishedTypes())
}

func (s *FlowTestSuite) TestFailedPayoutRejectsAdvance() {
	ctx := context.Background()
	s.earns(7, "1000.00")

	created, err := s.app.AdvanceService.Submit(ctx, advancesvc.SubmitRequest{
		EmployeeID: 7,
		Amount:     decimal.RequireFromString("100.00"),
		Reason:     "rent",
	})
	s.Require().NoError(err)
	approverID := uint(3)
	_, err = s.app.AdvanceService.UpdateStatus(ctx, created.ID, advance.StatusChange{
		Status: advance.StatusApproved, ApprovedBy: &approverID,
	})
	s.Require().NoError(err)
	s.app.DispatchOutbox(ctx)

	d, err := s.app.DisbursementService.GetByAdvanceRequest(ctx, created.ID)
	s.Require().NoError(err)
	s.gateway.FailFor(d.ID)

	processed, err := s.app.DisbursementService.Process(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(payment.StatusFailed, processed.Status)

	s.app.DispatchOutbox(ctx)

	final, err := s.app.AdvanceService.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(advance.StatusRejected, final.Status)
	s.Contains(final.RejectionReason, advance.DisbursementFailedReason)
	s.False(final.IsOutstanding())

	published := s.publishedTypes()
	s.Contains(published, events.EventTypeDisbursementFailed)
	s.Contains(published, events.EventTypeAdvanceRequestRejected)

	result, err := s.app.AdvanceService.CheckEligibility(ctx, 7, decimal.RequireFromString("50.00"))
	s.Require().NoError(err)
	s.True(result.Eligible)

	next, err := s.app.AdvanceService.Submit(ctx, advancesvc.SubmitRequest{
		EmployeeID: 7,
		Amount:     decimal.RequireFromString("50.00"),
		Reason:     "rent",
	})
	s.Require().NoError(err)
	s.Equal(advance.StatusPending, next.Status)
}

func (s *FlowTestSuite) TestEveryEnvelopeMatchesItsEntity() {
	ctx := context.Background()
	s.earns(7, "1000.00")

	created, err := s.app.AdvanceService.Submit(ctx, advancesvc.SubmitRequest{
		EmployeeID: 7,
		Amount:     decimal.RequireFromString("100.00"),
		Reason:     "rent",
	})
	s.Require().NoError(err)
	approverID := uint(3)
	_, err = s.app.AdvanceService.UpdateStatus(ctx, created.ID, advance.StatusChange{
		Status: advance.StatusApproved, ApprovedBy: &approverID,
	})
	s.Require().NoError(err)
	s.app.DispatchOutbox(ctx)

	for _, p := range s.bus.Published() {
		topic, err := events.TopicFor(p.Envelope.EventType)
		s.Require().NoError(err)
		s.Equal(topic, p.Topic)
		switch p.Envelope.EventType {
		case events.EventTypeAdvanceRequestCreated, events.EventTypeAdvanceRequestApproved:
			payload, err := events.Decode[events.AdvanceRequestPayload](p.Envelope)
			s.Require().NoError(err)
			s.Equal(p.Envelope.EntityID, payload.ID)
		case events.EventTypeDisbursementCreated:
			payload, err := events.Decode[events.DisbursementPayload](p.Envelope)
			s.Require().NoError(err)
			s.Equal(p.Envelope.EntityID, payload.ID)
			s.Equal(string(payment.StatusPending), payload.Status)
		}
	}
}

func (s *FlowTestSuite) TestRedeliveredApprovalCreatesOneDisbursement() {
	ctx := context.Background()
	s.earns(7, "1000.00")

	created, err := s.app.AdvanceService.Submit(ctx, advancesvc.SubmitRequest{
		EmployeeID: 7,
		Amount:     decimal.RequireFromString("100.00"),
		Reason:     "rent",
	})
	s.Require().NoError(err)
	approverID := uint(3)
	_, err = s.app.AdvanceService.UpdateStatus(ctx, created.ID, advance.StatusChange{
		Status: advance.StatusApproved, ApprovedBy: &approverID,
	})
	s.Require().NoError(err)
	s.app.DispatchOutbox(ctx)

	var approval events.Envelope
	for _, p := range s.bus.Published() {
		if p.Envelope.EventType == events.EventTypeAdvanceRequestApproved {
			approval = p.Envelope
		}
	}
	s.Require().NoError(s.bus.Publish(ctx, events.TopicAdvanceRequestApproved, approval))

	list, err := s.app.DisbursementService.ListByEmployee(ctx, 7)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *FlowTestSuite) TestDisabledFamiliesDoNotListen() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := infra_eventbus.NewWithMemory(logger)
	uow := fakes.NewUoW()
	a := app.New(config.Deps{Uow: uow, EventBus: bus, Logger: logger}, &config.App{Services: "advance"})

	env, err := events.New(events.EventTypeAdvanceRequestApproved, 1, events.AdvanceRequestPayload{
		ID: 1, EmployeeID: 7, Amount: decimal.RequireFromString("10.00"),
	})
	s.Require().NoError(err)
	s.Require().NoError(bus.Publish(context.Background(), events.TopicAdvanceRequestApproved, env))

	_, err = a.DisbursementService.GetByAdvanceRequest(context.Background(), 1)
	s.Error(err)
	s.Empty(uow.Outbox())
}

func TestFlowTestSuite(t *testing.T) {
	suite.Run(t, new(FlowTestSuite))
}

func TestStartJobs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := app.New(config.Deps{
		Uow:      fakes.NewUoW(),
		EventBus: infra_eventbus.NewWithMemory(logger),
		Logger:   logger,
	}, &config.App{
		Services:     "disbursement,repayment",
		Outbox:       &config.Outbox{},
		Disbursement: &config.Disbursement{},
	})

	jobs, err := a.StartJobs()
	require.NoError(t, err)
	jobs.Stop()
	assert.NotNil(t, a.Dispatcher)
}
