// Package disbursement implements the disbursement service: creation from
// approved advances, the payment workflow and the stuck-PROCESSING sweep.
package disbursement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/disbursement"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/amirasaad/payadvance/pkg/outbox"
	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/amirasaad/payadvance/pkg/repository"
	disbursementrepo "github.com/amirasaad/payadvance/pkg/repository/disbursement"
	"github.com/shopspring/decimal"
)

// Defaults used when the configuration leaves them unset.
var (
	DefaultFeeRate         = decimal.RequireFromString("0.02")
	DefaultRepaymentPeriod = 30 * 24 * time.Hour
	DefaultStuckAfter      = 15 * time.Minute
)

// sweepBatch caps how many stuck disbursements one sweep fails.
const sweepBatch = 100

// ReasonTimedOut is recorded on disbursements failed by the sweep.
const ReasonTimedOut = "payment processing timed out"

// CreateRequest carries the fields of a disbursement created over the API.
// A nil FeeAmount means no fee.
type CreateRequest struct {
	AdvanceRequestID      uint
	EmployeeID            uint
	Amount                decimal.Decimal
	FeeAmount             *decimal.Decimal
	PaymentMethod         string
	ExpectedRepaymentDate *time.Time
}

// Service handles disbursements.
type Service struct {
	uow             repository.UnitOfWork
	gateway         provider.PaymentGateway
	feeRate         decimal.Decimal
	repaymentPeriod time.Duration
	stuckAfter      time.Duration
	logger          *slog.Logger
}

// New creates a disbursement service.
func New(deps config.Deps) *Service {
	s := &Service{
		uow:             deps.Uow,
		gateway:         deps.PaymentGateway,
		feeRate:         DefaultFeeRate,
		repaymentPeriod: DefaultRepaymentPeriod,
		stuckAfter:      DefaultStuckAfter,
		logger:          deps.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("service", "disbursement")
	if deps.Config != nil && deps.Config.Disbursement != nil {
		cfg := deps.Config.Disbursement
		if cfg.FeeRate > 0 {
			s.feeRate = decimal.NewFromFloat(cfg.FeeRate)
		}
		if cfg.RepaymentPeriod > 0 {
			s.repaymentPeriod = cfg.RepaymentPeriod
		}
		if cfg.StuckAfter > 0 {
			s.stuckAfter = cfg.StuckAfter
		}
	}
	return s
}

// Create stores a PENDING disbursement. A second disbursement for the same
// advance request yields domain.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*disbursement.Disbursement, error) {
	fee := decimal.Zero
	if req.FeeAmount != nil {
		fee = *req.FeeAmount
	}
	d, err := disbursement.New(disbursement.Params{
		AdvanceRequestID:      req.AdvanceRequestID,
		EmployeeID:            req.EmployeeID,
		Amount:                req.Amount,
		FeeAmount:             fee,
		PaymentMethod:         req.PaymentMethod,
		ExpectedRepaymentDate: req.ExpectedRepaymentDate,
	})
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateForApprovedAdvance creates the disbursement that fulfils an
// approved advance: configured fee rate, default payment method and
// repayment due after the configured period.
func (s *Service) CreateForApprovedAdvance(ctx context.Context, approved events.AdvanceRequestPayload) (*disbursement.Disbursement, error) {
	due := time.Now().UTC().Add(s.repaymentPeriod)
	d, err := disbursement.New(disbursement.Params{
		AdvanceRequestID:      approved.ID,
		EmployeeID:            approved.EmployeeID,
		Amount:                approved.Amount,
		FeeAmount:             disbursement.FeeFor(approved.Amount, s.feeRate),
		PaymentMethod:         payment.DefaultMethod,
		ExpectedRepaymentDate: &due,
	})
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) insert(ctx context.Context, d *disbursement.Disbursement) error {
	log := s.logger.With("advance_request_id", d.AdvanceRequestID, "employee_id", d.EmployeeID)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[disbursementrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, d); err != nil {
			return err
		}
		_, err = outbox.Record(ctx, uow, disbursement.EventTypeFor(d.Status), d.ID, d.Payload())
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			log.Info("🔁 [SKIP] Disbursement already exists for advance request")
		} else {
			log.Error("❌ [ERROR] Failed to create disbursement", "error", err)
		}
		return err
	}
	log.Info("✅ [SUCCESS] Disbursement created",
		"disbursement_id", d.ID, "amount", d.Amount, "fee", d.FeeAmount, "total", d.TotalRepaymentAmount)
	return nil
}

// Get returns the disbursement with id.
func (s *Service) Get(ctx context.Context, id uint) (*disbursement.Disbursement, error) {
	repo, err := repository.Get[disbursementrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

// GetByAdvanceRequest returns the disbursement of an advance request.
func (s *Service) GetByAdvanceRequest(ctx context.Context, advanceRequestID uint) (*disbursement.Disbursement, error) {
	repo, err := repository.Get[disbursementrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.GetByAdvanceRequest(ctx, advanceRequestID)
}

// ListByEmployee returns an employee's disbursements, newest first.
func (s *Service) ListByEmployee(ctx context.Context, employeeID uint) ([]*disbursement.Disbursement, error) {
	repo, err := repository.Get[disbursementrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListByEmployee(ctx, employeeID)
}

// UpdateStatus moves the disbursement along a legal edge and records the
// event for the status reached. reason is kept only when failing.
func (s *Service) UpdateStatus(ctx context.Context, id uint, to payment.Status, reason string) (*disbursement.Disbursement, error) {
	return s.transition(ctx, id, func(d *disbursement.Disbursement) error {
		return d.MoveTo(to, reason, time.Now().UTC())
	}, true)
}

// Process pays out a PENDING disbursement through the payment gateway.
// Any other status is returned unchanged. A gateway failure leaves the
// disbursement FAILED and is not returned as an error.
func (s *Service) Process(ctx context.Context, id uint) (*disbursement.Disbursement, error) {
	log := s.logger.With("disbursement_id", id)
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != payment.StatusPending {
		log.Info("🔁 [SKIP] Disbursement is not pending", "status", current.Status)
		return current, nil
	}

	d, err := s.transition(ctx, id, func(d *disbursement.Disbursement) error {
		return d.MoveTo(payment.StatusProcessing, "", time.Now().UTC())
	}, false)
	if errors.Is(err, domain.ErrIllegalTransition) || errors.Is(err, domain.ErrConcurrentUpdate) {
		log.Info("🔁 [SKIP] Disbursement picked up by another processor")
		return s.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	log.Info("🟢 [START] Processing disbursement", "amount", d.Amount, "method", d.PaymentMethod)

	result, payErr := s.gateway.Execute(ctx, provider.PaymentRequest{
		Kind:       provider.PaymentDisbursement,
		EntityID:   d.ID,
		EmployeeID: d.EmployeeID,
		Amount:     d.Amount,
		Method:     d.PaymentMethod,
	})
	if payErr != nil {
		log.Warn("⚠️ Payment gateway refused disbursement", "error", payErr)
		return s.transition(ctx, id, func(d *disbursement.Disbursement) error {
			return d.MoveTo(payment.StatusFailed, payErr.Error(), time.Now().UTC())
		}, true)
	}
	return s.transition(ctx, id, func(d *disbursement.Disbursement) error {
		return d.Complete(result.TransactionReference, time.Now().UTC())
	}, true)
}

// SweepStuck fails disbursements that have been PROCESSING for longer than
// the configured limit and returns how many it failed.
func (s *Service) SweepStuck(ctx context.Context, now time.Time) (int, error) {
	repo, err := repository.Get[disbursementrepo.Repository](s.uow)
	if err != nil {
		return 0, err
	}
	stuck, err := repo.ListStale(ctx, payment.StatusProcessing, now.Add(-s.stuckAfter), sweepBatch)
	if err != nil {
		return 0, err
	}
	failed := 0
	for _, d := range stuck {
		_, err := s.transition(ctx, d.ID, func(d *disbursement.Disbursement) error {
			if d.Status != payment.StatusProcessing {
				return errNoLongerStuck
			}
			return d.MoveTo(payment.StatusFailed, ReasonTimedOut, now)
		}, true)
		switch {
		case err == nil:
			failed++
		case errors.Is(err, errNoLongerStuck), errors.Is(err, domain.ErrConcurrentUpdate):
			// finished while we were looking
		default:
			return failed, err
		}
	}
	if failed > 0 {
		s.logger.Warn("⚠️ Failed stuck disbursements", "count", failed)
	}
	return failed, nil
}

var errNoLongerStuck = errors.New("disbursement no longer processing")

// transition loads the disbursement, applies mutate and saves it in one
// transaction, recording the status event when record is set.
func (s *Service) transition(
	ctx context.Context,
	id uint,
	mutate func(d *disbursement.Disbursement) error,
	record bool,
) (*disbursement.Disbursement, error) {
	var d *disbursement.Disbursement
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[disbursementrepo.Repository](uow)
		if err != nil {
			return err
		}
		d, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(d); err != nil {
			return err
		}
		if err := repo.Update(ctx, d); err != nil {
			return err
		}
		if !record {
			return nil
		}
		_, err = outbox.Record(ctx, uow, disbursement.EventTypeFor(d.Status), d.ID, d.Payload())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("disbursement %d: %w", id, err)
	}
	s.logger.Info("disbursement status changed", "disbursement_id", id, "status", d.Status)
	return d, nil
}
