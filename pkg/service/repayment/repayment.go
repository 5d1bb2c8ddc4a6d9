// Package repayment implements the repayment service. Repayments settle a
// completed disbursement and follow the same payment workflow.
package repayment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/amirasaad/payadvance/pkg/domain/repayment"
	"github.com/amirasaad/payadvance/pkg/outbox"
	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/amirasaad/payadvance/pkg/repository"
	disbursementrepo "github.com/amirasaad/payadvance/pkg/repository/disbursement"
	repaymentrepo "github.com/amirasaad/payadvance/pkg/repository/repayment"
	"github.com/shopspring/decimal"
)

var (
	// ErrDisbursementNotCompleted is returned when repaying money that was never paid out.
	ErrDisbursementNotCompleted = fmt.Errorf("%w: disbursement is not completed", domain.ErrValidation)
	// ErrEmployeeMismatch is returned when the repayment names another employee.
	ErrEmployeeMismatch = fmt.Errorf("%w: employee does not own the disbursement", domain.ErrValidation)
	// ErrExceedsBalance is returned when the amount is above what is still owed.
	ErrExceedsBalance = fmt.Errorf("%w: amount exceeds outstanding balance", domain.ErrValidation)
)

const (
	sweepBatch = 100
	// ReasonTimedOut is recorded on repayments failed by the sweep.
	ReasonTimedOut = "payment processing timed out"
)

// CreateRequest carries the fields of a new repayment. A zero EmployeeID is
// taken from the disbursement.
type CreateRequest struct {
	DisbursementID uint
	EmployeeID     uint
	Amount         decimal.Decimal
	PaymentMethod  string
	PaymentDate    time.Time
}

// Service handles repayments.
type Service struct {
	uow        repository.UnitOfWork
	gateway    provider.PaymentGateway
	stuckAfter time.Duration
	logger     *slog.Logger
}

// New creates a repayment service.
func New(deps config.Deps) *Service {
	stuckAfter := 15 * time.Minute
	if deps.Config != nil && deps.Config.Disbursement != nil && deps.Config.Disbursement.StuckAfter > 0 {
		stuckAfter = deps.Config.Disbursement.StuckAfter
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:        deps.Uow,
		gateway:    deps.PaymentGateway,
		stuckAfter: stuckAfter,
		logger:     logger.With("service", "repayment"),
	}
}

// Create stores a PENDING repayment against a completed disbursement. The
// amount may not exceed the total still owed, counting every repayment
// that has not failed.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*repayment.Repayment, error) {
	log := s.logger.With("disbursement_id", req.DisbursementID, "amount", req.Amount)
	var r *repayment.Repayment
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		disbursements, err := repository.Get[disbursementrepo.Repository](uow)
		if err != nil {
			return err
		}
		repo, err := repository.Get[repaymentrepo.Repository](uow)
		if err != nil {
			return err
		}
		d, err := disbursements.Get(ctx, req.DisbursementID)
		if err != nil {
			return err
		}
		if d.Status != payment.StatusCompleted {
			return fmt.Errorf("%w: disbursement %d is %s", ErrDisbursementNotCompleted, d.ID, d.Status)
		}
		employeeID := req.EmployeeID
		if employeeID == 0 {
			employeeID = d.EmployeeID
		}
		if employeeID != d.EmployeeID {
			return ErrEmployeeMismatch
		}

		r, err = repayment.New(repayment.Params{
			DisbursementID: d.ID,
			EmployeeID:     employeeID,
			Amount:         req.Amount,
			PaymentMethod:  req.PaymentMethod,
			PaymentDate:    req.PaymentDate,
		})
		if err != nil {
			return err
		}

		existing, err := repo.ListByDisbursement(ctx, d.ID)
		if err != nil {
			return err
		}
		if balance := Outstanding(d.TotalRepaymentAmount, existing); r.Amount.GreaterThan(balance) {
			return fmt.Errorf("%w: %s left of %s", ErrExceedsBalance, balance.StringFixed(2), d.TotalRepaymentAmount.StringFixed(2))
		}

		if err := repo.Create(ctx, r); err != nil {
			return err
		}
		_, err = outbox.Record(ctx, uow, repayment.EventTypeFor(r.Status), r.ID, r.Payload())
		return err
	})
	if err != nil {
		log.Warn("⚠️ Repayment not created", "error", err)
		return nil, err
	}
	log.Info("✅ [SUCCESS] Repayment scheduled", "repayment_id", r.ID)
	return r, nil
}

// Outstanding is total minus every repayment that has not failed.
func Outstanding(total decimal.Decimal, repayments []*repayment.Repayment) decimal.Decimal {
	paid := decimal.Zero
	for _, r := range repayments {
		if r.Status != payment.StatusFailed {
			paid = paid.Add(r.Amount)
		}
	}
	return total.Sub(paid)
}

// Get returns the repayment with id.
func (s *Service) Get(ctx context.Context, id uint) (*repayment.Repayment, error) {
	repo, err := repository.Get[repaymentrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

// ListByDisbursement returns the repayments of a disbursement.
func (s *Service) ListByDisbursement(ctx context.Context, disbursementID uint) ([]*repayment.Repayment, error) {
	repo, err := repository.Get[repaymentrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListByDisbursement(ctx, disbursementID)
}

// ListByEmployee returns an employee's repayments, newest first.
func (s *Service) ListByEmployee(ctx context.Context, employeeID uint) ([]*repayment.Repayment, error) {
	repo, err := repository.Get[repaymentrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListByEmployee(ctx, employeeID)
}

// UpdateStatus moves the repayment along a legal edge.
func (s *Service) UpdateStatus(ctx context.Context, id uint, to payment.Status, reason string) (*repayment.Repayment, error) {
	return s.transition(ctx, id, func(r *repayment.Repayment) error {
		return r.MoveTo(to, reason, time.Now().UTC())
	}, true)
}

// Process collects a PENDING repayment through the payment gateway. Any
// other status is returned unchanged.
func (s *Service) Process(ctx context.Context, id uint) (*repayment.Repayment, error) {
	log := s.logger.With("repayment_id", id)
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != payment.StatusPending {
		log.Info("🔁 [SKIP] Repayment is not pending", "status", current.Status)
		return current, nil
	}

	r, err := s.transition(ctx, id, func(r *repayment.Repayment) error {
		return r.MoveTo(payment.StatusProcessing, "", time.Now().UTC())
	}, false)
	if errors.Is(err, domain.ErrIllegalTransition) || errors.Is(err, domain.ErrConcurrentUpdate) {
		return s.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	log.Info("🟢 [START] Processing repayment", "amount", r.Amount)

	result, payErr := s.gateway.Execute(ctx, provider.PaymentRequest{
		Kind:       provider.PaymentRepayment,
		EntityID:   r.ID,
		EmployeeID: r.EmployeeID,
		Amount:     r.Amount,
		Method:     r.PaymentMethod,
	})
	if payErr != nil {
		log.Warn("⚠️ Payment gateway refused repayment", "error", payErr)
		return s.transition(ctx, id, func(r *repayment.Repayment) error {
			return r.MoveTo(payment.StatusFailed, payErr.Error(), time.Now().UTC())
		}, true)
	}
	return s.transition(ctx, id, func(r *repayment.Repayment) error {
		return r.Complete(result.TransactionReference, time.Now().UTC())
	}, true)
}

// SweepStuck fails repayments stuck in PROCESSING.
func (s *Service) SweepStuck(ctx context.Context, now time.Time) (int, error) {
	repo, err := repository.Get[repaymentrepo.Repository](s.uow)
	if err != nil {
		return 0, err
	}
	stuck, err := repo.ListStale(ctx, payment.StatusProcessing, now.Add(-s.stuckAfter), sweepBatch)
	if err != nil {
		return 0, err
	}
	failed := 0
	for _, r := range stuck {
		_, err := s.transition(ctx, r.ID, func(r *repayment.Repayment) error {
			return r.MoveTo(payment.StatusFailed, ReasonTimedOut, now)
		}, true)
		switch {
		case err == nil:
			failed++
		case errors.Is(err, domain.ErrIllegalTransition), errors.Is(err, domain.ErrConcurrentUpdate):
		default:
			return failed, err
		}
	}
	if failed > 0 {
		s.logger.Warn("⚠️ Failed stuck repayments", "count", failed)
	}
	return failed, nil
}

func (s *Service) transition(
	ctx context.Context,
	id uint,
	mutate func(r *repayment.Repayment) error,
	record bool,
) (*repayment.Repayment, error) {
	var r *repayment.Repayment
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[repaymentrepo.Repository](uow)
		if err != nil {
			return err
		}
		if r, err = repo.Get(ctx, id); err != nil {
			return err
		}
		if err := mutate(r); err != nil {
			return err
		}
		if err := repo.Update(ctx, r); err != nil {
			return err
		}
		if !record {
			return nil
		}
		_, err = outbox.Record(ctx, uow, repayment.EventTypeFor(r.Status), r.ID, r.Payload())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("repayment %d: %w", id, err)
	}
	return r, nil
}
