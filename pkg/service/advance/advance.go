// Package advance implements the advance-request service: submission behind
// the eligibility check, reads, and the status workflow.
package advance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/lock"
	"github.com/amirasaad/payadvance/pkg/outbox"
	"github.com/amirasaad/payadvance/pkg/repository"
	advancerepo "github.com/amirasaad/payadvance/pkg/repository/advance"
	"github.com/amirasaad/payadvance/pkg/service/eligibility"
	"github.com/shopspring/decimal"
)

// DefaultLockTimeout bounds how long a submission waits for the employee lock.
const DefaultLockTimeout = 5 * time.Second

// NotificationChannel is the channel used for approval and rejection notices.
const NotificationChannel = "EMAIL"

// SubmitRequest carries the fields of a new advance request.
type SubmitRequest struct {
	EmployeeID            uint
	Amount                decimal.Decimal
	Reason                string
	ExpectedRepaymentDate *time.Time
}

// Service handles advance requests.
type Service struct {
	uow         repository.UnitOfWork
	eligibility *eligibility.Service
	locker      lock.Locker
	lockTimeout time.Duration
	logger      *slog.Logger
}

// New creates an advance service. A nil Locker falls back to an
// in-process keyed mutex.
func New(deps config.Deps) *Service {
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:         deps.Uow,
		eligibility: eligibility.New(deps),
		locker:      locker,
		lockTimeout: DefaultLockTimeout,
		logger:      logger.With("service", "advance"),
	}
}

// Submit validates the request, checks eligibility and stores a PENDING
// advance request. Submissions of one employee run one at a time, and the
// outstanding-request check is repeated inside the insert transaction.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*advance.AdvanceRequest, error) {
	log := s.logger.With("employee_id", req.EmployeeID, "amount", req.Amount)
	a, err := advance.New(req.EmployeeID, req.Amount, req.Reason, req.ExpectedRepaymentDate)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, req.EmployeeID)
	if err != nil {
		log.Warn("⚠️ Could not lock employee for submission", "error", err)
		return nil, err
	}
	defer release()

	result, err := s.eligibility.Evaluate(ctx, req.EmployeeID, a.Amount)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		log.Info("advance request refused", "reason", result.Reason)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[advancerepo.Repository](uow)
		if err != nil {
			return err
		}
		outstanding, err := repo.HasOutstanding(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		if outstanding {
			return fmt.Errorf("%w: %s", eligibility.ErrIneligible, eligibility.ReasonOutstanding)
		}
		if err := repo.Create(ctx, a); err != nil {
			return err
		}
		_, err = outbox.Record(ctx, uow, events.EventTypeAdvanceRequestCreated, a.ID, a.Payload())
		return err
	})
	if err != nil {
		log.Error("❌ [ERROR] Failed to store advance request", "error", err)
		return nil, err
	}
	log.Info("✅ [SUCCESS] Advance request submitted", "advance_request_id", a.ID)
	return a, nil
}

func (s *Service) acquire(ctx context.Context, employeeID uint) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	release, err := s.locker.Acquire(lockCtx, fmt.Sprintf("advance:employee:%d", employeeID))
	switch {
	case err == nil:
		return release, nil
	case errors.Is(err, lock.ErrNotAcquired):
		return nil, fmt.Errorf("%w: another submission for employee %d is in progress",
			domain.ErrConcurrentUpdate, employeeID)
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
}

// Get returns the advance request with id.
func (s *Service) Get(ctx context.Context, id uint) (*advance.AdvanceRequest, error) {
	repo, err := repository.Get[advancerepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

// ListByEmployee returns an employee's requests, newest first.
func (s *Service) ListByEmployee(ctx context.Context, employeeID uint) ([]*advance.AdvanceRequest, error) {
	repo, err := repository.Get[advancerepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListByEmployee(ctx, employeeID)
}

// ListByStatus returns the requests in status, newest first.
func (s *Service) ListByStatus(ctx context.Context, status advance.Status) ([]*advance.AdvanceRequest, error) {
	repo, err := repository.Get[advancerepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListByStatus(ctx, status)
}

// CheckEligibility evaluates an employee without creating anything.
func (s *Service) CheckEligibility(ctx context.Context, employeeID uint, amount decimal.Decimal) (eligibility.Result, error) {
	return s.eligibility.Evaluate(ctx, employeeID, amount)
}

// UpdateStatus applies change to the request and records the matching
// event. Approvals and rejections also request a notification to the employee.
func (s *Service) UpdateStatus(ctx context.Context, id uint, change advance.StatusChange) (*advance.AdvanceRequest, error) {
	log := s.logger.With("advance_request_id", id, "status", change.Status)
	a, err := s.apply(ctx, id, func(a *advance.AdvanceRequest) error {
		return a.Transition(change, time.Now().UTC())
	})
	if err != nil {
		log.Warn("⚠️ Advance request status not updated", "error", err)
		return nil, err
	}
	log.Info("✅ [SUCCESS] Advance request status updated")
	return a, nil
}

// apply loads the request, runs mutate on it and stores the result together
// with its status event and, when due, the employee notification.
func (s *Service) apply(ctx context.Context, id uint, mutate func(*advance.AdvanceRequest) error) (*advance.AdvanceRequest, error) {
	var a *advance.AdvanceRequest
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[advancerepo.Repository](uow)
		if err != nil {
			return err
		}
		a, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(a); err != nil {
			return err
		}
		if err := repo.Update(ctx, a); err != nil {
			return err
		}
		env, err := outbox.Record(ctx, uow, advance.EventTypeFor(a.Status), a.ID, a.Payload())
		if err != nil {
			return err
		}
		if notice, ok := notificationFor(a, env); ok {
			_, err = outbox.Record(ctx, uow, events.EventTypeNotificationRequested, a.EmployeeID, notice)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FailPayout rejects an APPROVED request whose disbursement failed, so the
// employee is no longer blocked by it. A request already rejected is
// returned unchanged.
func (s *Service) FailPayout(ctx context.Context, id uint, detail string) (*advance.AdvanceRequest, error) {
	log := s.logger.With("advance_request_id", id)
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == advance.StatusRejected {
		log.Info("🔁 [SKIP] Advance request already rejected")
		return a, nil
	}
	a, err = s.apply(ctx, id, func(a *advance.AdvanceRequest) error {
		return a.FailPayout(detail, time.Now().UTC())
	})
	if err != nil {
		log.Warn("⚠️ Advance request not closed after failed payout", "error", err)
		return nil, err
	}
	log.Info("✅ [SUCCESS] Advance request rejected after failed payout", "reason", a.RejectionReason)
	return a, nil
}

// MarkDisbursed moves an APPROVED request to DISBURSED. A request that is
// already DISBURSED is returned unchanged so redelivered events are harmless.
func (s *Service) MarkDisbursed(ctx context.Context, id uint) (*advance.AdvanceRequest, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == advance.StatusDisbursed {
		s.logger.Info("🔁 [SKIP] Advance request already disbursed", "advance_request_id", id)
		return a, nil
	}
	return s.UpdateStatus(ctx, id, advance.StatusChange{Status: advance.StatusDisbursed})
}

func notificationFor(a *advance.AdvanceRequest, source events.Envelope) (events.NotificationPayload, bool) {
	notice := events.NotificationPayload{
		RecipientID:   a.EmployeeID,
		Channel:       NotificationChannel,
		SourceEventID: source.EventID,
	}
	switch a.Status {
	case advance.StatusApproved:
		notice.Subject = "Your salary advance was approved"
		notice.Message = fmt.Sprintf("Your advance request #%d for %s was approved and will be disbursed shortly.",
			a.ID, a.Amount.StringFixed(2))
	case advance.StatusRejected:
		notice.Subject = "Your salary advance was rejected"
		notice.Message = fmt.Sprintf("Your advance request #%d for %s was rejected: %s",
			a.ID, a.Amount.StringFixed(2), a.RejectionReason)
	default:
		return notice, false
	}
	return notice, true
}
