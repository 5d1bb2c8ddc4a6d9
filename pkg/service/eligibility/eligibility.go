// Package eligibility decides whether an employee may take a salary advance.
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/amirasaad/payadvance/pkg/repository"
	advancerepo "github.com/amirasaad/payadvance/pkg/repository/advance"
	"github.com/shopspring/decimal"
)

// ErrIneligible is returned by callers that turn an Ineligible result into an error.
var ErrIneligible = errors.New("employee is not eligible for an advance")

// DefaultMaxAdvanceRatio is the share of earned salary that may be advanced.
var DefaultMaxAdvanceRatio = decimal.RequireFromString("0.5")

// Ineligibility reasons.
const (
	ReasonOutstanding    = "employee has an outstanding advance request"
	ReasonExceedsMaximum = "requested amount exceeds the maximum eligible amount"
	ReasonNoSalary       = "no salary information on record"
	ReasonNothingEarned  = "no salary earned yet this period"
)

// Result is the outcome of an evaluation. MaxAmount is zero when it was not
// computed, which happens when the employee already has an outstanding request.
type Result struct {
	EmployeeID      uint            `json:"employeeId"`
	Eligible        bool            `json:"eligible"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
	MaxAmount       decimal.Decimal `json:"maxEligibleAmount"`
	Reason          string          `json:"reason,omitempty"`
}

// Err returns nil for an eligible result and ErrIneligible with the reason otherwise.
func (r Result) Err() error {
	if r.Eligible {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrIneligible, r.Reason)
}

// Service evaluates eligibility against outstanding requests and salary.
type Service struct {
	uow    repository.UnitOfWork
	salary provider.SalaryProvider
	ratio  decimal.Decimal
	logger *slog.Logger
}

// New creates an eligibility service from deps.
func New(deps config.Deps) *Service {
	ratio := DefaultMaxAdvanceRatio
	if deps.Config != nil && deps.Config.Eligibility != nil && deps.Config.Eligibility.MaxAdvanceRatio > 0 {
		ratio = decimal.NewFromFloat(deps.Config.Eligibility.MaxAdvanceRatio)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:    deps.Uow,
		salary: deps.SalaryProvider,
		ratio:  ratio,
		logger: logger.With("service", "eligibility"),
	}
}

// Evaluate checks, in order, for an outstanding request and then the
// requested amount against MaxEligibleAmount. A zero amount asks only
// whether any advance is possible. Provider failures are returned as
// domain.ErrDependencyUnavailable.
func (s *Service) Evaluate(ctx context.Context, employeeID uint, amount decimal.Decimal) (Result, error) {
	log := s.logger.With("employee_id", employeeID, "requested_amount", amount)
	result := Result{EmployeeID: employeeID, RequestedAmount: amount}

	repo, err := repository.Get[advancerepo.Repository](s.uow)
	if err != nil {
		return result, err
	}
	outstanding, err := repo.HasOutstanding(ctx, employeeID)
	if err != nil {
		return result, err
	}
	if outstanding {
		log.Info("employee has outstanding advance")
		result.Reason = ReasonOutstanding
		return result, nil
	}

	maxAmount, err := s.MaxEligibleAmount(ctx, employeeID)
	switch {
	case errors.Is(err, provider.ErrSalaryNotFound):
		result.Reason = ReasonNoSalary
		return result, nil
	case err != nil:
		log.Error("❌ [ERROR] max eligible amount unavailable", "error", err)
		return result, err
	}
	result.MaxAmount = maxAmount

	switch {
	case amount.IsZero() && maxAmount.LessThan(advance.MinAmount):
		result.Reason = ReasonNothingEarned
	case amount.LessThanOrEqual(maxAmount):
		result.Eligible = true
	default:
		result.Reason = fmt.Sprintf("%s of %s", ReasonExceedsMaximum, maxAmount.StringFixed(2))
	}
	log.Info("eligibility evaluated", "eligible", result.Eligible, "max_amount", maxAmount)
	return result, nil
}

// MaxEligibleAmount is the earned salary times the advance ratio, truncated to cents.
func (s *Service) MaxEligibleAmount(ctx context.Context, employeeID uint) (decimal.Decimal, error) {
	info, err := s.salary.GetSalaryInfo(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	if info.EarnedAmount.IsNegative() {
		return decimal.Zero, nil
	}
	return info.EarnedAmount.Mul(s.ratio).Truncate(2), nil
}
