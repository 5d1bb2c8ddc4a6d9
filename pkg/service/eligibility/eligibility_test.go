package eligibility_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/payadvance/internal/fixtures/fakes"
	"github.com/amirasaad/payadvance/internal/fixtures/mocks"
	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/amirasaad/payadvance/pkg/repository"
	advancerepo "github.com/amirasaad/payadvance/pkg/repository/advance"
	"github.com/amirasaad/payadvance/pkg/service/eligibility"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(t *testing.T) (*eligibility.Service, *fakes.UoW, *mocks.SalaryProvider) {
	t.Helper()
	uow := fakes.NewUoW()
	salary := mocks.NewSalaryProvider(t)
	svc := eligibility.New(config.Deps{
		Uow:            uow,
		SalaryProvider: salary,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return svc, uow, salary
}

func earned(employeeID uint, amount string) *user.SalaryInfo {
	return &user.SalaryInfo{EmployeeID: employeeID, MonthlySalary: dec("3000.00"), EarnedAmount: dec(amount)}
}

func seedAdvance(t *testing.T, uow *fakes.UoW, employeeID uint, status advance.Status) {
	t.Helper()
	a, err := advance.New(employeeID, dec("50.00"), "seed", nil)
	require.NoError(t, err)
	a.Status = status
	repo, err := repository.Get[advancerepo.Repository](uow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), a))
}

func TestMaxEligibleAmountTruncates(t *testing.T) {
	svc, _, salary := newService(t)
	salary.On("GetSalaryInfo", mock.Anything, uint(7)).Return(earned(7, "1000.01"), nil)

	got, err := svc.MaxEligibleAmount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "500.00", got.StringFixed(2))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		earned   string
		eligible bool
		max      string
		reason   string
	}{
		{"within limit", "100.00", "1000.00", true, "500.00", ""},
		{"exactly the limit", "500.00", "1000.00", true, "500.00", ""},
		{"over the limit", "500.01", "1000.00", false, "500.00", eligibility.ReasonExceedsMaximum},
		{"zero asks for any advance", "0", "1000.00", true, "500.00", ""},
		{"nothing earned", "0", "0.01", false, "0.00", eligibility.ReasonNothingEarned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, salary := newService(t)
			salary.On("GetSalaryInfo", mock.Anything, uint(7)).Return(earned(7, tt.earned), nil)

			res, err := svc.Evaluate(context.Background(), 7, dec(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.eligible, res.Eligible)
			assert.Equal(t, tt.max, res.MaxAmount.StringFixed(2))
			assert.Contains(t, res.Reason, tt.reason)
			if tt.eligible {
				assert.NoError(t, res.Err())
			} else {
				assert.ErrorIs(t, res.Err(), eligibility.ErrIneligible)
			}
		})
	}
}

func TestEvaluateOutstandingRequest(t *testing.T) {
	for _, status := range []advance.Status{advance.StatusPending, advance.StatusApproved} {
		t.Run(string(status), func(t *testing.T) {
			svc, uow, _ := newService(t)
			seedAdvance(t, uow, 7, status)

			// The salary provider is never consulted.
			res, err := svc.Evaluate(context.Background(), 7, dec("1.00"))
			require.NoError(t, err)
			assert.False(t, res.Eligible)
			assert.Equal(t, eligibility.ReasonOutstanding, res.Reason)
			assert.True(t, res.MaxAmount.IsZero())
		})
	}
}

func TestEvaluateIgnoresSettledRequests(t *testing.T) {
	svc, uow, salary := newService(t)
	seedAdvance(t, uow, 7, advance.StatusRejected)
	seedAdvance(t, uow, 7, advance.StatusDisbursed)
	seedAdvance(t, uow, 8, advance.StatusPending)
	salary.On("GetSalaryInfo", mock.Anything, uint(7)).Return(earned(7, "400.00"), nil)

	res, err := svc.Evaluate(context.Background(), 7, dec("200.00"))
	require.NoError(t, err)
	assert.True(t, res.Eligible)
}

func TestEvaluateWithoutSalaryInformation(t *testing.T) {
	svc, _, salary := newService(t)
	salary.On("GetSalaryInfo", mock.Anything, uint(7)).Return(nil, provider.ErrSalaryNotFound)

	res, err := svc.Evaluate(context.Background(), 7, dec("10.00"))
	require.NoError(t, err)
	assert.False(t, res.Eligible)
	assert.Equal(t, eligibility.ReasonNoSalary, res.Reason)
}

func TestEvaluateProviderUnavailable(t *testing.T) {
	svc, _, salary := newService(t)
	unavailable := fmt.Errorf("%w: salary provider returned 502", domain.ErrDependencyUnavailable)
	salary.On("GetSalaryInfo", mock.Anything, uint(7)).Return(nil, unavailable)

	_, err := svc.Evaluate(context.Background(), 7, dec("10.00"))
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestNewUsesConfiguredRatio(t *testing.T) {
	salary := mocks.NewSalaryProvider(t)
	salary.On("GetSalaryInfo", mock.Anything, uint(7)).Return(earned(7, "1000.00"), nil)
	svc := eligibility.New(config.Deps{
		Uow:            fakes.NewUoW(),
		SalaryProvider: salary,
		Config:         &config.App{Eligibility: &config.Eligibility{MaxAdvanceRatio: 0.25}},
	})

	got, err := svc.MaxEligibleAmount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "250.00", got.StringFixed(2))
}
