package user

import (
	"testing"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	utils.HashCost = bcrypt.MinCost
	m.Run()
}

func TestNew(t *testing.T) {
	u, err := New(Registration{
		Email:     "  Jane.Doe@Example.com ",
		Password:  "s3cretpass",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", u.Email)
	assert.Equal(t, RoleEmployee, u.Role)
	assert.Equal(t, KycPending, u.KycStatus)
	assert.NotEqual(t, "s3cretpass", u.Password)
	assert.True(t, utils.CheckPasswordHash("s3cretpass", u.Password))
	assert.Equal(t, "Jane Doe", u.FullName())

	payload := u.Payload()
	assert.Equal(t, "PENDING", payload.KycStatus)
}

func TestNewValidation(t *testing.T) {
	base := Registration{Email: "a@b.com", Password: "longenough", FirstName: "A", LastName: "B"}

	r := base
	r.Email = "nope"
	_, err := New(r)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	r = base
	r.Password = "short"
	_, err = New(r)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	r = base
	r.LastName = ""
	_, err = New(r)
	assert.ErrorIs(t, err, ErrNameRequired)

	r = base
	r.Role = "SUPERUSER"
	_, err = New(r)
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestKycTransitions(t *testing.T) {
	u := &User{ID: 1, KycStatus: KycPending}

	err := u.SetKycStatus(KycVerified, time.Now())
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	require.NoError(t, u.SetKycStatus(KycInProgress, time.Now()))
	require.NoError(t, u.SetKycStatus(KycVerified, time.Now()))
	assert.Equal(t, KycVerified, u.KycStatus)

	err = u.SetKycStatus(KycRejected, time.Now())
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestParseKycStatus(t *testing.T) {
	s, err := ParseKycStatus("not_started")
	require.NoError(t, err)
	assert.Equal(t, KycPending, s)

	s, err = ParseKycStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, KycInProgress, s)

	_, err = ParseKycStatus("maybe")
	assert.ErrorIs(t, err, ErrInvalidKycStatus)
}

func TestSalaryInfo(t *testing.T) {
	p := &EmployeeProfile{UserID: 7, MonthlySalary: decimal.RequireFromString("3000.00"), SalaryCurrency: "USD"}

	// April has 30 days.
	info := p.SalaryInfo(time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, uint(7), info.EmployeeID)
	assert.Equal(t, "1000.00", info.EarnedAmount.StringFixed(2))

	// 1000 * 1 / 31 = 32.258..., truncated.
	p.MonthlySalary = decimal.RequireFromString("1000.00")
	info = p.SalaryInfo(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "32.25", info.EarnedAmount.StringFixed(2))
}

func TestEmployeeProfileValidate(t *testing.T) {
	p := &EmployeeProfile{MonthlySalary: decimal.NewFromInt(100), SalaryCurrency: "eur"}
	require.NoError(t, p.Validate())
	assert.Equal(t, PayCycleMonthly, p.PayCycle)
	assert.Equal(t, "EUR", p.SalaryCurrency)

	p = &EmployeeProfile{}
	assert.ErrorIs(t, p.Validate(), ErrInvalidSalary)

	p = &EmployeeProfile{MonthlySalary: decimal.NewFromInt(1), PayCycle: "DAILY"}
	assert.ErrorIs(t, p.Validate(), ErrInvalidPayCycle)
}

func TestEmployerProfileValidate(t *testing.T) {
	p := &EmployerProfile{CompanyName: "Acme"}
	require.NoError(t, p.Validate())
	assert.Equal(t, DefaultMaxAdvancePercent, p.MaxAdvancePercent)

	p = &EmployerProfile{CompanyName: "Acme", MaxAdvancePercent: 120}
	assert.ErrorIs(t, p.Validate(), ErrInvalidAdvancePercent)

	p = &EmployerProfile{}
	assert.ErrorIs(t, p.Validate(), ErrCompanyNameRequired)
}
