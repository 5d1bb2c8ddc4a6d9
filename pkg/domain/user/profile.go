package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidSalary is returned when the monthly salary is not positive.
	ErrInvalidSalary = fmt.Errorf("%w: monthly salary must be positive", domain.ErrValidation)
	// ErrInvalidAdvancePercent is returned when the percent is outside 1..100.
	ErrInvalidAdvancePercent = fmt.Errorf("%w: max advance percent must be between 1 and 100", domain.ErrValidation)
	// ErrCompanyNameRequired is returned when an employer profile has no company name.
	ErrCompanyNameRequired = fmt.Errorf("%w: company name is required", domain.ErrValidation)
	// ErrInvalidPayCycle is returned for an unknown pay cycle.
	ErrInvalidPayCycle = fmt.Errorf("%w: unknown pay cycle", domain.ErrValidation)
)

// DefaultMaxAdvancePercent applies when an employer does not set one.
const DefaultMaxAdvancePercent = 50

// PayCycle is how often an employee is paid.
type PayCycle string

const (
	PayCycleMonthly  PayCycle = "MONTHLY"
	PayCycleBiWeekly PayCycle = "BIWEEKLY"
	PayCycleWeekly   PayCycle = "WEEKLY"
)

// ParsePayCycle converts a string (case-insensitive) to a PayCycle; empty means monthly.
func ParsePayCycle(s string) (PayCycle, error) {
	c := PayCycle(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case "":
		return PayCycleMonthly, nil
	case PayCycleMonthly, PayCycleBiWeekly, PayCycleWeekly:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPayCycle, s)
}

// EmployeeProfile holds payroll data for a user with role EMPLOYEE.
type EmployeeProfile struct {
	ID                uint
	UserID            uint
	EmployerID        uint
	EmployeeIDNumber  string
	JobTitle          string
	Department        string
	DateOfJoining     *time.Time
	MonthlySalary     decimal.Decimal
	SalaryCurrency    string
	PayCycle          PayCycle
	BankAccountNumber string
	BankName          string
	BankBranchCode    string
	TaxID             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks the fields every employee profile needs.
func (p *EmployeeProfile) Validate() error {
	if !p.MonthlySalary.IsPositive() {
		return ErrInvalidSalary
	}
	cycle, err := ParsePayCycle(string(p.PayCycle))
	if err != nil {
		return err
	}
	p.PayCycle = cycle
	if p.SalaryCurrency == "" {
		p.SalaryCurrency = "USD"
	}
	p.SalaryCurrency = strings.ToUpper(p.SalaryCurrency)
	return nil
}

// SalaryInfo is what the eligibility evaluator needs from payroll.
type SalaryInfo struct {
	EmployeeID    uint
	MonthlySalary decimal.Decimal
	EarnedAmount  decimal.Decimal
	Currency      string
	AsOf          time.Time
}

// SalaryInfo pro-rates the monthly salary by the days worked so far this
// month, truncated to cents.
func (p *EmployeeProfile) SalaryInfo(asOf time.Time) SalaryInfo {
	day := asOf.Day()
	daysInMonth := time.Date(asOf.Year(), asOf.Month()+1, 0, 0, 0, 0, 0, asOf.Location()).Day()
	earned := p.MonthlySalary.
		Mul(decimal.NewFromInt(int64(day))).
		Div(decimal.NewFromInt(int64(daysInMonth))).
		Truncate(2)
	return SalaryInfo{
		EmployeeID:    p.UserID,
		MonthlySalary: p.MonthlySalary,
		EarnedAmount:  earned,
		Currency:      p.SalaryCurrency,
		AsOf:          asOf,
	}
}

// Payload builds the event payload; bank and tax fields stay private.
func (p *EmployeeProfile) Payload() events.EmployeeProfilePayload {
	return events.EmployeeProfilePayload{
		ID:               p.ID,
		UserID:           p.UserID,
		EmployerID:       p.EmployerID,
		EmployeeIDNumber: p.EmployeeIDNumber,
		MonthlySalary:    p.MonthlySalary,
		SalaryCurrency:   p.SalaryCurrency,
		PayCycle:         string(p.PayCycle),
	}
}

// EmployerProfile holds company data for a user with role EMPLOYER.
type EmployerProfile struct {
	ID                        uint
	UserID                    uint
	CompanyName               string
	CompanyRegistrationNumber string
	TaxID                     string
	Industry                  string
	ContactPersonName         string
	ContactEmail              string
	ContactPhone              string
	Address                   string
	MaxAdvancePercent         int
	ApprovalWorkflowRequired  bool
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// Validate checks required fields and applies the advance percent default.
func (p *EmployerProfile) Validate() error {
	if strings.TrimSpace(p.CompanyName) == "" {
		return ErrCompanyNameRequired
	}
	if p.MaxAdvancePercent == 0 {
		p.MaxAdvancePercent = DefaultMaxAdvancePercent
	}
	if p.MaxAdvancePercent < 1 || p.MaxAdvancePercent > 100 {
		return ErrInvalidAdvancePercent
	}
	return nil
}

// Payload builds the event payload.
func (p *EmployerProfile) Payload() events.EmployerProfilePayload {
	return events.EmployerProfilePayload{
		ID:                       p.ID,
		UserID:                   p.UserID,
		CompanyName:              p.CompanyName,
		MaxAdvancePercent:        p.MaxAdvancePercent,
		ApprovalWorkflowRequired: p.ApprovalWorkflowRequired,
	}
}
