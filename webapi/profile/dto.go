package profile

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/shopspring/decimal"
)

// EmployeeInput is the body of POST and PUT /api/employees.
// UserID is ignored on PUT.
type EmployeeInput struct {
	UserID            uint            `json:"userId"`
	EmployerID        uint            `json:"employerId"`
	EmployeeIDNumber  string          `json:"employeeIdNumber" validate:"max=50"`
	JobTitle          string          `json:"jobTitle" validate:"max=100"`
	Department        string          `json:"department" validate:"max=100"`
	DateOfJoining     *time.Time      `json:"dateOfJoining,omitempty"`
	MonthlySalary     decimal.Decimal `json:"monthlySalary" swaggertype:"string" example:"3100.00"`
	SalaryCurrency    string          `json:"salaryCurrency" validate:"omitempty,len=3"`
	PayCycle          string          `json:"payCycle" validate:"omitempty,oneof=MONTHLY BIWEEKLY WEEKLY"`
	BankAccountNumber string          `json:"bankAccountNumber" validate:"max=50"`
	BankName          string          `json:"bankName" validate:"max=100"`
	BankBranchCode    string          `json:"bankBranchCode" validate:"max=20"`
	TaxID             string          `json:"taxId" validate:"max=50"`
}

func (in EmployeeInput) toDomain() *user.EmployeeProfile {
	return &user.EmployeeProfile{
		UserID:            in.UserID,
		EmployerID:        in.EmployerID,
		EmployeeIDNumber:  in.EmployeeIDNumber,
		JobTitle:          in.JobTitle,
		Department:        in.Department,
		DateOfJoining:     in.DateOfJoining,
		MonthlySalary:     in.MonthlySalary,
		SalaryCurrency:    in.SalaryCurrency,
		PayCycle:          user.PayCycle(in.PayCycle),
		BankAccountNumber: in.BankAccountNumber,
		BankName:          in.BankName,
		BankBranchCode:    in.BankBranchCode,
		TaxID:             in.TaxID,
	}
}

// EmployeeDTO is the API view of an employee profile. Bank and tax details
// are not returned.
type EmployeeDTO struct {
	ID               uint       `json:"id"`
	UserID           uint       `json:"userId"`
	EmployerID       uint       `json:"employerId,omitempty"`
	EmployeeIDNumber string     `json:"employeeIdNumber,omitempty"`
	JobTitle         string     `json:"jobTitle,omitempty"`
	Department       string     `json:"department,omitempty"`
	DateOfJoining    *time.Time `json:"dateOfJoining,omitempty"`
	MonthlySalary    string     `json:"monthlySalary"`
	SalaryCurrency   string     `json:"salaryCurrency"`
	PayCycle         string     `json:"payCycle"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func toEmployeeDTO(p *user.EmployeeProfile) EmployeeDTO {
	return EmployeeDTO{
		ID:               p.ID,
		UserID:           p.UserID,
		EmployerID:       p.EmployerID,
		EmployeeIDNumber: p.EmployeeIDNumber,
		JobTitle:         p.JobTitle,
		Department:       p.Department,
		DateOfJoining:    p.DateOfJoining,
		MonthlySalary:    p.MonthlySalary.StringFixed(2),
		SalaryCurrency:   p.SalaryCurrency,
		PayCycle:         string(p.PayCycle),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// SalaryInfoDTO is the salary provider contract read by the advance service.
type SalaryInfoDTO struct {
	EmployeeID    uint      `json:"employeeId"`
	MonthlySalary string    `json:"monthlySalary"`
	EarnedAmount  string    `json:"earnedAmount"`
	Currency      string    `json:"currency"`
	AsOf          time.Time `json:"asOf"`
}

func toSalaryInfoDTO(info *user.SalaryInfo) SalaryInfoDTO {
	return SalaryInfoDTO{
		EmployeeID:    info.EmployeeID,
		MonthlySalary: info.MonthlySalary.StringFixed(2),
		EarnedAmount:  info.EarnedAmount.StringFixed(2),
		Currency:      info.Currency,
		AsOf:          info.AsOf,
	}
}

// EmployerInput is the body of POST and PUT /api/employers.
// UserID is ignored on PUT.
type EmployerInput struct {
	UserID                    uint   `json:"userId"`
	CompanyName               string `json:"companyName" validate:"required,max=200"`
	CompanyRegistrationNumber string `json:"companyRegistrationNumber" validate:"max=50"`
	TaxID                     string `json:"taxId" validate:"max=50"`
	Industry                  string `json:"industry" validate:"max=100"`
	ContactPersonName         string `json:"contactPersonName" validate:"max=100"`
	ContactEmail              string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone              string `json:"contactPhone" validate:"max=20"`
	Address                   string `json:"address" validate:"max=500"`
	MaxAdvancePercent         int    `json:"maxAdvancePercent" validate:"min=0,max=100"`
	ApprovalWorkflowRequired  bool   `json:"approvalWorkflowRequired"`
}

func (in EmployerInput) toDomain() *user.EmployerProfile {
	return &user.EmployerProfile{
		UserID:                    in.UserID,
		CompanyName:               in.CompanyName,
		CompanyRegistrationNumber: in.CompanyRegistrationNumber,
		TaxID:                     in.TaxID,
		Industry:                  in.Industry,
		ContactPersonName:         in.ContactPersonName,
		ContactEmail:              in.ContactEmail,
		ContactPhone:              in.ContactPhone,
		Address:                   in.Address,
		MaxAdvancePercent:         in.MaxAdvancePercent,
		ApprovalWorkflowRequired:  in.ApprovalWorkflowRequired,
	}
}

// EmployerDTO is the API view of an employer profile.
type EmployerDTO struct {
	ID                        uint      `json:"id"`
	UserID                    uint      `json:"userId"`
	CompanyName               string    `json:"companyName"`
	CompanyRegistrationNumber string    `json:"companyRegistrationNumber,omitempty"`
	TaxID                     string    `json:"taxId,omitempty"`
	Industry                  string    `json:"industry,omitempty"`
	ContactPersonName         string    `json:"contactPersonName,omitempty"`
	ContactEmail              string    `json:"contactEmail,omitempty"`
	ContactPhone              string    `json:"contactPhone,omitempty"`
	Address                   string    `json:"address,omitempty"`
	MaxAdvancePercent         int       `json:"maxAdvancePercent"`
	ApprovalWorkflowRequired  bool      `json:"approvalWorkflowRequired"`
	CreatedAt                 time.Time `json:"createdAt"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

func toEmployerDTO(p *user.EmployerProfile) EmployerDTO {
	return EmployerDTO{
		ID:                        p.ID,
		UserID:                    p.UserID,
		CompanyName:               p.CompanyName,
		CompanyRegistrationNumber: p.CompanyRegistrationNumber,
		TaxID:                     p.TaxID,
		Industry:                  p.Industry,
		ContactPersonName:         p.ContactPersonName,
		ContactEmail:              p.ContactEmail,
		ContactPhone:              p.ContactPhone,
		Address:                   p.Address,
		MaxAdvancePercent:         p.MaxAdvancePercent,
		ApprovalWorkflowRequired:  p.ApprovalWorkflowRequired,
		CreatedAt:                 p.CreatedAt,
		UpdatedAt:                 p.UpdatedAt,
	}
}
