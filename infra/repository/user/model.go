package user

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a user record in the database.
type User struct {
	ID          uint   `gorm:"primaryKey"`
	Email       string `gorm:"uniqueIndex;not null;size:255"`
	Password    string `gorm:"not null"`
	FirstName   string `gorm:"size:100;not null"`
	LastName    string `gorm:"size:100;not null"`
	Role        string `gorm:"size:20;not null"`
	PhoneNumber string `gorm:"size:30"`
	KycStatus   string `gorm:"size:20;not null;default:'PENDING'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// EmployeeProfile represents an employee_profiles record.
type EmployeeProfile struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            uint   `gorm:"not null;uniqueIndex"`
	EmployerID        uint   `gorm:"index"`
	EmployeeIDNumber  string `gorm:"size:50"`
	JobTitle          string `gorm:"size:100"`
	Department        string `gorm:"size:100"`
	DateOfJoining     *time.Time
	MonthlySalary     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SalaryCurrency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	PayCycle          string          `gorm:"size:20;not null"`
	BankAccountNumber string          `gorm:"size:50"`
	BankName          string          `gorm:"size:100"`
	BankBranchCode    string          `gorm:"size:50"`
	TaxID             string          `gorm:"size:50"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for the EmployeeProfile model.
func (EmployeeProfile) TableName() string {
	return "employee_profiles"
}

// EmployerProfile represents an employer_profiles record.
type EmployerProfile struct {
	ID                        uint   `gorm:"primaryKey"`
	UserID                    uint   `gorm:"not null;uniqueIndex"`
	CompanyName               string `gorm:"size:255;not null"`
	CompanyRegistrationNumber string `gorm:"size:100"`
	TaxID                     string `gorm:"size:50"`
	Industry                  string `gorm:"size:100"`
	ContactPersonName         string `gorm:"size:255"`
	ContactEmail              string `gorm:"size:255"`
	ContactPhone              string `gorm:"size:30"`
	Address                   string `gorm:"size:500"`
	MaxAdvancePercent         int    `gorm:"not null;default:50"`
	ApprovalWorkflowRequired  bool   `gorm:"not null;default:false"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// TableName specifies the table name for the EmployerProfile model.
func (EmployerProfile) TableName() string {
	return "employer_profiles"
}

func mapUserToModel(u *user.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		Password:    u.Password,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        string(u.Role),
		PhoneNumber: u.PhoneNumber,
		KycStatus:   string(u.KycStatus),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func mapModelToUser(m *User) *user.User {
	return &user.User{
		ID:          m.ID,
		Email:       m.Email,
		Password:    m.Password,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Role:        user.Role(m.Role),
		PhoneNumber: m.PhoneNumber,
		KycStatus:   user.KycStatus(m.KycStatus),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func mapEmployeeToModel(p *user.EmployeeProfile) *EmployeeProfile {
	return &EmployeeProfile{
		ID:                p.ID,
		UserID:            p.UserID,
		EmployerID:        p.EmployerID,
		EmployeeIDNumber:  p.EmployeeIDNumber,
		JobTitle:          p.JobTitle,
		Department:        p.Department,
		DateOfJoining:     p.DateOfJoining,
		MonthlySalary:     p.MonthlySalary,
		SalaryCurrency:    p.SalaryCurrency,
		PayCycle:          string(p.PayCycle),
		BankAccountNumber: p.BankAccountNumber,
		BankName:          p.BankName,
		BankBranchCode:    p.BankBranchCode,
		TaxID:             p.TaxID,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func mapModelToEmployee(m *EmployeeProfile) *user.EmployeeProfile {
	return &user.EmployeeProfile{
		ID:                m.ID,
		UserID:            m.UserID,
		EmployerID:        m.EmployerID,
		EmployeeIDNumber:  m.EmployeeIDNumber,
		JobTitle:          m.JobTitle,
		Department:        m.Department,
		DateOfJoining:     m.DateOfJoining,
		MonthlySalary:     m.MonthlySalary,
		SalaryCurrency:    m.SalaryCurrency,
		PayCycle:          user.PayCycle(m.PayCycle),
		BankAccountNumber: m.BankAccountNumber,
		BankName:          m.BankName,
		BankBranchCode:    m.BankBranchCode,
		TaxID:             m.TaxID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func mapEmployerToModel(p *user.EmployerProfile) *EmployerProfile {
	return &EmployerProfile{
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

func mapModelToEmployer(m *EmployerProfile) *user.EmployerProfile {
	return &user.EmployerProfile{
		ID:                        m.ID,
		UserID:                    m.UserID,
		CompanyName:               m.CompanyName,
		CompanyRegistrationNumber: m.CompanyRegistrationNumber,
		TaxID:                     m.TaxID,
		Industry:                  m.Industry,
		ContactPersonName:         m.ContactPersonName,
		ContactEmail:              m.ContactEmail,
		ContactPhone:              m.ContactPhone,
		Address:                   m.Address,
		MaxAdvancePercent:         m.MaxAdvancePercent,
		ApprovalWorkflowRequired:  m.ApprovalWorkflowRequired,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
}
