package advance

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/shopspring/decimal"
)

// AdvanceRequest represents an advance_requests row.
type AdvanceRequest struct {
	ID                    uint            `gorm:"primaryKey"`
	EmployeeID            uint            `gorm:"not null;index"`
	Amount                decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	RequestedDate         time.Time       `gorm:"not null"`
	Status                string          `gorm:"size:20;not null;index"`
	Reason                string          `gorm:"size:500;not null"`
	ApprovedBy            *uint
	ApprovalDate          *time.Time
	RejectionReason       string `gorm:"size:500"`
	ExpectedRepaymentDate *time.Time
	Version               int `gorm:"not null;default:1"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName specifies the table name for the AdvanceRequest model.
func (AdvanceRequest) TableName() string {
	return "advance_requests"
}

func mapDomainToModel(a *advance.AdvanceRequest) *AdvanceRequest {
	return &AdvanceRequest{
		ID:                    a.ID,
		EmployeeID:            a.EmployeeID,
		Amount:                a.Amount,
		RequestedDate:         a.RequestedDate,
		Status:                string(a.Status),
		Reason:                a.Reason,
		ApprovedBy:            a.ApprovedBy,
		ApprovalDate:          a.ApprovalDate,
		RejectionReason:       a.RejectionReason,
		ExpectedRepaymentDate: a.ExpectedRepaymentDate,
		Version:               a.Version,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func mapModelToDomain(m *AdvanceRequest) *advance.AdvanceRequest {
	return &advance.AdvanceRequest{
		ID:                    m.ID,
		EmployeeID:            m.EmployeeID,
		Amount:                m.Amount,
		RequestedDate:         m.RequestedDate,
		Status:                advance.Status(m.Status),
		Reason:                m.Reason,
		ApprovedBy:            m.ApprovedBy,
		ApprovalDate:          m.ApprovalDate,
		RejectionReason:       m.RejectionReason,
		ExpectedRepaymentDate: m.ExpectedRepaymentDate,
		Version:               m.Version,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}
