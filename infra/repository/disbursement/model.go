package disbursement

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/disbursement"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/shopspring/decimal"
)

// Disbursement represents a disbursements row. One row per advance request.
type Disbursement struct {
	ID                    uint            `gorm:"primaryKey"`
	AdvanceRequestID      uint            `gorm:"not null;uniqueIndex:uniq_disbursements_advance_request_id"`
	EmployeeID            uint            `gorm:"not null;index"`
	Amount                decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	FeeAmount             decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalRepaymentAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status                string          `gorm:"size:20;not null;index"`
	PaymentMethod         string          `gorm:"size:50;not null"`
	TransactionReference  string          `gorm:"size:100"`
	DisbursementDate      *time.Time
	ExpectedRepaymentDate *time.Time
	FailureReason         string `gorm:"size:500"`
	Version               int    `gorm:"not null;default:1"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName specifies the table name for the Disbursement model.
func (Disbursement) TableName() string {
	return "disbursements"
}

func mapDomainToModel(d *disbursement.Disbursement) *Disbursement {
	return &Disbursement{
		ID:                    d.ID,
		AdvanceRequestID:      d.AdvanceRequestID,
		EmployeeID:            d.EmployeeID,
		Amount:                d.Amount,
		FeeAmount:             d.FeeAmount,
		TotalRepaymentAmount:  d.TotalRepaymentAmount,
		Status:                string(d.Status),
		PaymentMethod:         d.PaymentMethod,
		TransactionReference:  d.TransactionReference,
		DisbursementDate:      d.DisbursementDate,
		ExpectedRepaymentDate: d.ExpectedRepaymentDate,
		FailureReason:         d.FailureReason,
		Version:               d.Version,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func mapModelToDomain(m *Disbursement) *disbursement.Disbursement {
	return &disbursement.Disbursement{
		ID:                    m.ID,
		AdvanceRequestID:      m.AdvanceRequestID,
		EmployeeID:            m.EmployeeID,
		Amount:                m.Amount,
		FeeAmount:             m.FeeAmount,
		TotalRepaymentAmount:  m.TotalRepaymentAmount,
		Status:                payment.Status(m.Status),
		PaymentMethod:         m.PaymentMethod,
		TransactionReference:  m.TransactionReference,
		DisbursementDate:      m.DisbursementDate,
		ExpectedRepaymentDate: m.ExpectedRepaymentDate,
		FailureReason:         m.FailureReason,
		Version:               m.Version,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func mapModelsToDomain(models []Disbursement) []*disbursement.Disbursement {
	out := make([]*disbursement.Disbursement, 0, len(models))
	for i := range models {
		out = append(out, mapModelToDomain(&models[i]))
	}
	return out
}
