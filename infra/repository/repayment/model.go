package repayment

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/amirasaad/payadvance/pkg/domain/repayment"
	"github.com/shopspring/decimal"
)

// Repayment represents a repayments row.
type Repayment struct {
	ID                   uint            `gorm:"primaryKey"`
	DisbursementID       uint            `gorm:"not null;index"`
	EmployeeID           uint            `gorm:"not null;index"`
	Amount               decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status               string          `gorm:"size:20;not null;index"`
	PaymentMethod        string          `gorm:"size:50;not null"`
	PaymentDate          time.Time       `gorm:"not null"`
	TransactionReference string          `gorm:"size:100"`
	FailureReason        string          `gorm:"size:500"`
	Version              int             `gorm:"not null;default:1"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName specifies the table name for the Repayment model.
func (Repayment) TableName() string {
	return "repayments"
}

func mapDomainToModel(r *repayment.Repayment) *Repayment {
	return &Repayment{
		ID:                   r.ID,
		DisbursementID:       r.DisbursementID,
		EmployeeID:           r.EmployeeID,
		Amount:               r.Amount,
		Status:               string(r.Status),
		PaymentMethod:        r.PaymentMethod,
		PaymentDate:          r.PaymentDate,
		TransactionReference: r.TransactionReference,
		FailureReason:        r.FailureReason,
		Version:              r.Version,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func mapModelToDomain(m *Repayment) *repayment.Repayment {
	return &repayment.Repayment{
		ID:                   m.ID,
		DisbursementID:       m.DisbursementID,
		EmployeeID:           m.EmployeeID,
		Amount:               m.Amount,
		Status:               payment.Status(m.Status),
		PaymentMethod:        m.PaymentMethod,
		PaymentDate:          m.PaymentDate,
		TransactionReference: m.TransactionReference,
		FailureReason:        m.FailureReason,
		Version:              m.Version,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
