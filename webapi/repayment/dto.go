package repayment

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/repayment"
	"github.com/shopspring/decimal"
)

// CreateInput is the body of POST /api/repayments. A zero employeeId is
// taken from the disbursement.
type CreateInput struct {
	DisbursementID uint            `json:"disbursementId" validate:"required"`
	EmployeeID     uint            `json:"employeeId"`
	Amount         decimal.Decimal `json:"amount" swaggertype:"string" example:"51.00"`
	PaymentMethod  string          `json:"paymentMethod" validate:"max=50"`
	PaymentDate    time.Time       `json:"paymentDate"`
}

// StatusInput is the body of PATCH /api/repayments/:id/status.
type StatusInput struct {
	Status        string `json:"status" validate:"required"`
	FailureReason string `json:"failureReason,omitempty" validate:"max=500"`
}

// RepaymentDTO is the API view of a repayment.
type RepaymentDTO struct {
	ID                   uint      `json:"id"`
	DisbursementID       uint      `json:"disbursementId"`
	EmployeeID           uint      `json:"employeeId"`
	Amount               string    `json:"amount"`
	Status               string    `json:"status"`
	PaymentMethod        string    `json:"paymentMethod"`
	PaymentDate          time.Time `json:"paymentDate"`
	TransactionReference string    `json:"transactionReference,omitempty"`
	FailureReason        string    `json:"failureReason,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func toDTO(r *repayment.Repayment) RepaymentDTO {
	return RepaymentDTO{
		ID:                   r.ID,
		DisbursementID:       r.DisbursementID,
		EmployeeID:           r.EmployeeID,
		Amount:               r.Amount.StringFixed(2),
		Status:               string(r.Status),
		PaymentMethod:        r.PaymentMethod,
		PaymentDate:          r.PaymentDate,
		TransactionReference: r.TransactionReference,
		FailureReason:        r.FailureReason,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func toDTOs(list []*repayment.Repayment) []RepaymentDTO {
	out := make([]RepaymentDTO, 0, len(list))
	for _, r := range list {
		out = append(out, toDTO(r))
	}
	return out
}
