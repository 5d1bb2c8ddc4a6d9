package disbursement

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/disbursement"
	"github.com/shopspring/decimal"
)

// CreateInput is the body of POST /api/disbursements.
type CreateInput struct {
	AdvanceRequestID      uint             `json:"advanceRequestId" validate:"required"`
	EmployeeID            uint             `json:"employeeId" validate:"required"`
	Amount                decimal.Decimal  `json:"amount" swaggertype:"string" example:"100.00"`
	FeeAmount             *decimal.Decimal `json:"feeAmount,omitempty" swaggertype:"string" example:"2.00"`
	PaymentMethod         string           `json:"paymentMethod" validate:"max=50"`
	ExpectedRepaymentDate *time.Time       `json:"expectedRepaymentDate,omitempty"`
}

// StatusInput is the body of PATCH /api/disbursements/:id/status.
type StatusInput struct {
	Status        string `json:"status" validate:"required"`
	FailureReason string `json:"failureReason,omitempty" validate:"max=500"`
}

// DisbursementDTO is the API view of a disbursement.
type DisbursementDTO struct {
	ID                    uint       `json:"id"`
	AdvanceRequestID      uint       `json:"advanceRequestId"`
	EmployeeID            uint       `json:"employeeId"`
	Amount                string     `json:"amount"`
	FeeAmount             string     `json:"feeAmount"`
	TotalRepaymentAmount  string     `json:"totalRepaymentAmount"`
	Status                string     `json:"status"`
	PaymentMethod         string     `json:"paymentMethod"`
	TransactionReference  string     `json:"transactionReference,omitempty"`
	DisbursementDate      *time.Time `json:"disbursementDate,omitempty"`
	ExpectedRepaymentDate *time.Time `json:"expectedRepaymentDate,omitempty"`
	FailureReason         string     `json:"failureReason,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func toDTO(d *disbursement.Disbursement) DisbursementDTO {
	return DisbursementDTO{
		ID:                    d.ID,
		AdvanceRequestID:      d.AdvanceRequestID,
		EmployeeID:            d.EmployeeID,
		Amount:                d.Amount.StringFixed(2),
		FeeAmount:             d.FeeAmount.StringFixed(2),
		TotalRepaymentAmount:  d.TotalRepaymentAmount.StringFixed(2),
		Status:                string(d.Status),
		PaymentMethod:         d.PaymentMethod,
		TransactionReference:  d.TransactionReference,
		DisbursementDate:      d.DisbursementDate,
		ExpectedRepaymentDate: d.ExpectedRepaymentDate,
		FailureReason:         d.FailureReason,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func toDTOs(list []*disbursement.Disbursement) []DisbursementDTO {
	out := make([]DisbursementDTO, 0, len(list))
	for _, d := range list {
		out = append(out, toDTO(d))
	}
	return out
}
