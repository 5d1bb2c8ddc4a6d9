package advance

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/service/eligibility"
	"github.com/shopspring/decimal"
)

// SubmitInput is the body of POST /api/advance-requests.
type SubmitInput struct {
	EmployeeID            uint            `json:"employeeId" validate:"required"`
	Amount                decimal.Decimal `json:"amount" swaggertype:"string" example:"100.00"`
	Reason                string          `json:"reason" validate:"required,max=500"`
	ExpectedRepaymentDate *time.Time      `json:"expectedRepaymentDate,omitempty"`
}

// StatusInput is the body of PATCH /api/advance-requests/:id/status.
type StatusInput struct {
	Status          string `json:"status" validate:"required"`
	ApprovedBy      *uint  `json:"approvedBy,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty" validate:"max=500"`
}

// AdvanceRequestDTO is the API view of an advance request.
type AdvanceRequestDTO struct {
	ID                    uint       `json:"id"`
	EmployeeID            uint       `json:"employeeId"`
	Amount                string     `json:"amount"`
	RequestedDate         time.Time  `json:"requestedDate"`
	Status                string     `json:"status"`
	Reason                string     `json:"reason"`
	ApprovedBy            *uint      `json:"approvedBy,omitempty"`
	ApprovalDate          *time.Time `json:"approvalDate,omitempty"`
	RejectionReason       string     `json:"rejectionReason,omitempty"`
	ExpectedRepaymentDate *time.Time `json:"expectedRepaymentDate,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// EligibilityDTO is the API view of an eligibility evaluation.
type EligibilityDTO struct {
	EmployeeID      uint   `json:"employeeId"`
	Eligible        bool   `json:"eligible"`
	RequestedAmount string `json:"requestedAmount"`
	MaxAmount       string `json:"maxEligibleAmount"`
	Reason          string `json:"reason,omitempty"`
}

func toDTO(a *advance.AdvanceRequest) AdvanceRequestDTO {
	return AdvanceRequestDTO{
		ID:                    a.ID,
		EmployeeID:            a.EmployeeID,
		Amount:                a.Amount.StringFixed(2),
		RequestedDate:         a.RequestedDate,
		Status:                string(a.Status),
		Reason:                a.Reason,
		ApprovedBy:            a.ApprovedBy,
		ApprovalDate:          a.ApprovalDate,
		RejectionReason:       a.RejectionReason,
		ExpectedRepaymentDate: a.ExpectedRepaymentDate,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func toDTOs(list []*advance.AdvanceRequest) []AdvanceRequestDTO {
	out := make([]AdvanceRequestDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toDTO(a))
	}
	return out
}

func toEligibilityDTO(r eligibility.Result) EligibilityDTO {
	return EligibilityDTO{
		EmployeeID:      r.EmployeeID,
		Eligible:        r.Eligible,
		RequestedAmount: r.RequestedAmount.StringFixed(2),
		MaxAmount:       r.MaxAmount.StringFixed(2),
		Reason:          r.Reason,
	}
}
