package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payloads are not versioned independently of the topic registry. A breaking
// change here needs the producer and every consumer deployed together.

// AdvanceRequestPayload is carried by ADVANCE_REQUEST_* events.
type AdvanceRequestPayload struct {
	ID                    uint            `json:"id"`
	EmployeeID            uint            `json:"employeeId"`
	Amount                decimal.Decimal `json:"amount"`
	Status                string          `json:"status"`
	Reason                string          `json:"reason"`
	RequestedDate         time.Time       `json:"requestedDate"`
	ApprovedBy            *uint           `json:"approvedBy,omitempty"`
	ApprovalDate          *time.Time      `json:"approvalDate,omitempty"`
	RejectionReason       string          `json:"rejectionReason,omitempty"`
	ExpectedRepaymentDate *time.Time      `json:"expectedRepaymentDate,omitempty"`
}

// DisbursementPayload is carried by DISBURSEMENT_* events.
type DisbursementPayload struct {
	ID                    uint            `json:"id"`
	AdvanceRequestID      uint            `json:"advanceRequestId"`
	EmployeeID            uint            `json:"employeeId"`
	Amount                decimal.Decimal `json:"amount"`
	FeeAmount             decimal.Decimal `json:"feeAmount"`
	TotalRepaymentAmount  decimal.Decimal `json:"totalRepaymentAmount"`
	Status                string          `json:"status"`
	PaymentMethod         string          `json:"paymentMethod"`
	TransactionReference  string          `json:"transactionReference,omitempty"`
	ExpectedRepaymentDate *time.Time      `json:"expectedRepaymentDate,omitempty"`
	FailureReason         string          `json:"failureReason,omitempty"`
}

// RepaymentPayload is carried by REPAYMENT_* events.
type RepaymentPayload struct {
	ID                   uint            `json:"id"`
	DisbursementID       uint            `json:"disbursementId"`
	EmployeeID           uint            `json:"employeeId"`
	Amount               decimal.Decimal `json:"amount"`
	Status               string          `json:"status"`
	PaymentMethod        string          `json:"paymentMethod"`
	PaymentDate          time.Time       `json:"paymentDate"`
	TransactionReference string          `json:"transactionReference,omitempty"`
	FailureReason        string          `json:"failureReason,omitempty"`
}

// UserPayload is carried by USER_* events.
type UserPayload struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	KycStatus string `json:"kycStatus"`
}

// EmployeeProfilePayload is carried by EMPLOYEE_PROFILE_* events.
type EmployeeProfilePayload struct {
	ID               uint            `json:"id"`
	UserID           uint            `json:"userId"`
	EmployerID       uint            `json:"employerId"`
	EmployeeIDNumber string          `json:"employeeIdNumber"`
	MonthlySalary    decimal.Decimal `json:"monthlySalary"`
	SalaryCurrency   string          `json:"salaryCurrency"`
	PayCycle         string          `json:"payCycle"`
}

// EmployerProfilePayload is carried by EMPLOYER_PROFILE_* events.
type EmployerProfilePayload struct {
	ID                       uint   `json:"id"`
	UserID                   uint   `json:"userId"`
	CompanyName              string `json:"companyName"`
	MaxAdvancePercent        int    `json:"maxAdvancePercent"`
	ApprovalWorkflowRequired bool   `json:"approvalWorkflowRequired"`
}

// NotificationPayload is carried by NOTIFICATION_* events.
type NotificationPayload struct {
	RecipientID   uint      `json:"recipientId"`
	Channel       string    `json:"channel"`
	Subject       string    `json:"subject"`
	Message       string    `json:"message"`
	SourceEventID uuid.UUID `json:"sourceEventId"`
}
