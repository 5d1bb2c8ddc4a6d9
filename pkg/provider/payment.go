package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentKind distinguishes money leaving from money coming back.
type PaymentKind string

const (
	PaymentDisbursement PaymentKind = "DISBURSEMENT"
	PaymentRepayment    PaymentKind = "REPAYMENT"
)

// PaymentRequest describes one transfer to execute.
type PaymentRequest struct {
	Kind       PaymentKind
	EntityID   uint
	EmployeeID uint
	Amount     decimal.Decimal
	Method     string
}

// PaymentResult is the gateway's receipt.
type PaymentResult struct {
	TransactionReference string
}

// PaymentGateway moves money. A returned error means the transfer failed.
type PaymentGateway interface {
	Execute(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}
