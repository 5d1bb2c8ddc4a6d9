// Package disbursement holds the Disbursement aggregate.
package disbursement

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when the amount is not positive or has
	// fractions of a cent.
	ErrInvalidAmount = fmt.Errorf("%w: disbursement amount must be positive with at most 2 decimals", domain.ErrValidation)
	// ErrNegativeFee is returned when the fee is below zero.
	ErrNegativeFee = fmt.Errorf("%w: fee amount cannot be negative", domain.ErrValidation)
	// ErrInvalidFee is returned when the fee has fractions of a cent.
	ErrInvalidFee = fmt.Errorf("%w: fee amount must have at most 2 decimals", domain.ErrValidation)
	// ErrAdvanceRequestRequired is returned when no advance request id is given.
	ErrAdvanceRequestRequired = fmt.Errorf("%w: advance request id is required", domain.ErrValidation)
	// ErrEmployeeRequired is returned when no employee id is given.
	ErrEmployeeRequired = fmt.Errorf("%w: employee id is required", domain.ErrValidation)
	// ErrPaymentMethodRequired is returned when no payment method is given.
	ErrPaymentMethodRequired = fmt.Errorf("%w: payment method is required", domain.ErrValidation)
)

// Disbursement is the payment that fulfils one approved advance request.
type Disbursement struct {
	ID                    uint
	AdvanceRequestID      uint
	EmployeeID            uint
	Amount                decimal.Decimal
	FeeAmount             decimal.Decimal
	TotalRepaymentAmount  decimal.Decimal
	Status                payment.Status
	PaymentMethod         string
	TransactionReference  string
	DisbursementDate      *time.Time
	ExpectedRepaymentDate *time.Time
	FailureReason         string
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Params are the inputs for a new disbursement. A zero FeeAmount means no fee.
type Params struct {
	AdvanceRequestID      uint
	EmployeeID            uint
	Amount                decimal.Decimal
	FeeAmount             decimal.Decimal
	PaymentMethod         string
	ExpectedRepaymentDate *time.Time
}

// New validates params and returns a PENDING disbursement. The total is
// fixed here and never recomputed.
func New(p Params) (*Disbursement, error) {
	if p.AdvanceRequestID == 0 {
		return nil, ErrAdvanceRequestRequired
	}
	if p.EmployeeID == 0 {
		return nil, ErrEmployeeRequired
	}
	if !p.Amount.IsPositive() || !domain.IsWholeCents(p.Amount) {
		return nil, ErrInvalidAmount
	}
	if p.FeeAmount.IsNegative() {
		return nil, ErrNegativeFee
	}
	if !domain.IsWholeCents(p.FeeAmount) {
		return nil, ErrInvalidFee
	}
	amount := p.Amount.Truncate(domain.CentPlaces)
	fee := p.FeeAmount.Truncate(domain.CentPlaces)
	method := strings.TrimSpace(p.PaymentMethod)
	if method == "" {
		return nil, ErrPaymentMethodRequired
	}
	now := time.Now().UTC()
	return &Disbursement{
		AdvanceRequestID:      p.AdvanceRequestID,
		EmployeeID:            p.EmployeeID,
		Amount:                amount,
		FeeAmount:             fee,
		TotalRepaymentAmount:  amount.Add(fee),
		Status:                payment.StatusPending,
		PaymentMethod:         method,
		ExpectedRepaymentDate: p.ExpectedRepaymentDate,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// FeeFor returns amount × rate rounded to cents.
func FeeFor(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

// MoveTo applies a forward status change. Completing stamps the
// disbursement date; failing records the reason.
func (d *Disbursement) MoveTo(to payment.Status, reason string, at time.Time) error {
	if err := payment.Check("disbursement", d.ID, d.Status, to); err != nil {
		return err
	}
	switch to {
	case payment.StatusCompleted:
		ts := at
		d.DisbursementDate = &ts
	case payment.StatusFailed:
		d.FailureReason = reason
	}
	d.Status = to
	d.UpdatedAt = at
	return nil
}

// Complete marks the disbursement paid with the gateway reference.
func (d *Disbursement) Complete(reference string, at time.Time) error {
	if err := d.MoveTo(payment.StatusCompleted, "", at); err != nil {
		return err
	}
	d.TransactionReference = reference
	return nil
}

// EventTypeFor maps the status just reached to its event.
func EventTypeFor(s payment.Status) events.EventType {
	switch s {
	case payment.StatusPending:
		return events.EventTypeDisbursementCreated
	case payment.StatusCompleted:
		return events.EventTypeDisbursementCompleted
	case payment.StatusFailed:
		return events.EventTypeDisbursementFailed
	default:
		return events.EventTypeDisbursementUpdated
	}
}

// Payload builds the event payload for the current state.
func (d *Disbursement) Payload() events.DisbursementPayload {
	return events.DisbursementPayload{
		ID:                    d.ID,
		AdvanceRequestID:      d.AdvanceRequestID,
		EmployeeID:            d.EmployeeID,
		Amount:                d.Amount,
		FeeAmount:             d.FeeAmount,
		TotalRepaymentAmount:  d.TotalRepaymentAmount,
		Status:                string(d.Status),
		PaymentMethod:         d.PaymentMethod,
		TransactionReference:  d.TransactionReference,
		ExpectedRepaymentDate: d.ExpectedRepaymentDate,
		FailureReason:         d.FailureReason,
	}
}
