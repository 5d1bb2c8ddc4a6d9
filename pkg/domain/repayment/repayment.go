// Package repayment holds the Repayment aggregate.
package repayment

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
	ErrInvalidAmount = fmt.Errorf("%w: repayment amount must be positive with at most 2 decimals", domain.ErrValidation)
	// ErrDisbursementRequired is returned when no disbursement id is given.
	ErrDisbursementRequired = fmt.Errorf("%w: disbursement id is required", domain.ErrValidation)
	// ErrEmployeeRequired is returned when no employee id is given.
	ErrEmployeeRequired = fmt.Errorf("%w: employee id is required", domain.ErrValidation)
	// ErrPaymentMethodRequired is returned when no payment method is given.
	ErrPaymentMethodRequired = fmt.Errorf("%w: payment method is required", domain.ErrValidation)
)

// Repayment is one instalment paying back a disbursement.
type Repayment struct {
	ID                   uint
	DisbursementID       uint
	EmployeeID           uint
	Amount               decimal.Decimal
	Status               payment.Status
	PaymentMethod        string
	PaymentDate          time.Time
	TransactionReference string
	FailureReason        string
	Version              int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Params are the inputs for a new repayment. A zero PaymentDate means now.
type Params struct {
	DisbursementID uint
	EmployeeID     uint
	Amount         decimal.Decimal
	PaymentMethod  string
	PaymentDate    time.Time
}

// New validates params and returns a PENDING repayment.
func New(p Params) (*Repayment, error) {
	if p.DisbursementID == 0 {
		return nil, ErrDisbursementRequired
	}
	if p.EmployeeID == 0 {
		return nil, ErrEmployeeRequired
	}
	if !p.Amount.IsPositive() || !domain.IsWholeCents(p.Amount) {
		return nil, ErrInvalidAmount
	}
	method := strings.TrimSpace(p.PaymentMethod)
	if method == "" {
		return nil, ErrPaymentMethodRequired
	}
	now := time.Now().UTC()
	paymentDate := p.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}
	return &Repayment{
		DisbursementID: p.DisbursementID,
		EmployeeID:     p.EmployeeID,
		Amount:         p.Amount.Truncate(domain.CentPlaces),
		Status:         payment.StatusPending,
		PaymentMethod:  method,
		PaymentDate:    paymentDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// MoveTo applies a forward status change.
func (r *Repayment) MoveTo(to payment.Status, reason string, at time.Time) error {
	if err := payment.Check("repayment", r.ID, r.Status, to); err != nil {
		return err
	}
	if to == payment.StatusFailed {
		r.FailureReason = reason
	}
	r.Status = to
	r.UpdatedAt = at
	return nil
}

// Complete marks the repayment collected with the gateway reference.
func (r *Repayment) Complete(reference string, at time.Time) error {
	if err := r.MoveTo(payment.StatusCompleted, "", at); err != nil {
		return err
	}
	r.TransactionReference = reference
	r.PaymentDate = at
	return nil
}

// EventTypeFor maps the status just reached to its event.
func EventTypeFor(s payment.Status) events.EventType {
	switch s {
	case payment.StatusPending:
		return events.EventTypeRepaymentCreated
	case payment.StatusCompleted:
		return events.EventTypeRepaymentCompleted
	case payment.StatusFailed:
		return events.EventTypeRepaymentFailed
	default:
		return events.EventTypeRepaymentUpdated
	}
}

// Payload builds the event payload for the current state.
func (r *Repayment) Payload() events.RepaymentPayload {
	return events.RepaymentPayload{
		ID:                   r.ID,
		DisbursementID:       r.DisbursementID,
		EmployeeID:           r.EmployeeID,
		Amount:               r.Amount,
		Status:               string(r.Status),
		PaymentMethod:        r.PaymentMethod,
		PaymentDate:          r.PaymentDate,
		TransactionReference: r.TransactionReference,
		FailureReason:        r.FailureReason,
	}
}
