// Package advance holds the AdvanceRequest aggregate and its status machine.
package advance

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when the requested amount is below one cent
	// or has fractions of a cent.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be at least 0.01 with at most 2 decimals", domain.ErrValidation)
	// ErrEmployeeRequired is returned when no employee id is given.
	ErrEmployeeRequired = fmt.Errorf("%w: employee id is required", domain.ErrValidation)
	// ErrReasonRequired is returned when the request has no reason.
	ErrReasonRequired = fmt.Errorf("%w: reason is required", domain.ErrValidation)
	// ErrApproverRequired is returned when approving without an approver.
	ErrApproverRequired = fmt.Errorf("%w: approvedBy is required to approve", domain.ErrValidation)
	// ErrRejectionReasonRequired is returned when rejecting without a reason.
	ErrRejectionReasonRequired = fmt.Errorf("%w: rejectionReason is required to reject", domain.ErrValidation)
	// ErrInvalidStatus is returned for an unknown status string.
	ErrInvalidStatus = fmt.Errorf("%w: unknown advance request status", domain.ErrValidation)
)

// MinAmount is the smallest amount an employee can request.
var MinAmount = decimal.New(1, -2)

// Status of an advance request.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusDisbursed Status = "DISBURSED"
)

// transitions lists the only legal forward moves. Anything else is rejected.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusDisbursed},
}

// ParseStatus converts a string (case-insensitive) to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected, StatusDisbursed:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// EventTypeFor maps the status just reached to the event that announces it.
func EventTypeFor(s Status) events.EventType {
	switch s {
	case StatusApproved:
		return events.EventTypeAdvanceRequestApproved
	case StatusRejected:
		return events.EventTypeAdvanceRequestRejected
	default:
		return events.EventTypeAdvanceRequestUpdated
	}
}

// AdvanceRequest is an employee's request to receive part of earned salary early.
//
// Invariants:
//   - Amount is at least MinAmount.
//   - Amount has at most 2 decimals.
//   - ApprovedBy and ApprovalDate are set once approved and kept through DISBURSED
//     or a failed payout.
//   - RejectionReason is set only when REJECTED.
type AdvanceRequest struct {
	ID                    uint
	EmployeeID            uint
	Amount                decimal.Decimal
	RequestedDate         time.Time
	Status                Status
	Reason                string
	ApprovedBy            *uint
	ApprovalDate          *time.Time
	RejectionReason       string
	ExpectedRepaymentDate *time.Time
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// New validates input and returns a PENDING request stamped with the current time.
func New(
	employeeID uint,
	amount decimal.Decimal,
	reason string,
	expectedRepaymentDate *time.Time,
) (*AdvanceRequest, error) {
	if employeeID == 0 {
		return nil, ErrEmployeeRequired
	}
	if amount.LessThan(MinAmount) || !domain.IsWholeCents(amount) {
		return nil, ErrInvalidAmount
	}
	amount = amount.Truncate(domain.CentPlaces)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	now := time.Now().UTC()
	return &AdvanceRequest{
		EmployeeID:            employeeID,
		Amount:                amount,
		RequestedDate:         now,
		Status:                StatusPending,
		Reason:                reason,
		ExpectedRepaymentDate: expectedRepaymentDate,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// StatusChange is a requested status update.
type StatusChange struct {
	Status          Status
	ApprovedBy      *uint
	RejectionReason string
}

// Transition applies the change if the status table allows it.
func (a *AdvanceRequest) Transition(change StatusChange, at time.Time) error {
	if !CanTransition(a.Status, change.Status) {
		return fmt.Errorf("%w: advance request %d from %s to %s",
			domain.ErrIllegalTransition, a.ID, a.Status, change.Status)
	}
	switch change.Status {
	case StatusApproved:
		if change.ApprovedBy == nil || *change.ApprovedBy == 0 {
			return ErrApproverRequired
		}
		approver := *change.ApprovedBy
		approvedAt := at
		a.ApprovedBy = &approver
		a.ApprovalDate = &approvedAt
	case StatusRejected:
		reason := strings.TrimSpace(change.RejectionReason)
		if reason == "" {
			return ErrRejectionReasonRequired
		}
		a.RejectionReason = reason
	}
	a.Status = change.Status
	a.UpdatedAt = at
	return nil
}

// DisbursementFailedReason prefixes the rejection reason of an advance whose
// payout failed.
const DisbursementFailedReason = "disbursement failed"

// MaxRejectionReasonLength is the longest rejection reason kept, in characters.
const MaxRejectionReasonLength = 500

// FailPayout closes an APPROVED request whose disbursement failed. The request
// becomes REJECTED so the employee may apply again; approver and approval date
// are kept for the record. This is the only way out of APPROVED besides DISBURSED.
func (a *AdvanceRequest) FailPayout(detail string, at time.Time) error {
	if a.Status != StatusApproved {
		return fmt.Errorf("%w: advance request %d from %s to %s",
			domain.ErrIllegalTransition, a.ID, a.Status, StatusRejected)
	}
	reason := DisbursementFailedReason
	if detail = strings.TrimSpace(detail); detail != "" {
		reason += ": " + detail
	}
	if r := []rune(reason); len(r) > MaxRejectionReasonLength {
		reason = string(r[:MaxRejectionReasonLength])
	}
	a.Status = StatusRejected
	a.RejectionReason = reason
	a.UpdatedAt = at
	return nil
}

// IsOutstanding reports whether the request still blocks a new one.
func (a *AdvanceRequest) IsOutstanding() bool {
	return a.Status == StatusPending || a.Status == StatusApproved
}

// Payload builds the event payload for the current state.
func (a *AdvanceRequest) Payload() events.AdvanceRequestPayload {
	return events.AdvanceRequestPayload{
		ID:                    a.ID,
		EmployeeID:            a.EmployeeID,
		Amount:                a.Amount,
		Status:                string(a.Status),
		Reason:                a.Reason,
		RequestedDate:         a.RequestedDate,
		ApprovedBy:            a.ApprovedBy,
		ApprovalDate:          a.ApprovalDate,
		RejectionReason:       a.RejectionReason,
		ExpectedRepaymentDate: a.ExpectedRepaymentDate,
	}
}
