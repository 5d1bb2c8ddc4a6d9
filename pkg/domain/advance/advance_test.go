package advance

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	before := time.Now().UTC()
	a, err := New(7, decimal.RequireFromString("100.00"), "rent", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, uint(7), a.EmployeeID)
	assert.False(t, a.RequestedDate.Before(before))
	assert.False(t, a.RequestedDate.After(time.Now().UTC()))
	assert.Nil(t, a.ApprovedBy)
	assert.Nil(t, a.ApprovalDate)
	assert.Empty(t, a.RejectionReason)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name       string
		employeeID uint
		amount     string
		reason     string
		want       error
	}{
		{"missing employee", 0, "10", "rent", ErrEmployeeRequired},
		{"zero amount", 7, "0", "rent", ErrInvalidAmount},
		{"below a cent", 7, "0.009", "rent", ErrInvalidAmount},
		{"negative", 7, "-5", "rent", ErrInvalidAmount},
		{"fraction of a cent", 7, "100.005", "rent", ErrInvalidAmount},
		{"blank reason", 7, "10", "   ", ErrReasonRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.employeeID, decimal.RequireFromString(tt.amount), tt.reason, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	a, err := New(7, MinAmount, "smallest", nil)
	require.NoError(t, err)
	assert.True(t, a.Amount.Equal(decimal.RequireFromString("0.01")))
}

func TestCanTransition(t *testing.T) {
	legal := map[[2]Status]bool{
		{StatusPending, StatusApproved}:   true,
		{StatusPending, StatusRejected}:   true,
		{StatusApproved, StatusDisbursed}: true,
	}
	all := []Status{StatusPending, StatusApproved, StatusRejected, StatusDisbursed}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionApprove(t *testing.T) {
	a, err := New(7, decimal.NewFromInt(100), "rent", nil)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	err = a.Transition(StatusChange{Status: StatusApproved}, at)
	assert.ErrorIs(t, err, ErrApproverRequired)
	assert.Equal(t, StatusPending, a.Status)

	approver := uint(3)
	require.NoError(t, a.Transition(StatusChange{Status: StatusApproved, ApprovedBy: &approver}, at))
	assert.Equal(t, StatusApproved, a.Status)
	require.NotNil(t, a.ApprovedBy)
	assert.Equal(t, uint(3), *a.ApprovedBy)
	require.NotNil(t, a.ApprovalDate)
	assert.Equal(t, at, *a.ApprovalDate)

	require.NoError(t, a.Transition(StatusChange{Status: StatusDisbursed}, at.Add(time.Hour)))
	assert.Equal(t, StatusDisbursed, a.Status)
	assert.NotNil(t, a.ApprovedBy, "approval fields survive disbursement")

	err = a.Transition(StatusChange{Status: StatusApproved, ApprovedBy: &approver}, at)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestTransitionReject(t *testing.T) {
	a, err := New(7, decimal.NewFromInt(100), "rent", nil)
	require.NoError(t, err)

	err = a.Transition(StatusChange{Status: StatusRejected}, time.Now())
	assert.ErrorIs(t, err, ErrRejectionReasonRequired)

	require.NoError(t, a.Transition(StatusChange{Status: StatusRejected, RejectionReason: "over limit"}, time.Now()))
	assert.Equal(t, StatusRejected, a.Status)
	assert.Equal(t, "over limit", a.RejectionReason)
	assert.Nil(t, a.ApprovedBy)
	assert.False(t, a.IsOutstanding())

	err = a.Transition(StatusChange{Status: StatusPending}, time.Now())
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseStatus("CANCELLED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, events.EventTypeAdvanceRequestApproved, EventTypeFor(StatusApproved))
	assert.Equal(t, events.EventTypeAdvanceRequestRejected, EventTypeFor(StatusRejected))
	assert.Equal(t, events.EventTypeAdvanceRequestUpdated, EventTypeFor(StatusDisbursed))
	assert.Equal(t, events.EventTypeAdvanceRequestUpdated, EventTypeFor(StatusPending))
}

func TestNewKeepsTrailingZerosAtTwoDecimals(t *testing.T) {
	a, err := New(7, decimal.RequireFromString("100.500"), "rent", nil)
	require.NoError(t, err)
	assert.Equal(t, "100.5", a.Amount.String())
	assert.Equal(t, int32(-2), a.Amount.Exponent())
}

func TestFailPayout(t *testing.T) {
	a, err := New(7, decimal.RequireFromString("100.00"), "rent", nil)
	require.NoError(t, err)
	approver := uint(3)
	require.NoError(t, a.Transition(StatusChange{Status: StatusApproved, ApprovedBy: &approver}, time.Now()))

	require.NoError(t, a.FailPayout("card declined", time.Now()))
	assert.Equal(t, StatusRejected, a.Status)
	assert.Equal(t, "disbursement failed: card declined", a.RejectionReason)
	assert.False(t, a.IsOutstanding())
	require.NotNil(t, a.ApprovedBy)

	err = a.FailPayout("", time.Now())
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestFailPayoutCapsLongReasons(t *testing.T) {
	a, err := New(7, decimal.RequireFromString("100.00"), "rent", nil)
	require.NoError(t, err)
	approver := uint(3)
	require.NoError(t, a.Transition(StatusChange{Status: StatusApproved, ApprovedBy: &approver}, time.Now()))

	require.NoError(t, a.FailPayout(strings.Repeat("é", 2*MaxRejectionReasonLength), time.Now()))
	assert.Equal(t, MaxRejectionReasonLength, utf8.RuneCountInString(a.RejectionReason))
	assert.True(t, utf8.ValidString(a.RejectionReason))
	assert.True(t, strings.HasPrefix(a.RejectionReason, DisbursementFailedReason+": "))
}

func TestFailPayoutNeedsApproval(t *testing.T) {
	a, err := New(7, decimal.RequireFromString("100.00"), "rent", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, a.FailPayout("", time.Now()), domain.ErrIllegalTransition)
	assert.Equal(t, StatusPending, a.Status)
}
