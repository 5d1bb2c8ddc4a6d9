package disbursement

import (
	"testing"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() Params {
	return Params{
		AdvanceRequestID: 1,
		EmployeeID:       7,
		Amount:           decimal.RequireFromString("100.00"),
		PaymentMethod:    payment.DefaultMethod,
	}
}

func TestNewTotals(t *testing.T) {
	t.Run("fee defaults to zero", func(t *testing.T) {
		d, err := New(validParams())
		require.NoError(t, err)
		assert.True(t, d.FeeAmount.IsZero())
		assert.True(t, d.TotalRepaymentAmount.Equal(d.Amount))
		assert.Equal(t, payment.StatusPending, d.Status)
	})

	t.Run("total is amount plus fee", func(t *testing.T) {
		p := validParams()
		p.FeeAmount = FeeFor(p.Amount, decimal.RequireFromString("0.02"))
		d, err := New(p)
		require.NoError(t, err)
		assert.Equal(t, "2.00", d.FeeAmount.StringFixed(2))
		assert.Equal(t, "102.00", d.TotalRepaymentAmount.StringFixed(2))
		assert.True(t, d.TotalRepaymentAmount.Equal(d.Amount.Add(d.FeeAmount)))
	})
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		want   error
	}{
		{"no advance", func(p *Params) { p.AdvanceRequestID = 0 }, ErrAdvanceRequestRequired},
		{"no employee", func(p *Params) { p.EmployeeID = 0 }, ErrEmployeeRequired},
		{"zero amount", func(p *Params) { p.Amount = decimal.Zero }, ErrInvalidAmount},
		{"fraction of a cent", func(p *Params) { p.Amount = decimal.RequireFromString("100.005") }, ErrInvalidAmount},
		{"negative fee", func(p *Params) { p.FeeAmount = decimal.NewFromInt(-1) }, ErrNegativeFee},
		{"fee with fraction of a cent", func(p *Params) { p.FeeAmount = decimal.RequireFromString("2.001") }, ErrInvalidFee},
		{"no method", func(p *Params) { p.PaymentMethod = " " }, ErrPaymentMethodRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := New(p)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestFeeFor(t *testing.T) {
	rate := decimal.RequireFromString("0.02")
	assert.Equal(t, "2.00", FeeFor(decimal.RequireFromString("100"), rate).StringFixed(2))
	assert.Equal(t, "0.25", FeeFor(decimal.RequireFromString("12.34"), rate).StringFixed(2))
	assert.Equal(t, "0.00", FeeFor(decimal.Zero, rate).StringFixed(2))
}

func TestLifecycle(t *testing.T) {
	d, err := New(validParams())
	require.NoError(t, err)
	d.ID = 5
	at := time.Now().UTC()

	err = d.Complete("ref", at)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	require.NoError(t, d.MoveTo(payment.StatusProcessing, "", at))
	require.NoError(t, d.Complete("TXN-1", at))
	assert.Equal(t, payment.StatusCompleted, d.Status)
	assert.Equal(t, "TXN-1", d.TransactionReference)
	require.NotNil(t, d.DisbursementDate)

	err = d.MoveTo(payment.StatusFailed, "late", at)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Equal(t, payment.StatusCompleted, d.Status)
}

func TestFail(t *testing.T) {
	d, err := New(validParams())
	require.NoError(t, err)
	require.NoError(t, d.MoveTo(payment.StatusProcessing, "", time.Now()))
	require.NoError(t, d.MoveTo(payment.StatusFailed, "gateway down", time.Now()))
	assert.Equal(t, "gateway down", d.FailureReason)
	assert.Empty(t, d.TransactionReference)
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, events.EventTypeDisbursementCreated, EventTypeFor(payment.StatusPending))
	assert.Equal(t, events.EventTypeDisbursementUpdated, EventTypeFor(payment.StatusProcessing))
	assert.Equal(t, events.EventTypeDisbursementCompleted, EventTypeFor(payment.StatusCompleted))
	assert.Equal(t, events.EventTypeDisbursementFailed, EventTypeFor(payment.StatusFailed))
}
