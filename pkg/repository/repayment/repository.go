package repayment

import (
	"context"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/amirasaad/payadvance/pkg/domain/repayment"
)

// Repository defines data access for repayments.
type Repository interface {
	Create(ctx context.Context, r *repayment.Repayment) error
	Get(ctx context.Context, id uint) (*repayment.Repayment, error)
	ListByDisbursement(ctx context.Context, disbursementID uint) ([]*repayment.Repayment, error)
	ListByEmployee(ctx context.Context, employeeID uint) ([]*repayment.Repayment, error)
	// Update is a compare-and-swap on Version.
	Update(ctx context.Context, r *repayment.Repayment) error
	ListStale(ctx context.Context, status payment.Status, before time.Time, limit int) ([]*repayment.Repayment, error)
}
