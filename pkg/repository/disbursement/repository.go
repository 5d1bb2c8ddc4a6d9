package disbursement

import (
	"context"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/disbursement"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
)

// Repository defines data access for disbursements.
type Repository interface {
	// Create inserts a disbursement. A second disbursement for the same
	// advance request yields domain.ErrAlreadyExists.
	Create(ctx context.Context, d *disbursement.Disbursement) error

	// Get retrieves a disbursement by ID.
	Get(ctx context.Context, id uint) (*disbursement.Disbursement, error)

	// GetByAdvanceRequest retrieves the disbursement of an advance request.
	GetByAdvanceRequest(ctx context.Context, advanceRequestID uint) (*disbursement.Disbursement, error)

	// ListByEmployee returns an employee's disbursements, newest first.
	ListByEmployee(ctx context.Context, employeeID uint) ([]*disbursement.Disbursement, error)

	// Update is a compare-and-swap on Version, see advance.Repository.Update.
	Update(ctx context.Context, d *disbursement.Disbursement) error

	// ListStale returns disbursements in status that were last touched before the cutoff.
	ListStale(ctx context.Context, status payment.Status, before time.Time, limit int) ([]*disbursement.Disbursement, error)
}
