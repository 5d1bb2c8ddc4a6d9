package advance

import (
	"context"

	"github.com/amirasaad/payadvance/pkg/domain/advance"
)

// Repository defines data access for advance requests.
type Repository interface {
	// Create inserts a new request and sets its ID and Version.
	Create(ctx context.Context, a *advance.AdvanceRequest) error

	// Get retrieves a request by ID.
	Get(ctx context.Context, id uint) (*advance.AdvanceRequest, error)

	// Update persists a request if its stored version still equals a.Version,
	// then bumps a.Version. A stale version yields domain.ErrConcurrentUpdate.
	Update(ctx context.Context, a *advance.AdvanceRequest) error

	// ListByEmployee returns an employee's requests, newest first.
	ListByEmployee(ctx context.Context, employeeID uint) ([]*advance.AdvanceRequest, error)

	// ListByStatus returns requests in a status, newest first.
	ListByStatus(ctx context.Context, status advance.Status) ([]*advance.AdvanceRequest, error)

	// HasOutstanding reports whether the employee has a PENDING or APPROVED request.
	HasOutstanding(ctx context.Context, employeeID uint) (bool, error)
}
