package user

import (
	"context"

	"github.com/amirasaad/payadvance/pkg/domain/user"
)

// Repository defines the interface for user data access operations.
type Repository interface {
	// Create inserts a new user. A taken email yields domain.ErrAlreadyExists.
	Create(ctx context.Context, u *user.User) error

	// Get retrieves a user by its ID.
	Get(ctx context.Context, id uint) (*user.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*user.User, error)

	// Update saves profile fields and KYC status.
	Update(ctx context.Context, u *user.User) error

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// EmployeeProfileRepository defines data access for employee profiles.
type EmployeeProfileRepository interface {
	// Create inserts a profile. One profile per user.
	Create(ctx context.Context, p *user.EmployeeProfile) error

	// GetByUserID retrieves the profile of a user.
	GetByUserID(ctx context.Context, userID uint) (*user.EmployeeProfile, error)

	// Update saves the profile.
	Update(ctx context.Context, p *user.EmployeeProfile) error

	// ListByEmployer returns the profiles of an employer's employees.
	ListByEmployer(ctx context.Context, employerID uint) ([]*user.EmployeeProfile, error)
}

// EmployerProfileRepository defines data access for employer profiles.
type EmployerProfileRepository interface {
	Create(ctx context.Context, p *user.EmployerProfile) error
	GetByUserID(ctx context.Context, userID uint) (*user.EmployerProfile, error)
	Update(ctx context.Context, p *user.EmployerProfile) error
}
