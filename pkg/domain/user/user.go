package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/utils"
)

var (
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email", domain.ErrValidation)
	// ErrPasswordTooShort is returned when the password is under MinPasswordLength.
	ErrPasswordTooShort = fmt.Errorf("%w: password too short", domain.ErrValidation)
	// ErrNameRequired is returned when first or last name is missing.
	ErrNameRequired = fmt.Errorf("%w: first and last name are required", domain.ErrValidation)
	// ErrInvalidRole is returned for an unknown role.
	ErrInvalidRole = fmt.Errorf("%w: unknown role", domain.ErrValidation)
	// ErrInvalidKycStatus is returned for an unknown KYC status.
	ErrInvalidKycStatus = fmt.Errorf("%w: unknown kyc status", domain.ErrValidation)
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Role of a platform user.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleEmployer Role = "EMPLOYER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole converts a string (case-insensitive) to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleEmployee, RoleEmployer, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// KycStatus is the identity verification state.
type KycStatus string

const (
	KycPending    KycStatus = "PENDING"
	KycInProgress KycStatus = "IN_PROGRESS"
	KycVerified   KycStatus = "VERIFIED"
	KycRejected   KycStatus = "REJECTED"
)

var kycTransitions = map[KycStatus][]KycStatus{
	KycPending:    {KycInProgress},
	KycInProgress: {KycVerified, KycRejected},
}

// ParseKycStatus converts a string (case-insensitive) to a KycStatus.
// NOT_STARTED is accepted as a legacy name for PENDING.
func ParseKycStatus(s string) (KycStatus, error) {
	k := KycStatus(strings.ToUpper(strings.TrimSpace(s)))
	if k == "NOT_STARTED" {
		return KycPending, nil
	}
	switch k {
	case KycPending, KycInProgress, KycVerified, KycRejected:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKycStatus, s)
}

// CanTransitionKyc reports whether a KYC move is legal.
func CanTransitionKyc(from, to KycStatus) bool {
	for _, next := range kycTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// User represents a user in the system.
type User struct {
	ID          uint
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        Role
	PhoneNumber string
	KycStatus   KycStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Registration is the input for New.
type Registration struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        Role
	PhoneNumber string
}

// New validates a registration and returns a user with a hashed password
// and KYC status PENDING.
func New(r Registration) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if !utils.IsEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(r.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return nil, ErrNameRequired
	}
	role := r.Role
	if role == "" {
		role = RoleEmployee
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(r.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		Email:       email,
		Password:    hashed,
		FirstName:   strings.TrimSpace(r.FirstName),
		LastName:    strings.TrimSpace(r.LastName),
		Role:        role,
		PhoneNumber: strings.TrimSpace(r.PhoneNumber),
		KycStatus:   KycPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetKycStatus moves the KYC status forward.
func (u *User) SetKycStatus(to KycStatus, at time.Time) error {
	if !CanTransitionKyc(u.KycStatus, to) {
		return fmt.Errorf("%w: kyc of user %d from %s to %s",
			domain.ErrIllegalTransition, u.ID, u.KycStatus, to)
	}
	u.KycStatus = to
	u.UpdatedAt = at
	return nil
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Payload builds the event payload; the password hash is never published.
func (u *User) Payload() events.UserPayload {
	return events.UserPayload{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		KycStatus: string(u.KycStatus),
	}
}

// KycEventType picks the event announcing a KYC change.
func KycEventType(s KycStatus) events.EventType {
	if s == KycVerified {
		return events.EventTypeUserVerified
	}
	return events.EventTypeUserUpdated
}
