package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrIllegalTransition is returned when a status change is not allowed
	// from the entity's current status.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrConcurrentUpdate is returned when a versioned update lost a race
	// against another writer.
	ErrConcurrentUpdate = errors.New("entity was modified concurrently")
	// ErrDependencyUnavailable is returned when an external collaborator
	// (salary provider, payment gateway) cannot be reached. Callers may retry.
	ErrDependencyUnavailable = errors.New("external dependency unavailable")
	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when a user is not authorized to perform an action
	ErrUnauthorized = errors.New("unauthorized")
)
