// Package payment holds the status machine shared by disbursements and repayments.
package payment

import (
	"fmt"
	"strings"

	"github.com/amirasaad/payadvance/pkg/domain"
)

// ErrInvalidStatus is returned for an unknown status string.
var ErrInvalidStatus = fmt.Errorf("%w: unknown payment status", domain.ErrValidation)

// Status of a money movement.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// DefaultMethod is used when a disbursement is synthesized from an approval.
const DefaultMethod = "BANK_TRANSFER"

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// ParseStatus converts a string (case-insensitive) to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// CanTransition reports whether moving from one status to another is legal.
// Statuses only move forward; COMPLETED and FAILED are terminal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Check returns ErrIllegalTransition wrapped with context when the move is not allowed.
func Check(kind string, id uint, from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	return fmt.Errorf("%w: %s %d from %s to %s", domain.ErrIllegalTransition, kind, id, from, to)
}
