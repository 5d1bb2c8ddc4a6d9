package outbox

import (
	"context"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/google/uuid"
)

// Message is an event waiting in the outbox table.
type Message struct {
	ID           uint
	EventID      uuid.UUID
	Topic        events.Topic
	EventType    events.EventType
	EntityID     uint
	Envelope     []byte
	Attempts     int
	LastError    string
	CreatedAt    time.Time
	DispatchedAt *time.Time
}

// Repository stores events next to the entity change that produced them.
type Repository interface {
	// Add stores the envelope for later dispatch.
	Add(ctx context.Context, env events.Envelope) error

	// Pending locks and returns up to limit undispatched messages with fewer
	// than maxAttempts attempts, oldest first. Rows locked by another
	// dispatcher are skipped.
	Pending(ctx context.Context, limit, maxAttempts int) ([]*Message, error)

	// MarkDispatched records a successful publish.
	MarkDispatched(ctx context.Context, id uint, at time.Time) error

	// MarkFailed bumps the attempt counter and records the error.
	MarkFailed(ctx context.Context, id uint, reason string) error
}
