package outbox

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	outboxrepo "github.com/amirasaad/payadvance/pkg/repository/outbox"
	"github.com/google/uuid"
)

// Message represents an outbox_messages row.
type Message struct {
	ID           uint      `gorm:"primaryKey"`
	EventID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Topic        string    `gorm:"size:100;not null"`
	EventType    string    `gorm:"size:50;not null"`
	EntityID     uint      `gorm:"not null"`
	Envelope     []byte    `gorm:"type:jsonb;not null"`
	Attempts     int       `gorm:"not null;default:0"`
	LastError    string    `gorm:"size:1000"`
	CreatedAt    time.Time `gorm:"index"`
	DispatchedAt *time.Time
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "outbox_messages"
}

func mapModelToDomain(m *Message) *outboxrepo.Message {
	return &outboxrepo.Message{
		ID:           m.ID,
		EventID:      m.EventID,
		Topic:        events.Topic(m.Topic),
		EventType:    events.EventType(m.EventType),
		EntityID:     m.EntityID,
		Envelope:     m.Envelope,
		Attempts:     m.Attempts,
		LastError:    m.LastError,
		CreatedAt:    m.CreatedAt,
		DispatchedAt: m.DispatchedAt,
	}
}
