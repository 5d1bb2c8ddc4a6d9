package notification

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/notification"
	"github.com/google/uuid"
)

// Notification represents a notifications row.
type Notification struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"not null;index"`
	Channel       string    `gorm:"size:20;not null"`
	Subject       string    `gorm:"size:255;not null"`
	Message       string    `gorm:"type:text;not null"`
	SourceEventID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	IsRead        bool      `gorm:"not null"`
	ReadAt        *time.Time
	CreatedAt     time.Time
}

// TableName specifies the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}

func mapDomainToModel(n *notification.Notification) *Notification {
	return &Notification{
		ID:            n.ID,
		UserID:        n.UserID,
		Channel:       n.Channel,
		Subject:       n.Subject,
		Message:       n.Message,
		SourceEventID: n.SourceEventID,
		IsRead:        n.Read,
		ReadAt:        n.ReadAt,
		CreatedAt:     n.CreatedAt,
	}
}

func mapModelToDomain(m *Notification) *notification.Notification {
	return &notification.Notification{
		ID:            m.ID,
		UserID:        m.UserID,
		Channel:       m.Channel,
		Subject:       m.Subject,
		Message:       m.Message,
		SourceEventID: m.SourceEventID,
		Read:          m.IsRead,
		ReadAt:        m.ReadAt,
		CreatedAt:     m.CreatedAt,
	}
}
