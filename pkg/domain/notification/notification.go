// Package notification holds the in-app notification kept for a user.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/google/uuid"
)

var (
	// ErrRecipientRequired is returned when no recipient is given.
	ErrRecipientRequired = fmt.Errorf("%w: notification recipient is required", domain.ErrValidation)
	// ErrSubjectRequired is returned when the subject is blank.
	ErrSubjectRequired = fmt.Errorf("%w: notification subject is required", domain.ErrValidation)
	// ErrMessageRequired is returned when the message is blank.
	ErrMessageRequired = fmt.Errorf("%w: notification message is required", domain.ErrValidation)
)

// Notification is a message delivered to a user. SourceEventID names the
// event that asked for it, so one event never yields two notifications.
type Notification struct {
	ID            uint
	UserID        uint
	Channel       string
	Subject       string
	Message       string
	SourceEventID uuid.UUID
	Read          bool
	ReadAt        *time.Time
	CreatedAt     time.Time
}

// FromRequest builds an unread notification from a NOTIFICATION_REQUESTED
// payload. A request without a source event gets a fresh id.
func FromRequest(notice events.NotificationPayload, at time.Time) (*Notification, error) {
	if notice.RecipientID == 0 {
		return nil, ErrRecipientRequired
	}
	subject := strings.TrimSpace(notice.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	message := strings.TrimSpace(notice.Message)
	if message == "" {
		return nil, ErrMessageRequired
	}
	source := notice.SourceEventID
	if source == uuid.Nil {
		source = uuid.New()
	}
	return &Notification{
		UserID:        notice.RecipientID,
		Channel:       notice.Channel,
		Subject:       subject,
		Message:       message,
		SourceEventID: source,
		CreatedAt:     at,
	}, nil
}

// MarkRead flags the notification as read. Reading it again keeps the
// first ReadAt.
func (n *Notification) MarkRead(at time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	n.ReadAt = &at
}
