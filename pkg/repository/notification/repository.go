package notification

import (
	"context"

	"github.com/amirasaad/payadvance/pkg/domain/notification"
)

// Repository defines data access for notifications.
type Repository interface {
	// Create yields domain.ErrAlreadyExists when a notification for the same
	// source event is already stored.
	Create(ctx context.Context, n *notification.Notification) error
	Get(ctx context.Context, id uint) (*notification.Notification, error)
	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID uint) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, n *notification.Notification) error
}
