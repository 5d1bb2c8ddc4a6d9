// Package notification holds the user service's notification listener.
package notification

import (
	"context"
	"log/slog"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/handler/common"
)

// Deliverer sends a notification to its recipient.
type Deliverer interface {
	DeliverNotification(ctx context.Context, notice events.NotificationPayload) error
}

// HandleRequested delivers NOTIFICATION_REQUESTED envelopes.
func HandleRequested(svc Deliverer, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, env events.Envelope) error {
		log := logger.With(
			"handler", "notification.HandleRequested",
			"event_id", env.EventID,
			"recipient_id", env.EntityID,
		)
		if env.EventType != events.EventTypeNotificationRequested {
			return nil
		}
		notice, err := events.Decode[events.NotificationPayload](env)
		if err != nil {
			return common.Settle(log, err)
		}
		return common.Settle(log, svc.DeliverNotification(ctx, notice))
	}
}
