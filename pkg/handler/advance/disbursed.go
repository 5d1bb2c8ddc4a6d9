// Package advance holds the advance-request service's event listeners.
package advance

import (
	"context"
	"log/slog"

	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/handler/common"
)

// Marker moves an approved advance to DISBURSED.
type Marker interface {
	MarkDisbursed(ctx context.Context, id uint) (*advance.AdvanceRequest, error)
}

// HandleDisbursementCompleted marks the advance request of a completed
// disbursement as DISBURSED.
func HandleDisbursementCompleted(svc Marker, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, env events.Envelope) error {
		log := logger.With(
			"handler", "advance.HandleDisbursementCompleted",
			"event_id", env.EventID,
			"event_type", env.EventType,
		)
		if env.EventType != events.EventTypeDisbursementCompleted {
			log.Debug("Skipping unexpected event type")
			return nil
		}

		completed, err := events.Decode[events.DisbursementPayload](env)
		if err != nil {
			return common.Settle(log, err)
		}
		log = log.With("disbursement_id", completed.ID, "advance_request_id", completed.AdvanceRequestID)
		log.Info("🟢 [START] Disbursement completed, marking advance disbursed")

		if _, err := svc.MarkDisbursed(ctx, completed.AdvanceRequestID); err != nil {
			return common.Settle(log, err)
		}
		log.Info("✅ [SUCCESS] Advance request disbursed")
		return nil
	}
}
