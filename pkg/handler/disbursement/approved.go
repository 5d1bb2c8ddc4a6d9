// Package disbursement holds the disbursement service's event listeners.
package disbursement

import (
	"context"
	"log/slog"

	"github.com/amirasaad/payadvance/pkg/domain/disbursement"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/handler/common"
)

// Creator creates the disbursement of an approved advance.
type Creator interface {
	CreateForApprovedAdvance(ctx context.Context, approved events.AdvanceRequestPayload) (*disbursement.Disbursement, error)
}

// HandleAdvanceApproved creates a disbursement for every
// ADVANCE_REQUEST_APPROVED envelope. A second approval of the same request
// finds the existing disbursement and is skipped.
func HandleAdvanceApproved(svc Creator, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, env events.Envelope) error {
		log := logger.With(
			"handler", "disbursement.HandleAdvanceApproved",
			"event_id", env.EventID,
			"event_type", env.EventType,
			"entity_id", env.EntityID,
		)
		if env.EventType != events.EventTypeAdvanceRequestApproved {
			log.Debug("Skipping unexpected event type")
			return nil
		}
		log.Info("🟢 [START] Advance approved, creating disbursement")

		approved, err := events.Decode[events.AdvanceRequestPayload](env)
		if err != nil {
			return common.Settle(log, err)
		}
		if approved.ID == 0 {
			approved.ID = env.EntityID
		}

		d, err := svc.CreateForApprovedAdvance(ctx, approved)
		if err != nil {
			return common.Settle(log, err)
		}
		log.Info("✅ [SUCCESS] Disbursement created from approval",
			"disbursement_id", d.ID, "total_repayment_amount", d.TotalRepaymentAmount)
		return nil
	}
}
