package advance

import (
	"context"
	"log/slog"

	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/handler/common"
)

// PayoutFailer closes an approved advance whose payout failed.
type PayoutFailer interface {
	FailPayout(ctx context.Context, id uint, detail string) (*advance.AdvanceRequest, error)
}

// HandleDisbursementFailed rejects the advance request of a failed
// disbursement so the employee can request again.
func HandleDisbursementFailed(svc PayoutFailer, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, env events.Envelope) error {
		log := logger.With(
			"handler", "advance.HandleDisbursementFailed",
			"event_id", env.EventID,
			"event_type", env.EventType,
		)
		if env.EventType != events.EventTypeDisbursementFailed {
			log.Debug("Skipping unexpected event type")
			return nil
		}

		failed, err := events.Decode[events.DisbursementPayload](env)
		if err != nil {
			return common.Settle(log, err)
		}
		log = log.With("disbursement_id", failed.ID, "advance_request_id", failed.AdvanceRequestID)
		log.Info("🟢 [START] Disbursement failed, rejecting advance", "failure_reason", failed.FailureReason)

		if _, err := svc.FailPayout(ctx, failed.AdvanceRequestID, failed.FailureReason); err != nil {
			return common.Settle(log, err)
		}
		log.Info("✅ [SUCCESS] Advance request rejected")
		return nil
	}
}
