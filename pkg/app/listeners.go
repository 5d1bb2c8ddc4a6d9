package app

import (
	"time"

	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	advancehandler "github.com/amirasaad/payadvance/pkg/handler/advance"
	"github.com/amirasaad/payadvance/pkg/handler/common"
	disbursementhandler "github.com/amirasaad/payadvance/pkg/handler/disbursement"
	"github.com/amirasaad/payadvance/pkg/handler/notification"
)

// subscribe registers the cross-service listeners with the bus.
func (a *App) subscribe() {
	logger := a.Deps.Logger

	if a.Config.Runs(config.ServiceDisbursement) {
		a.listen(
			events.TopicAdvanceRequestApproved,
			"disbursement.HandleAdvanceApproved",
			disbursementhandler.HandleAdvanceApproved(a.DisbursementService, logger),
		)
	}
	if a.Config.Runs(config.ServiceAdvance) {
		a.listen(
			events.TopicDisbursementCompleted,
			"advance.HandleDisbursementCompleted",
			advancehandler.HandleDisbursementCompleted(a.AdvanceService, logger),
		)
		a.listen(
			events.TopicDisbursementFailed,
			"advance.HandleDisbursementFailed",
			advancehandler.HandleDisbursementFailed(a.AdvanceService, logger),
		)
	}
	if a.Config.Runs(config.ServiceUser) {
		a.listen(
			events.TopicNotificationRequested,
			"notification.HandleRequested",
			notification.HandleRequested(a.UserService, logger),
		)
	}
}

func (a *App) listen(topic events.Topic, name string, handler eventbus.HandlerFunc) {
	a.Deps.EventBus.Subscribe(
		topic,
		common.WithIdempotency(handler, a.idempotency, common.ByEventID, name, a.Deps.Logger),
	)
	a.logger.Info("👂 Listener registered", "topic", topic, "handler", name)
}

func outboxSettings(cfg *config.App) (publishTimeout time.Duration, batchSize, maxAttempts int) {
	if cfg.Broker != nil {
		publishTimeout = cfg.Broker.PublishTimeout
	}
	if cfg.Outbox != nil {
		batchSize = cfg.Outbox.BatchSize
		maxAttempts = cfg.Outbox.MaxAttempts
	}
	return publishTimeout, batchSize, maxAttempts
}
