// Package outbox records domain events in the same transaction as the state
// change that produced them and later hands them to the event bus.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/repository"
	outboxrepo "github.com/amirasaad/payadvance/pkg/repository/outbox"
)

// Record builds an envelope and stores it through uow, which must be the
// transactional UnitOfWork of the state change.
func Record(
	ctx context.Context,
	uow repository.UnitOfWork,
	eventType events.EventType,
	entityID uint,
	payload any,
) (events.Envelope, error) {
	env, err := events.New(eventType, entityID, payload)
	if err != nil {
		return events.Envelope{}, err
	}
	repo, err := repository.Get[outboxrepo.Repository](uow)
	if err != nil {
		return events.Envelope{}, err
	}
	if err := repo.Add(ctx, env); err != nil {
		return events.Envelope{}, fmt.Errorf("outbox: record %s: %w", eventType, err)
	}
	return env, nil
}

// Dispatcher publishes pending outbox messages in insertion order.
type Dispatcher struct {
	uow         repository.UnitOfWork
	publisher   *eventbus.Publisher
	batchSize   int
	maxAttempts int
	logger      *slog.Logger
}

// NewDispatcher creates a Dispatcher. Zero batchSize or maxAttempts pick defaults of 100 and 10.
func NewDispatcher(
	uow repository.UnitOfWork,
	publisher *eventbus.Publisher,
	batchSize, maxAttempts int,
	logger *slog.Logger,
) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		uow:         uow,
		publisher:   publisher,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		logger:      logger.With("component", "outbox-dispatcher"),
	}
}

// Dispatch publishes one batch and returns how many messages went out.
// A message that fails stays pending with its attempt counter bumped.
func (d *Dispatcher) Dispatch(ctx context.Context) (int, error) {
	sent := 0
	err := d.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[outboxrepo.Repository](uow)
		if err != nil {
			return err
		}
		pending, err := repo.Pending(ctx, d.batchSize, d.maxAttempts)
		if err != nil {
			return err
		}
		for _, msg := range pending {
			if err := d.publish(ctx, msg); err != nil {
				log := d.logger.With("event_id", msg.EventID, "event_type", msg.EventType, "attempt", msg.Attempts+1)
				if msg.Attempts+1 >= d.maxAttempts {
					log.Error("❌ [ERROR] Outbox message exhausted its attempts", "error", err)
				} else {
					log.Warn("⚠️ Outbox publish failed, will retry", "error", err)
				}
				if markErr := repo.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
					return markErr
				}
				continue
			}
			if err := repo.MarkDispatched(ctx, msg.ID, time.Now().UTC()); err != nil {
				return err
			}
			sent++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if sent > 0 {
		d.logger.Debug("outbox batch dispatched", "count", sent)
	}
	return sent, nil
}

func (d *Dispatcher) publish(ctx context.Context, msg *outboxrepo.Message) error {
	env, err := events.Unmarshal(msg.Envelope)
	if err != nil {
		return err
	}
	return <-d.publisher.Publish(ctx, msg.Topic, env)
}
