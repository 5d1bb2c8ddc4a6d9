package eventbus

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/events"
)

// Publisher sends envelopes without blocking the caller.
type Publisher struct {
	bus     Bus
	timeout time.Duration
	logger  *slog.Logger
}

// NewPublisher wraps bus. Each send gets its own timeout so a slow broker
// cannot pin goroutines forever; zero means 10s.
func NewPublisher(bus Bus, timeout time.Duration, logger *slog.Logger) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{bus: bus, timeout: timeout, logger: logger.With("component", "publisher")}
}

// Publish sends env to topic in the background. The returned channel
// receives exactly one result and is then closed; callers that do not care
// about the outcome may drop it. The publisher never retries.
func (p *Publisher) Publish(ctx context.Context, topic events.Topic, env events.Envelope) <-chan error {
	done := make(chan error, 1)
	// The send outlives the request that triggered it.
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		log := p.logger.With(
			"topic", topic,
			"event_type", env.EventType,
			"event_id", env.EventID,
			"entity_id", env.EntityID,
		)
		if err := p.bus.Publish(sendCtx, topic, env); err != nil {
			log.Error("❌ [ERROR] Failed to publish event", "error", err)
			done <- err
			return
		}
		log.Info("📤 Event published")
		done <- nil
	}()
	return done
}

// PublishEnvelope routes env to the topic registered for its type.
func (p *Publisher) PublishEnvelope(ctx context.Context, env events.Envelope) <-chan error {
	topic, err := env.Topic()
	if err != nil {
		done := make(chan error, 1)
		done <- err
		close(done)
		return done
	}
	return p.Publish(ctx, topic, env)
}
