package eventbus

import (
	"context"

	"github.com/amirasaad/payadvance/pkg/domain/events"
)

// HandlerFunc processes one delivered envelope. A returned error tells the
// transport the delivery failed; what happens next (redelivery, DLQ, log)
// is up to the transport.
type HandlerFunc func(ctx context.Context, env events.Envelope) error

// Bus is the broker port shared by all services.
type Bus interface {
	// Publish sends the envelope to topic. Messages of one entity keep
	// their order when the transport partitions by EntityID.
	Publish(ctx context.Context, topic events.Topic, env events.Envelope) error

	// Subscribe registers handler for every envelope arriving on topic.
	Subscribe(topic events.Topic, handler HandlerFunc)
}
