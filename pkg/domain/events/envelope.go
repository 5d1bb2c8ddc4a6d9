package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidEnvelope is returned when a received message is not a usable envelope.
var ErrInvalidEnvelope = errors.New("invalid event envelope")

// Envelope is the canonical shape of every event on the wire.
type Envelope struct {
	EventID   uuid.UUID       `json:"eventId"`
	EntityID  uint            `json:"entityId"`
	EventType EventType       `json:"eventType"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// New builds an envelope with a fresh event id for the given entity.
func New(eventType EventType, entityID uint, payload any) (Envelope, error) {
	if !eventType.Valid() {
		return Envelope{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidEnvelope, eventType)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:   uuid.New(),
		EntityID:  entityID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   data,
	}, nil
}

// Topic returns the topic this envelope belongs on.
func (e Envelope) Topic() (Topic, error) {
	return TopicFor(e.EventType)
}

// Marshal encodes the envelope for the broker.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes and checks an envelope read from the broker.
func Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if env.EventID == uuid.Nil {
		return Envelope{}, fmt.Errorf("%w: missing eventId", ErrInvalidEnvelope)
	}
	if !env.EventType.Valid() {
		return Envelope{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidEnvelope, env.EventType)
	}
	return env, nil
}

// Decode unmarshals the envelope payload into T.
func Decode[T any](e Envelope) (T, error) {
	var out T
	if len(e.Payload) == 0 {
		return out, fmt.Errorf("%w: empty payload for %s", ErrInvalidEnvelope, e.EventType)
	}
	if err := json.Unmarshal(e.Payload, &out); err != nil {
		return out, fmt.Errorf("%w: decode %s payload: %v", ErrInvalidEnvelope, e.EventType, err)
	}
	return out, nil
}
