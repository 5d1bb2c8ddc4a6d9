package eventbus

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/payadvance/internal/testutils"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testcontainerskafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

// setupKafkaBus starts a Kafka container using testcontainers-go and returns a
// KafkaEventBus and a cleanup function.
func setupKafkaBus(tb testing.TB) (*KafkaEventBus, func()) {
	tb.Helper()
	testutils.SkipWithoutDocker(tb)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	kafkaContainer, err := testcontainerskafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	if err != nil {
		tb.Fatalf("failed to start kafka container: %v", err)
	}

	brokers, err := kafkaContainer.Brokers(ctx)
	if err != nil {
		tb.Fatalf("failed to get kafka brokers: %v", err)
	}

	cfg := DefaultKafkaEventBusConfig()
	cfg.GroupID = "payadvance-test"
	cfg.TopicPrefix = "test"
	bus, err := NewWithKafka(strings.Join(brokers, ","), discardLogger(), cfg)
	if err != nil {
		tb.Fatalf("failed to create kafka event bus: %v", err)
	}

	cleanup := func() {
		_ = bus.Close()
		_ = kafkaContainer.Terminate(context.Background())
	}

	return bus, cleanup
}

func approvedEnvelope(t *testing.T, id uint) events.Envelope {
	t.Helper()
	env, err := events.New(events.EventTypeAdvanceRequestApproved, id, events.AdvanceRequestPayload{ID: id, EmployeeID: 7})
	require.NoError(t, err)
	return env
}

func TestKafkaBusHandlerReceivesEvent(t *testing.T) {
	bus, cleanup := setupKafkaBus(t)
	defer cleanup()

	received := make(chan events.Envelope, 1)
	bus.Subscribe(events.TopicAdvanceRequestApproved, func(_ context.Context, env events.Envelope) error {
		received <- env
		return nil
	})

	sent := approvedEnvelope(t, 11)
	require.NoError(t, bus.Publish(context.Background(), events.TopicAdvanceRequestApproved, sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.EventID, got.EventID)
		assert.Equal(t, uint(11), got.EntityID)
	case <-time.After(20 * time.Second):
		t.Fatal("handler did not receive event in time")
	}
}

func TestKafkaBusDLQRetry(t *testing.T) {
	bus, cleanup := setupKafkaBus(t)
	defer cleanup()

	var fail atomic.Bool
	fail.Store(true)
	received := make(chan events.Envelope, 1)
	bus.Subscribe(events.TopicAdvanceRequestApproved, func(_ context.Context, env events.Envelope) error {
		if fail.Load() {
			return errors.New("temporary failure")
		}
		received <- env
		return nil
	})

	sent := approvedEnvelope(t, 12)
	require.NoError(t, bus.Publish(context.Background(), events.TopicAdvanceRequestApproved, sent))

	dlqReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     bus.brokers,
		Topic:       dlqTopicNameFor(bus.config.TopicPrefix, events.TopicAdvanceRequestApproved),
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	defer func() { _ = dlqReader.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	msg, err := dlqReader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12", string(msg.Key))

	fail.Store(false)
	bus.processAllDLQs(context.Background())

	select {
	case got := <-received:
		assert.Equal(t, sent.EventID, got.EventID)
	case <-time.After(20 * time.Second):
		t.Fatal("DLQ retry did not republish message in time")
	}
}

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "advance-request-approved", topicNameFor("", events.TopicAdvanceRequestApproved))
	assert.Equal(t, "staging.advance-request-approved", topicNameFor("staging.", events.TopicAdvanceRequestApproved))
	assert.Equal(t, "dlq.disbursement-failed", dlqTopicNameFor("", events.TopicDisbursementFailed))
	assert.Equal(t, []string{"a:9092", "b:9092"}, parseBrokers(" a:9092, ,b:9092 "))
}
