package eventbus

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaEventBusConfig holds configuration for the Kafka event bus.
type KafkaEventBusConfig struct {
	// GroupID names the consumer group. Each service deployed on its own
	// needs a distinct group so every service sees every message.
	GroupID string
	// TopicPrefix is prepended as "<prefix>." to registry topic names. Empty keeps them verbatim.
	TopicPrefix      string
	Partitions       int
	DLQRetryInterval time.Duration
	DLQBatchSize     int
	SASLUsername     string
	SASLPassword     string
	TLSEnabled       bool
	TLSCAFile        string
	TLSCertFile      string
	TLSKeyFile       string
	TLSSkipVerify    bool
}

// DefaultKafkaEventBusConfig returns default configuration for KafkaEventBus.
func DefaultKafkaEventBusConfig() *KafkaEventBusConfig {
	return &KafkaEventBusConfig{
		GroupID:          "payadvance",
		Partitions:       3,
		DLQRetryInterval: 5 * time.Minute,
		DLQBatchSize:     10,
	}
}

// KafkaEventBus implements a Kafka-backed event bus. Messages are keyed by
// entity id, so all events of one entity land on one partition in order.
type KafkaEventBus struct {
	brokers []string
	writer  *kafka.Writer
	dialer  *kafka.Dialer
	ctx     context.Context

	handlers    map[events.Topic][]eventbus.HandlerFunc
	handlersMtx sync.RWMutex

	readers    map[events.Topic]*kafka.Reader
	readersMtx sync.Mutex
	topicsMtx  sync.Mutex
	topics     map[string]struct{}

	logger *slog.Logger
	config *KafkaEventBusConfig

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithKafka creates a new Kafka-backed event bus.
// brokers: Comma-separated brokers list (e.g. "localhost:9092,localhost:9093").
func NewWithKafka(
	brokers string,
	logger *slog.Logger,
	config *KafkaEventBusConfig,
) (*KafkaEventBus, error) {
	parsedBrokers := parseBrokers(brokers)
	if len(parsedBrokers) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}

	if config == nil {
		config = DefaultKafkaEventBusConfig()
	}
	if config.GroupID == "" {
		config.GroupID = "payadvance"
	}
	if config.Partitions <= 0 {
		config.Partitions = 1
	}
	if config.DLQBatchSize <= 0 {
		config.DLQBatchSize = 10
	}
	if config.DLQRetryInterval <= 0 {
		config.DLQRetryInterval = 5 * time.Minute
	}

	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(parsedBrokers...),
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
	}

	dialer, transport, err := newKafkaDialer(config)
	if err != nil {
		return nil, err
	}
	if transport != nil {
		writer.Transport = transport
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &KafkaEventBus{
		brokers:  parsedBrokers,
		writer:   writer,
		dialer:   dialer,
		ctx:      ctx,
		handlers: make(map[events.Topic][]eventbus.HandlerFunc),
		readers:  make(map[events.Topic]*kafka.Reader),
		topics:   make(map[string]struct{}),
		logger:   logger.With("bus", "kafka"),
		config:   config,
		cancel:   cancel,
	}

	if err := bus.ping(ctx); err != nil {
		_ = bus.Close()
		return nil, err
	}

	bus.startDLQRetryWorker(ctx)
	bus.logger.Info("🚀 Kafka event bus initialized",
		"group_id", config.GroupID,
		"brokers", parsedBrokers,
		"topic_prefix", config.TopicPrefix,
		"registry_version", events.RegistryVersion,
		"dlq_retry_interval", config.DLQRetryInterval,
		"tls_enabled", dialer.TLS != nil,
		"sasl_enabled", dialer.SASLMechanism != nil,
	)

	return bus, nil
}

// Close stops background goroutines and closes network resources.
func (b *KafkaEventBus) Close() error {
	if b == nil {
		return nil
	}

	if b.cancel != nil {
		b.cancel()
	}

	b.readersMtx.Lock()
	for _, r := range b.readers {
		_ = r.Close()
	}
	b.readersMtx.Unlock()

	b.wg.Wait()

	if b.writer != nil {
		return b.writer.Close()
	}
	return nil
}

// Subscribe registers a handler for a topic and starts its consumer.
func (b *KafkaEventBus) Subscribe(topic events.Topic, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	b.handlersMtx.Unlock()

	b.ensureConsumer(topic)
}

// Publish writes the envelope to Kafka keyed by entity id.
func (b *KafkaEventBus) Publish(ctx context.Context, topic events.Topic, env events.Envelope) error {
	if b == nil || b.writer == nil {
		return fmt.Errorf("kafka event bus: writer not initialized")
	}

	value, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("kafka event bus: envelope marshal failed: %w", err)
	}

	name := topicNameFor(b.config.TopicPrefix, topic)
	if err := b.ensureTopic(ctx, name); err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: name,
		Key:   entityKey(env),
		Value: value,
		Time:  env.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID.String())},
		},
	}

	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka event bus: publish failed: %w", err)
	}
	return nil
}

func (b *KafkaEventBus) ping(ctx context.Context) error {
	conn, err := b.dialer.DialContext(ctx, "tcp", b.brokers[0])
	if err != nil {
		return fmt.Errorf("kafka event bus: connection failed: %w", err)
	}
	_ = conn.Close()
	return nil
}

func (b *KafkaEventBus) ensureConsumer(topic events.Topic) {
	b.readersMtx.Lock()
	defer b.readersMtx.Unlock()

	if _, exists := b.readers[topic]; exists {
		return
	}

	name := topicNameFor(b.config.TopicPrefix, topic)
	if err := b.ensureTopic(b.ctx, name); err != nil {
		b.logger.Error("kafka ensure topic error", "error", err, "topic", name)
		return
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.config.GroupID,
		Topic:       name,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     1 * time.Second,
		Dialer:      b.dialer,
	})
	b.readers[topic] = reader

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consumeLoop(b.ctx, topic, reader)
	}()
}

func (b *KafkaEventBus) consumeLoop(ctx context.Context, topic events.Topic, reader *kafka.Reader) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			b.logger.Error("kafka consume error", "error", err, "topic", topic)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		shouldCommit, commitErr := b.processKafkaMessage(ctx, topic, msg)
		if shouldCommit {
			if err := reader.CommitMessages(ctx, msg); err != nil {
				b.logger.Error("kafka commit error", "error", err, "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
			}
		} else if commitErr != nil {
			b.logger.Error("kafka message processing failed; will retry", "error", commitErr, "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
			time.Sleep(500 * time.Millisecond)
		}
	}
}

func (b *KafkaEventBus) processKafkaMessage(
	ctx context.Context,
	topic events.Topic,
	msg kafka.Message,
) (commit bool, processingErr error) {
	env, err := events.Unmarshal(msg.Value)
	if err != nil {
		b.logger.Error("dropping undecodable message", "error", err, "topic", msg.Topic, "offset", msg.Offset)
		return true, nil
	}

	handlers := b.getHandlers(topic)
	if len(handlers) == 0 {
		b.logger.Warn("no handlers registered for topic", "topic", topic, "offset", msg.Offset)
		return true, nil
	}

	if executeHandlers(ctx, b.logger, topic, env, handlers) {
		return true, nil
	}

	if err := b.publishToDLQ(ctx, topic, msg); err != nil {
		return false, err
	}
	return true, nil
}

func (b *KafkaEventBus) publishToDLQ(ctx context.Context, topic events.Topic, msg kafka.Message) error {
	dlqTopic := dlqTopicNameFor(b.config.TopicPrefix, topic)
	if err := b.ensureTopic(ctx, dlqTopic); err != nil {
		return err
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{
		Topic:   dlqTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: msg.Headers,
		Time:    time.Now(),
	}); err != nil {
		return fmt.Errorf("kafka event bus: dlq publish failed: %w", err)
	}
	b.logger.Warn("message sent to DLQ", "topic", topic, "dlq_topic", dlqTopic)
	return nil
}

func newKafkaDialer(config *KafkaEventBusConfig) (*kafka.Dialer, *kafka.Transport, error) {
	tlsConfig, err := buildKafkaTLSConfig(config)
	if err != nil {
		return nil, nil, err
	}
	saslMechanism, err := buildKafkaSASLMechanism(config)
	if err != nil {
		return nil, nil, err
	}

	dialer := &kafka.Dialer{
		Timeout:       5 * time.Second,
		DualStack:     true,
		TLS:           tlsConfig,
		SASLMechanism: saslMechanism,
	}

	if tlsConfig == nil && saslMechanism == nil {
		return dialer, nil, nil
	}

	transport := &kafka.Transport{
		TLS:  tlsConfig,
		SASL: saslMechanism,
	}
	return dialer, transport, nil
}

func buildKafkaTLSConfig(config *KafkaEventBusConfig) (*tls.Config, error) {
	if !config.TLSEnabled {
		return nil, nil
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: config.TLSSkipVerify, //nolint:gosec
	}

	if caFile := strings.TrimSpace(config.TLSCAFile); caFile != "" {
		caBytes, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("kafka event bus: read tls ca file: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caBytes) {
			return nil, fmt.Errorf("kafka event bus: invalid tls ca file")
		}
		tlsConfig.RootCAs = caPool
	}

	certFile := strings.TrimSpace(config.TLSCertFile)
	keyFile := strings.TrimSpace(config.TLSKeyFile)
	if certFile != "" || keyFile != "" {
		if certFile == "" || keyFile == "" {
			return nil, fmt.Errorf("kafka event bus: tls cert and key are required")
		}
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("kafka event bus: load tls key pair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func buildKafkaSASLMechanism(config *KafkaEventBusConfig) (sasl.Mechanism, error) {
	username := strings.TrimSpace(config.SASLUsername)
	password := strings.TrimSpace(config.SASLPassword)
	if username == "" && password == "" {
		return nil, nil
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("kafka event bus: sasl username and password are required")
	}
	return plain.Mechanism{
		Username: username,
		Password: password,
	}, nil
}

func (b *KafkaEventBus) ensureTopic(ctx context.Context, topic string) error {
	if topic == "" {
		return fmt.Errorf("kafka event bus: topic is required")
	}

	b.topicsMtx.Lock()
	_, exists := b.topics[topic]
	b.topicsMtx.Unlock()
	if exists {
		return nil
	}

	conn, err := b.dialer.DialContext(ctx, "tcp", b.brokers[0])
	if err != nil {
		return fmt.Errorf("kafka event bus: dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     b.config.Partitions,
		ReplicationFactor: 1,
	})
	if err != nil && !isTopicAlreadyExists(err) {
		return fmt.Errorf("kafka event bus: create topic failed: %w", err)
	}

	b.topicsMtx.Lock()
	b.topics[topic] = struct{}{}
	b.topicsMtx.Unlock()
	return nil
}

func isTopicAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, kafka.TopicAlreadyExists) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Topic with this name already exists") ||
		strings.Contains(msg, "TOPIC_ALREADY_EXISTS")
}

func (b *KafkaEventBus) getHandlers(topic events.Topic) []eventbus.HandlerFunc {
	b.handlersMtx.RLock()
	defer b.handlersMtx.RUnlock()
	return append([]eventbus.HandlerFunc(nil), b.handlers[topic]...)
}

func (b *KafkaEventBus) startDLQRetryWorker(ctx context.Context) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		ticker := time.NewTicker(b.config.DLQRetryInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.processAllDLQs(ctx)
			}
		}
	}()
}

// processAllDLQs replays dead letters of the topics this process consumes.
func (b *KafkaEventBus) processAllDLQs(ctx context.Context) {
	b.handlersMtx.RLock()
	topics := make([]events.Topic, 0, len(b.handlers))
	for topic := range b.handlers {
		topics = append(topics, topic)
	}
	b.handlersMtx.RUnlock()

	for _, topic := range topics {
		if ctx.Err() != nil {
			return
		}
		b.retryDLQ(ctx, topic, b.config.DLQBatchSize)
	}
}

func (b *KafkaEventBus) retryDLQ(ctx context.Context, topic events.Topic, batchSize int) {
	dlqReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.config.GroupID + "-dlq-retry",
		Topic:       dlqTopicNameFor(b.config.TopicPrefix, topic),
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     250 * time.Millisecond,
		Dialer:      b.dialer,
	})
	defer func() { _ = dlqReader.Close() }()

	original := topicNameFor(b.config.TopicPrefix, topic)
	for i := 0; i < batchSize; i++ {
		msgCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		msg, err := dlqReader.FetchMessage(msgCtx)
		cancel()
		if err != nil {
			return
		}

		if err := b.writer.WriteMessages(ctx, kafka.Message{
			Topic:   original,
			Key:     msg.Key,
			Value:   msg.Value,
			Headers: msg.Headers,
			Time:    time.Now(),
		}); err != nil {
			b.logger.Error("failed to republish DLQ message", "error", err, "topic", original)
			return
		}

		_ = dlqReader.CommitMessages(ctx, msg)
	}
}

func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func entityKey(env events.Envelope) []byte {
	return []byte(strconv.FormatUint(uint64(env.EntityID), 10))
}

func topicNameFor(prefix string, topic events.Topic) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return topic.String()
	}
	return prefix + "." + topic.String()
}

func dlqTopicNameFor(prefix string, topic events.Topic) string {
	return topicNameFor(prefix, events.Topic("dlq."+topic.String()))
}

// executeHandlers runs every handler concurrently and reports whether all succeeded.
func executeHandlers(
	ctx context.Context,
	logger *slog.Logger,
	topic events.Topic,
	env events.Envelope,
	handlers []eventbus.HandlerFunc,
) bool {
	var wg sync.WaitGroup
	var mu sync.Mutex
	success := true

	for _, handler := range handlers {
		wg.Add(1)
		go func(h eventbus.HandlerFunc) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					success = false
					mu.Unlock()
					logger.Error("handler panic recovered", "panic", r, "topic", topic, "event_id", env.EventID)
				}
			}()
			if err := h(ctx, env); err != nil {
				mu.Lock()
				success = false
				mu.Unlock()
				logger.Error("handler error", "error", err, "topic", topic, "event_type", env.EventType, "event_id", env.EventID)
			}
		}(handler)
	}

	wg.Wait()
	return success
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
