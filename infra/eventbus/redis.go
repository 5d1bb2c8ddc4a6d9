package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBusConfig holds configuration for the Redis streams bus.
type RedisEventBusConfig struct {
	// StreamPrefix namespaces stream keys as "<prefix>:<topic>".
	StreamPrefix string
	// GroupID is the consumer group; one per independently deployed service.
	GroupID string
	// MaxLen caps each stream (approximate trimming). Zero disables trimming.
	MaxLen int64
	Block  time.Duration
}

// DefaultRedisEventBusConfig returns default configuration for RedisEventBus.
func DefaultRedisEventBusConfig() *RedisEventBusConfig {
	return &RedisEventBusConfig{
		StreamPrefix: "payadvance",
		GroupID:      "payadvance",
		MaxLen:       100_000,
		Block:        5 * time.Second,
	}
}

// RedisEventBus implements the bus on Redis Streams with one stream per topic.
type RedisEventBus struct {
	client   *redis.Client
	config   *RedisEventBusConfig
	consumer string
	logger   *slog.Logger

	handlers    map[events.Topic][]eventbus.HandlerFunc
	handlersMtx sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis creates a new Redis-backed event bus.
// url: Redis connection URL (e.g., "redis://localhost:6379/0")
func NewWithRedis(url string, logger *slog.Logger, config *RedisEventBusConfig) (*RedisEventBus, error) {
	if url == "" {
		return nil, fmt.Errorf("redis event bus: url is required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	return NewWithRedisClient(redis.NewClient(opt), logger, config)
}

// NewWithRedisClient wraps an existing client.
func NewWithRedisClient(client *redis.Client, logger *slog.Logger, config *RedisEventBusConfig) (*RedisEventBus, error) {
	if config == nil {
		config = DefaultRedisEventBusConfig()
	}
	if config.GroupID == "" {
		config.GroupID = "payadvance"
	}
	if config.Block <= 0 {
		config.Block = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	host, _ := os.Hostname()
	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisEventBus{
		client:   client,
		config:   config,
		consumer: fmt.Sprintf("%s-%s-%d", config.GroupID, host, os.Getpid()),
		logger:   logger.With("bus", "redis"),
		handlers: make(map[events.Topic][]eventbus.HandlerFunc),
		ctx:      ctx,
		cancel:   cancel,
	}
	bus.logger.Info("🚀 Redis event bus initialized", "group_id", config.GroupID, "stream_prefix", config.StreamPrefix)
	return bus, nil
}

// Publish appends the envelope to the topic stream.
func (b *RedisEventBus) Publish(ctx context.Context, topic events.Topic, env events.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("redis event bus: envelope marshal failed: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: b.streamName(topic),
		Values: map[string]any{
			"event":      string(data),
			"event_type": string(env.EventType),
			"entity_id":  env.EntityID,
		},
	}
	if b.config.MaxLen > 0 {
		args.MaxLen = b.config.MaxLen
		args.Approx = true
	}
	if err := b.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis event bus: publish failed: %w", err)
	}
	return nil
}

// Subscribe registers handler and starts one reader per topic.
func (b *RedisEventBus) Subscribe(topic events.Topic, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	first := len(b.handlers[topic]) == 0
	b.handlers[topic] = append(b.handlers[topic], handler)
	b.handlersMtx.Unlock()

	if !first {
		return
	}

	stream := b.streamName(topic)
	err := b.client.XGroupCreateMkStream(b.ctx, stream, b.config.GroupID, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		b.logger.Error("failed to create consumer group", "error", err, "stream", stream)
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consumeLoop(topic, stream)
	}()
	b.logger.Info("handler registered", "topic", topic, "stream", stream, "consumer", b.consumer)
}

func (b *RedisEventBus) consumeLoop(topic events.Topic, stream string) {
	for {
		if b.ctx.Err() != nil {
			return
		}
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    b.config.GroupID,
			Consumer: b.consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    b.config.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if b.ctx.Err() != nil {
				return
			}
			b.logger.Error("error reading from stream", "error", err, "stream", stream)
			time.Sleep(time.Second)
			continue
		}

		for _, s := range res {
			for _, msg := range s.Messages {
				b.handleMessage(topic, stream, msg)
			}
		}
	}
}

func (b *RedisEventBus) handleMessage(topic events.Topic, stream string, msg redis.XMessage) {
	raw, _ := msg.Values["event"].(string)
	env, err := events.Unmarshal([]byte(raw))
	if err != nil {
		b.logger.Error("dropping undecodable message", "error", err, "stream", stream, "msg_id", msg.ID)
		b.ack(stream, msg.ID)
		return
	}

	b.handlersMtx.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[topic]...)
	b.handlersMtx.RUnlock()

	if !executeHandlers(b.ctx, b.logger, topic, env, handlers) {
		b.pushToDLQ(stream, msg.Values)
	}
	b.ack(stream, msg.ID)
}

func (b *RedisEventBus) ack(stream, id string) {
	if err := b.client.XAck(b.ctx, stream, b.config.GroupID, id).Err(); err != nil {
		b.logger.Error("failed to acknowledge message", "error", err, "msg_id", id)
	}
}

// pushToDLQ copies the raw message to "<stream>:dlq" for inspection or replay.
func (b *RedisEventBus) pushToDLQ(stream string, values map[string]any) {
	dlqStream := stream + ":dlq"
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlqStream, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlqStream)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlqStream)
}

func (b *RedisEventBus) streamName(topic events.Topic) string {
	if b.config.StreamPrefix == "" {
		return topic.String()
	}
	return b.config.StreamPrefix + ":" + topic.String()
}

// Close stops the readers. The client is left open for its owner.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
