// Package initializer builds the infrastructure a payadvance process runs on:
// logger, database, event bus, locks, caches and external providers.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/payadvance/infra"
	"github.com/amirasaad/payadvance/infra/cache"
	infra_eventbus "github.com/amirasaad/payadvance/infra/eventbus"
	infra_lock "github.com/amirasaad/payadvance/infra/lock"
	infra_provider "github.com/amirasaad/payadvance/infra/provider"
	pkgcache "github.com/amirasaad/payadvance/pkg/cache"
	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/eventbus"
	"github.com/amirasaad/payadvance/pkg/lock"
	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies is what InitializeDependencies hands to the application.
// Close releases everything in reverse order of creation.
type Dependencies struct {
	config.Deps
	DB      *gorm.DB
	closers []func() error
}

// Close shuts down the bus, Redis and the database pool.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InitializeDependencies initializes all the application dependencies.
func InitializeDependencies(cfg *config.App) (deps *Dependencies, err error) {
	logger := SetupLogger(cfg.Log)
	deps = &Dependencies{}
	deps.Logger = logger
	deps.Config = cfg
	defer func() {
		if err != nil {
			_ = deps.Close()
			deps = nil
		}
	}()

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return deps, err
	}
	deps.DB = db
	deps.closers = append(deps.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	if cfg.DB.AutoMigrate {
		if err := infra.RunMigrations(db); err != nil {
			return deps, err
		}
		logger.Info("✅ Database migrations applied")
	}
	deps.Uow = infra.NewUoW(db)

	var client *redis.Client
	if needsRedis(cfg) {
		client, err = NewRedisClient(cfg.Redis)
		if err != nil {
			return deps, err
		}
		deps.closers = append(deps.closers, client.Close)
	}

	bus, closeBus, err := NewEventBus(cfg, client, logger)
	if err != nil {
		return deps, err
	}
	deps.EventBus = bus
	deps.closers = append(deps.closers, closeBus)

	deps.Locker = NewLocker(cfg, client, logger)
	deps.PaymentGateway = infra_provider.NewMockPaymentGateway()

	// An advance service sharing the process with the user service reads
	// salaries in-process; the app wires that up.
	if cfg.Runs(config.ServiceAdvance) && !cfg.Runs(config.ServiceUser) {
		deps.SalaryProvider = NewSalaryProvider(cfg, client, logger)
	}

	logger.Info("🚀 Dependencies initialized",
		"broker", cfg.Broker.Type,
		"lock", cfg.Lock.Type,
		"services", cfg.Services,
	)
	return deps, nil
}

func needsRedis(cfg *config.App) bool {
	return strings.EqualFold(cfg.Broker.Type, "redis") || strings.EqualFold(cfg.Lock.Type, "redis")
}

// NewRedisClient parses cfg.URL and checks the server answers.
func NewRedisClient(cfg *config.Redis) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewEventBus picks the transport named by BROKER_TYPE. The returned func
// stops its consumers.
func NewEventBus(cfg *config.App, client *redis.Client, logger *slog.Logger) (eventbus.Bus, func() error, error) {
	switch strings.ToLower(cfg.Broker.Type) {
	case "kafka":
		kcfg := infra_eventbus.DefaultKafkaEventBusConfig()
		kcfg.GroupID = cfg.Kafka.GroupID
		kcfg.TopicPrefix = cfg.Kafka.TopicPrefix
		kcfg.Partitions = cfg.Kafka.Partitions
		kcfg.DLQRetryInterval = cfg.Kafka.DLQRetryInterval
		kcfg.DLQBatchSize = cfg.Kafka.DLQBatchSize
		kcfg.SASLUsername = cfg.Kafka.SASLUsername
		kcfg.SASLPassword = cfg.Kafka.SASLPassword
		kcfg.TLSEnabled = cfg.Kafka.TLSEnabled
		kcfg.TLSSkipVerify = cfg.Kafka.TLSSkipVerify
		bus, err := infra_eventbus.NewWithKafka(cfg.Kafka.Brokers, logger, kcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Kafka event bus: %w", err)
		}
		return bus, bus.Close, nil
	case "redis":
		if client == nil {
			return nil, nil, errors.New("redis event bus needs a redis client")
		}
		rcfg := infra_eventbus.DefaultRedisEventBusConfig()
		rcfg.StreamPrefix = strings.TrimSuffix(cfg.Redis.KeyPrefix, ":")
		rcfg.GroupID = cfg.Redis.StreamGroup
		bus, err := infra_eventbus.NewWithRedisClient(client, logger, rcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Redis event bus: %w", err)
		}
		return bus, bus.Close, nil
	case "memory", "":
		bus := infra_eventbus.NewWithMemory(logger)
		return bus, bus.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown broker type %q", cfg.Broker.Type)
	}
}

// NewLocker returns the submission lock named by LOCK_TYPE.
func NewLocker(cfg *config.App, client *redis.Client, logger *slog.Logger) lock.Locker {
	if strings.EqualFold(cfg.Lock.Type, "redis") && client != nil {
		return infra_lock.NewRedisLocker(client, cfg.Redis.KeyPrefix, cfg.Lock.TTL, logger)
	}
	return lock.NewKeyedMutex()
}

// NewSalaryProvider returns the HTTP salary client behind a cache. The cache
// lives in Redis when a client is available.
func NewSalaryProvider(cfg *config.App, client *redis.Client, logger *slog.Logger) provider.SalaryProvider {
	var c pkgcache.SalaryCache
	if client != nil {
		c = cache.NewRedisSalaryCache(client, cfg.Redis.KeyPrefix+cfg.SalaryProvider.CachePrefix, logger)
	} else {
		c = cache.NewMemoryCache()
	}
	return infra_provider.NewCachedSalaryProvider(
		infra_provider.NewSalaryAPIProvider(cfg.SalaryProvider, logger),
		c,
		cfg.SalaryProvider.CacheTTL,
		logger,
	)
}
