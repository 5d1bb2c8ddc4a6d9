package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/payadvance/pkg/cache"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/redis/go-redis/v9"
)

// RedisSalaryCache implements SalaryCache using Redis.
type RedisSalaryCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisSalaryCache wraps an existing client. Keys are stored as prefix+key.
func NewRedisSalaryCache(client *redis.Client, prefix string, logger *slog.Logger) *RedisSalaryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSalaryCache{client: client, prefix: prefix, logger: logger}
}

func (r *RedisSalaryCache) key(key string) string {
	return r.prefix + key
}

func (r *RedisSalaryCache) Get(ctx context.Context, key string) (*user.SalaryInfo, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return nil, err
	}
	var info user.SalaryInfo
	if err := json.Unmarshal(val, &info); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", key, "error", err)
		return nil, err
	}
	r.logger.Debug("Redis cache hit", "key", key)
	return &info, nil
}

func (r *RedisSalaryCache) Set(ctx context.Context, key string, info *user.SalaryInfo, ttl time.Duration) error {
	data, err := json.Marshal(info)
	if err != nil {
		r.logger.Error("Redis cache marshal error", "key", key, "error", err)
		return err
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", key, "ttl", ttl)
	return nil
}

func (r *RedisSalaryCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Redis cache delete error", "key", key, "error", err)
		return err
	}
	return nil
}

var _ cache.SalaryCache = (*RedisSalaryCache)(nil)
