package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payadvance/pkg/cache"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/amirasaad/payadvance/pkg/provider"
)

// CachedSalaryProvider puts a cache in front of another SalaryProvider.
// Cache errors are logged and treated as misses.
type CachedSalaryProvider struct {
	next   provider.SalaryProvider
	cache  cache.SalaryCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSalaryProvider creates a new CachedSalaryProvider.
func NewCachedSalaryProvider(
	next provider.SalaryProvider,
	c cache.SalaryCache,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedSalaryProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSalaryProvider{next: next, cache: c, ttl: ttl, logger: logger}
}

// GetSalaryInfo returns the cached snapshot or fetches and stores a fresh one.
func (c *CachedSalaryProvider) GetSalaryInfo(ctx context.Context, employeeID uint) (*user.SalaryInfo, error) {
	key := fmt.Sprintf("%d", employeeID)

	if info, err := c.cache.Get(ctx, key); err == nil && info != nil {
		c.logger.Debug("Cache hit for salary info", "employee_id", employeeID)
		return info, nil
	} else if err != nil {
		c.logger.Error("Error getting from cache", "key", key, "error", err)
	}

	info, err := c.next.GetSalaryInfo(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, info, c.ttl); err != nil {
		c.logger.Warn("Failed to cache salary info", "key", key, "error", err)
	}
	return info, nil
}

var _ provider.SalaryProvider = (*CachedSalaryProvider)(nil)
