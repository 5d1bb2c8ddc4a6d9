package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/payadvance/pkg/cache"
	"github.com/amirasaad/payadvance/pkg/domain/user"
)

// MemoryCache implements SalaryCache using in-memory storage.
type MemoryCache struct {
	entries map[string]cacheEntry
	mu      sync.RWMutex
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type cacheEntry struct {
	info      user.SalaryInfo
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache and starts its janitor.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go c.cleanup(5 * time.Minute)
	return c
}

// Get retrieves an entry; expired entries are misses.
func (c *MemoryCache) Get(_ context.Context, key string) (*user.SalaryInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, nil
	}
	info := entry.info
	return &info, nil
}

// Set stores a copy of info with a TTL.
func (c *MemoryCache) Set(_ context.Context, key string, info *user.SalaryInfo, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{info: *info, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Close stops the janitor.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := c.now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

var _ cache.SalaryCache = (*MemoryCache)(nil)
