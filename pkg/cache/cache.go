package cache

import (
	"context"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain/user"
)

// SalaryCache caches salary snapshots by key. Get returns nil, nil on a miss.
type SalaryCache interface {
	Get(ctx context.Context, key string) (*user.SalaryInfo, error)
	Set(ctx context.Context, key string, info *user.SalaryInfo, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
