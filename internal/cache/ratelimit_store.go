package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"surveyrelay/internal/config"
)

const rateLimitPrefix = "surveyrelay:ratelimit"

// NewRateLimitStore returns the limiter store selected by cfg. The redis
// store lets several server instances share one budget; the returned
// client, when non-nil, must be closed by the caller.
func NewRateLimitStore(ctx context.Context, cfg config.RateLimitConfig) (limiter.Store, *redis.Client, error) {
	if cfg.Storage != "redis" {
		return NewMemoryStore(), nil, nil
	}

	rdb, err := NewRedisClient(ctx, cfg.RedisURI)
	if err != nil {
		return nil, nil, err
	}
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix: rateLimitPrefix,
	})
	if err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	return store, rdb, nil
}

// NewMemoryStore returns a process-local limiter store.
func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix: rateLimitPrefix,
	})
}
