package common

import (
	"context"
	"time"
)

// CacheInterface defines the contract for cache implementations.
// Values are opaque bytes so both backends behave the same.
type CacheInterface interface {
	// Set stores a value with the given key and duration
	Set(ctx context.Context, key string, value []byte, duration time.Duration) error

	// Get returns the value and true if found, nil and false otherwise
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Delete removes a value by key
	Delete(ctx context.Context, key string) error

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// NewCache picks the backend named by the configuration
func NewCache(backend string, redisOpts RedisOptions) (CacheInterface, error) {
	if backend == "redis" {
		return NewRedisCacheService(redisOpts)
	}
	return NewCacheService(0, 60), nil
}
