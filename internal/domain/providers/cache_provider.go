package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider is the byte cache behind the cached entity store.
// Entries are disposable: any error may be treated as a miss.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value for ttl; ttl <= 0 keeps it until deleted
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
	// Incr atomically adds one to the counter at key and returns the new value.
	// Counters never expire.
	Incr(ctx context.Context, key string) (int64, error)
}
