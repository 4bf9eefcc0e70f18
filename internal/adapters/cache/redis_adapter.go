package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zatekoja/placesreview/internal/domain/providers"
	redisclient "github.com/zatekoja/placesreview/internal/infrastructure/clients/redis"
)

const scanBatch = 200

// RedisAdapter implements providers.CacheProvider on Redis strings
type RedisAdapter struct {
	rdb *redis.Client
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{rdb: client.Client()}
}

// Get returns the cached bytes or providers.ErrCacheMiss
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := a.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, providers.ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value under key
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := a.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete unlinks keys; missing keys are ignored
func (a *RedisAdapter) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := a.rdb.Unlink(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// DeletePrefix walks the keyspace with SCAN and unlinks each matching batch
func (a *RedisAdapter) DeletePrefix(ctx context.Context, prefix string) error {
	iter := a.rdb.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := a.Delete(ctx, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s*: %w", prefix, err)
	}
	return a.Delete(ctx, batch...)
}

// Incr bumps a counter with INCR; a missing key counts from zero
func (a *RedisAdapter) Incr(ctx context.Context, key string) (int64, error) {
	n, err := a.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache incr %s: %w", key, err)
	}
	return n, nil
}
