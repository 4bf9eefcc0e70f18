package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/placesreview/pkg/config"
	"github.com/zatekoja/placesreview/pkg/retry"
)

// Client owns the go-redis connection pool shared by the cache and the event bus
type Client struct {
	client *redis.Client
}

// NewClient dials Redis and retries PING until the server answers or the
// startup budget runs out
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	policy := retry.DefaultConfig()
	policy.MaxTotalTimeout = 10 * time.Second
	err := retry.Do(ctx, policy, "redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr(), err)
	}

	log.Info().Str("addr", cfg.RedisAddr()).Int("db", cfg.DB).Msg("connected to Redis")
	return &Client{client: rdb}, nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(client *redis.Client) *Client {
	return &Client{client: client}
}

// Client returns the underlying go-redis client
func (c *Client) Client() *redis.Client {
	return c.client
}

// Close closes the pool
func (c *Client) Close() error {
	return c.client.Close()
}
