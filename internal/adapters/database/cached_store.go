package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/providers"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
)

const (
	cacheKeyPrefix      = "store:"
	generationKeyPrefix = "cachegen:store:"
)

// CachedStore wraps a Store with a read-through cache. Cache keys carry a
// per-kind generation that every write bumps after it commits, so an entry
// loaded before a write lands under a key that no reader asks for again.
type CachedStore struct {
	repositories.Store
	cache   providers.CacheProvider
	ttl     time.Duration
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedStore creates a cached store; ttl bounds how long superseded
// entries linger.
func NewCachedStore(store repositories.Store, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *CachedStore {
	return &CachedStore{
		Store:   store,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
	}
}

var _ repositories.Store = (*CachedStore)(nil)

func generationKey(kind entities.Kind) string {
	return generationKeyPrefix + string(kind)
}

func generationPrefix(kind entities.Kind, gen int64) string {
	return fmt.Sprintf("%s%s:g%d:", cacheKeyPrefix, kind, gen)
}

func recordCacheKey(kind entities.Kind, gen int64, id string) string {
	return generationPrefix(kind, gen) + "id:" + id
}

func listCacheKey(kind entities.Kind, gen int64, field, value string) string {
	if field == "" {
		return generationPrefix(kind, gen) + "list:*all"
	}
	return generationPrefix(kind, gen) + "list:" + field + "=" + value
}

// Get retrieves a record, filling the cache on a miss
func (c *CachedStore) Get(ctx context.Context, kind entities.Kind, id string) (*repositories.Record, error) {
	gen, ok := c.generation(ctx, kind)
	if !ok {
		return c.Store.Get(ctx, kind, id)
	}
	key := recordCacheKey(kind, gen, id)
	var rec repositories.Record
	if c.fromCache(ctx, kind, key, &rec) {
		return &rec, nil
	}

	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		found, err := c.Store.Get(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		c.toCache(ctx, key, found)
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*repositories.Record), nil
}

// List returns every record of a kind, filling the cache on a miss
func (c *CachedStore) List(ctx context.Context, kind entities.Kind) ([]*repositories.Record, error) {
	return c.cachedList(ctx, kind, "", "", func(ctx context.Context) ([]*repositories.Record, error) {
		return c.Store.List(ctx, kind)
	})
}

// ListByField returns matching records, filling the cache on a miss
func (c *CachedStore) ListByField(ctx context.Context, kind entities.Kind, field, value string) ([]*repositories.Record, error) {
	return c.cachedList(ctx, kind, field, value, func(ctx context.Context) ([]*repositories.Record, error) {
		return c.Store.ListByField(ctx, kind, field, value)
	})
}

func (c *CachedStore) cachedList(ctx context.Context, kind entities.Kind, field, value string, query func(context.Context) ([]*repositories.Record, error)) ([]*repositories.Record, error) {
	gen, ok := c.generation(ctx, kind)
	if !ok {
		return query(ctx)
	}
	key := listCacheKey(kind, gen, field, value)
	var records []*repositories.Record
	if c.fromCache(ctx, kind, key, &records) {
		return records, nil
	}

	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		found, err := query(ctx)
		if err != nil {
			return nil, err
		}
		c.toCache(ctx, key, found)
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*repositories.Record), nil
}

// load runs fn once per key across concurrent callers. The shared call is
// detached from any single caller's cancellation; each caller still returns
// as soon as its own ctx is done.
func (c *CachedStore) load(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(shared)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Insert stores the record and retires the kind's cached entries
func (c *CachedStore) Insert(ctx context.Context, kind entities.Kind, rec repositories.Record) error {
	if err := c.Store.Insert(ctx, kind, rec); err != nil {
		return err
	}
	c.bump(ctx, kind)
	return nil
}

// Mutate rewrites the record and retires the kind's cached entries
func (c *CachedStore) Mutate(ctx context.Context, kind entities.Kind, id string, fn repositories.MutateFunc) (*repositories.Record, error) {
	rec, err := c.Store.Mutate(ctx, kind, id, fn)
	if err != nil {
		return nil, err
	}
	c.bump(ctx, kind)
	return rec, nil
}

// MutateWhere rewrites matching records and retires the kind's cached entries
func (c *CachedStore) MutateWhere(ctx context.Context, kind entities.Kind, field, value string, fn repositories.MutateFunc) (int, error) {
	n, err := c.Store.MutateWhere(ctx, kind, field, value, fn)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.bump(ctx, kind)
	}
	return n, nil
}

// Reset clears the store, moves every kind to a new generation and drops the
// cached entries
func (c *CachedStore) Reset(ctx context.Context) error {
	if err := c.Store.Reset(ctx); err != nil {
		return err
	}
	for _, kind := range entities.AllKinds() {
		c.bump(ctx, kind)
	}
	c.dropPrefix(ctx, cacheKeyPrefix)
	return nil
}

// generation returns the kind's current generation. ok is false when the
// cache cannot be read, in which case callers go straight to the store.
func (c *CachedStore) generation(ctx context.Context, kind entities.Kind) (int64, bool) {
	data, err := c.cache.Get(ctx, generationKey(kind))
	if errors.Is(err, providers.ErrCacheMiss) {
		return 0, true
	}
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("cache generation read failed")
		observability.RecordCacheMiss(ctx, c.metrics, string(kind))
		return 0, false
	}
	gen, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("cache generation is not a number")
		return 0, false
	}
	return gen, true
}

// bump moves the kind to a new generation and drops the entries of the one
// it replaces. If the counter cannot be bumped every entry of the kind is
// dropped instead.
func (c *CachedStore) bump(ctx context.Context, kind entities.Kind) {
	gen, err := c.cache.Incr(ctx, generationKey(kind))
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("failed to bump cache generation")
		c.dropPrefix(ctx, fmt.Sprintf("%s%s:", cacheKeyPrefix, kind))
		return
	}
	c.dropPrefix(ctx, generationPrefix(kind, gen-1))
}

func (c *CachedStore) fromCache(ctx context.Context, kind entities.Kind, key string, dst any) bool {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		observability.RecordCacheMiss(ctx, c.metrics, string(kind))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached entry")
		return false
	}
	observability.RecordCacheHit(ctx, c.metrics, string(kind))
	return true
}

func (c *CachedStore) toCache(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to populate cache")
	}
}

func (c *CachedStore) dropPrefix(ctx context.Context, prefix string) {
	if err := c.cache.DeletePrefix(ctx, prefix); err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("failed to invalidate cache prefix")
	}
}
