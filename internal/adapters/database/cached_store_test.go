package database_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/placesreview/internal/adapters/cache"
	"github.com/zatekoja/placesreview/internal/adapters/database"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	redisclient "github.com/zatekoja/placesreview/internal/infrastructure/clients/redis"
	"github.com/zatekoja/placesreview/internal/testutil"
)

func newCachedStore(t *testing.T) (*database.CachedStore, *miniredis.Miniredis) {
	t.Helper()
	return newCachedStoreOver(t, testutil.NewStore(t))
}

func newCachedStoreOver(t *testing.T, inner repositories.Store) (*database.CachedStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	adapter := cache.NewRedisAdapter(redisclient.NewFromClient(rdb))
	return database.NewCachedStore(inner, adapter, 5*time.Minute, nil), mr
}

// gatedStore holds the next Get or ListByField after it has read from the
// inner store, until release is closed or the caller gives up.
type gatedStore struct {
	repositories.Store
	armed   atomic.Bool
	loaded  chan struct{}
	release chan struct{}
}

func newGatedStore(t *testing.T) *gatedStore {
	return &gatedStore{
		Store:   testutil.NewStore(t),
		loaded:  make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedStore) hold(ctx context.Context) error {
	if !g.armed.CompareAndSwap(true, false) {
		return nil
	}
	close(g.loaded)
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gatedStore) Get(ctx context.Context, kind entities.Kind, id string) (*repositories.Record, error) {
	rec, err := g.Store.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := g.hold(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

func (g *gatedStore) ListByField(ctx context.Context, kind entities.Kind, field, value string) ([]*repositories.Record, error) {
	records, err := g.Store.ListByField(ctx, kind, field, value)
	if err != nil {
		return nil, err
	}
	if err := g.hold(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func markRead(json.RawMessage) (json.RawMessage, error) {
	return json.RawMessage(`{"id":"n1","userId":"u1","read":true}`), nil
}

func TestCachedStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	store, mr := newCachedStore(t)

	require.NoError(t, store.Insert(ctx, entities.KindPlace, record(t, "p1", map[string]any{"name": "a"})))
	assert.False(t, mr.Exists("store:places:g1:id:p1"), "insert does not populate the cache")

	got, err := store.Get(ctx, entities.KindPlace, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.True(t, mr.Exists("store:places:g1:id:p1"))

	_, err = store.List(ctx, entities.KindPlace)
	require.NoError(t, err)
	assert.True(t, mr.Exists("store:places:g1:list:*all"))
}

func TestCachedStore_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	store, mr := newCachedStore(t)

	require.NoError(t, store.Insert(ctx, entities.KindPlace, record(t, "p1", map[string]any{"name": "a"})))
	_, err := store.Get(ctx, entities.KindPlace, "p1")
	require.NoError(t, err)
	_, err = store.List(ctx, entities.KindPlace)
	require.NoError(t, err)

	_, err = store.Mutate(ctx, entities.KindPlace, "p1", func(json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(`{"id":"p1","name":"b"}`), nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("store:places:g1:id:p1"))
	assert.False(t, mr.Exists("store:places:g1:list:*all"))
	gen, err := mr.Get("cachegen:store:places")
	require.NoError(t, err)
	assert.Equal(t, "2", gen)

	got, err := store.Get(ctx, entities.KindPlace, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","name":"b"}`, string(got.Data))

	require.NoError(t, store.Insert(ctx, entities.KindPlace, record(t, "p2", map[string]any{"name": "c"})))
	all, err := store.List(ctx, entities.KindPlace)
	require.NoError(t, err)
	assert.Len(t, all, 2, "inserts drop stale lists")
}

func TestCachedStore_LateLoadDoesNotOutliveWrite(t *testing.T) {
	ctx := context.Background()
	inner := newGatedStore(t)
	store, _ := newCachedStoreOver(t, inner)
	require.NoError(t, store.Insert(ctx, entities.KindNotification, record(t, "n1", map[string]any{"userId": "u1", "read": false})))

	t.Run("record", func(t *testing.T) {
		inner.loaded = make(chan struct{})
		inner.release = make(chan struct{})
		inner.armed.Store(true)

		done := make(chan *repositories.Record, 1)
		go func() {
			rec, err := store.Get(ctx, entities.KindNotification, "n1")
			assert.NoError(t, err)
			done <- rec
		}()
		<-inner.loaded

		_, err := store.Mutate(ctx, entities.KindNotification, "n1", markRead)
		require.NoError(t, err)
		close(inner.release)
		<-done

		got, err := store.Get(ctx, entities.KindNotification, "n1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"n1","userId":"u1","read":true}`, string(got.Data))
	})

	t.Run("list", func(t *testing.T) {
		_, err := store.Mutate(ctx, entities.KindNotification, "n1", func(json.RawMessage) (json.RawMessage, error) {
			return json.RawMessage(`{"id":"n1","userId":"u1","read":false}`), nil
		})
		require.NoError(t, err)

		inner.loaded = make(chan struct{})
		inner.release = make(chan struct{})
		inner.armed.Store(true)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := store.ListByField(ctx, entities.KindNotification, "userId", "u1")
			assert.NoError(t, err)
		}()
		<-inner.loaded

		n, err := store.MutateWhere(ctx, entities.KindNotification, "userId", "u1", markRead)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		close(inner.release)
		<-done

		records, err := store.ListByField(ctx, entities.KindNotification, "userId", "u1")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.JSONEq(t, `{"id":"n1","userId":"u1","read":true}`, string(records[0].Data))
	})
}

func TestCachedStore_SharedLoadSurvivesCallerCancel(t *testing.T) {
	ctx := context.Background()
	inner := newGatedStore(t)
	store, _ := newCachedStoreOver(t, inner)
	require.NoError(t, store.Insert(ctx, entities.KindUser, record(t, "u1", map[string]any{"name": "a"})))
	inner.armed.Store(true)

	first, cancel := context.WithCancel(ctx)
	firstErr := make(chan error, 1)
	go func() {
		_, err := store.Get(first, entities.KindUser, "u1")
		firstErr <- err
	}()
	<-inner.loaded

	second := make(chan *repositories.Record, 1)
	go func() {
		rec, err := store.Get(ctx, entities.KindUser, "u1")
		assert.NoError(t, err)
		second <- rec
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(inner.release)
	got := <-second
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
}

func TestCachedStore_ResetFlushesNamespace(t *testing.T) {
	ctx := context.Background()
	store, mr := newCachedStore(t)

	require.NoError(t, store.Insert(ctx, entities.KindUser, record(t, "u1", map[string]any{"name": "a"})))
	_, err := store.Get(ctx, entities.KindUser, "u1")
	require.NoError(t, err)
	require.NoError(t, mr.Set("unrelated", "kept"))

	require.NoError(t, store.Reset(ctx))
	assert.False(t, mr.Exists("store:users:g1:id:u1"))
	assert.True(t, mr.Exists("unrelated"))
	gen, err := mr.Get("cachegen:store:users")
	require.NoError(t, err)
	assert.Equal(t, "2", gen)

	users, err := store.List(ctx, entities.KindUser)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestCachedStore_FallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	store, mr := newCachedStore(t)
	require.NoError(t, store.Insert(ctx, entities.KindUser, record(t, "u1", map[string]any{"name": "a"})))

	mr.SetError("LOADING Redis is loading the dataset in memory")

	got, err := store.Get(ctx, entities.KindUser, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}
