// Package bootstrap opens the configured backends and wires the domain services.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/placesreview/internal/adapters/cache"
	"github.com/zatekoja/placesreview/internal/adapters/database"
	"github.com/zatekoja/placesreview/internal/adapters/events"
	"github.com/zatekoja/placesreview/internal/application/services"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	"github.com/zatekoja/placesreview/internal/domain/providers"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	"github.com/zatekoja/placesreview/internal/domain/status"
	"github.com/zatekoja/placesreview/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/placesreview/internal/infrastructure/clients/redis"
	"github.com/zatekoja/placesreview/internal/infrastructure/clients/sqlite"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
	"github.com/zatekoja/placesreview/pkg/config"
)

// Runtime holds the opened backends and the services built on them
type Runtime struct {
	Services *services.Services
	Store    repositories.Store
	Bus      providers.EventBus
	Catalog  *messages.Catalog
	Status   *status.Engine

	closers []func() error
}

// Open connects the store, the optional Redis cache and event bus, loads the
// message catalog and builds the services. Close releases everything Open
// acquired, in reverse order.
func Open(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*Runtime, error) {
	rt := &Runtime{}

	catalog, err := messages.Load(cfg.Engine.MessagesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load message catalog: %w", err)
	}
	rt.Catalog = catalog
	rt.Status = status.NewEngine(catalog, cfg.Engine.Location(), cfg.Engine.ClosingSoonWithin)

	client, err := openSQL(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sqlStore, err := database.NewSQLStore(ctx, client, metrics)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	rt.closers = append(rt.closers, sqlStore.Close)
	rt.Store = sqlStore

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			// Continue without Redis; the store and in-process bus still work.
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache and shared event bus")
		} else {
			rt.closers = append(rt.closers, redisClient.Close)
			rt.Store = database.NewCachedStore(sqlStore, cache.NewRedisAdapter(redisClient), cfg.Redis.CacheTTL, metrics)
			rt.Bus = events.NewRedisEventBus(redisClient)
			log.Info().Msg("store cache and redis event bus enabled")
		}
	}
	if rt.Bus == nil {
		rt.Bus = events.NewMemoryEventBus()
	}
	rt.closers = append(rt.closers, rt.Bus.Close)

	rt.Services = services.New(services.Deps{
		Store:   rt.Store,
		Bus:     rt.Bus,
		Catalog: catalog,
		Status:  rt.Status,
		Rewards: cfg.Rewards,
		Metrics: metrics,
	})
	return rt, nil
}

func openSQL(ctx context.Context, cfg *config.Config) (database.SQLClient, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		client, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
		}
		return client, nil
	default:
		client, err := sqlite.NewClient(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite client: %w", err)
		}
		return client, nil
	}
}

// Close releases the backends
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
