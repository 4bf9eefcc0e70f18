package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PLACES_POLL_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "data/places.db", cfg.Store.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.Engine.PollInterval)
	assert.Equal(t, 30, cfg.Engine.ClosingSoonWithin)
	assert.Equal(t, 10, cfg.Rewards.Review)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://places.example")
	t.Setenv("PLACES_POLL_INTERVAL", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Contains(t, cfg.Database.DatabaseDSN(), "host=db.internal")
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, []string{"http://localhost:5173", "https://places.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Engine.PollInterval)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestEngineConfig_LocationFallback(t *testing.T) {
	cfg := EngineConfig{Timezone: "Not/AZone"}

	loc := cfg.Location()
	_, offset := time.Date(2024, 1, 1, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, 3*60*60, offset)
}
