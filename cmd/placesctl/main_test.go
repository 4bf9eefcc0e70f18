package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/placesreview/internal/bootstrap"
	"github.com/zatekoja/placesreview/pkg/config"
)

func useStore(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Store:  config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "places.db")},
		Engine: config.EngineConfig{Timezone: "Asia/Riyadh", ClosingSoonWithin: 30},
	}
	previous := openRuntime
	openRuntime = func(ctx context.Context) (*bootstrap.Runtime, error) {
		return bootstrap.Open(ctx, cfg, nil)
	}
	t.Cleanup(func() { openRuntime = previous })
	return cfg
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDistanceCmd(t *testing.T) {
	out, err := run(t, "distance", "24.7136", "46.6753", "21.4858", "39.1925")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "km"), out)
	assert.True(t, strings.HasPrefix(out, "8"), out)

	_, err = run(t, "distance", "a", "0", "0", "0")
	assert.Error(t, err)

	_, err = run(t, "distance", "1", "2")
	assert.Error(t, err)
}

func TestSeedStatusAndReset(t *testing.T) {
	cfg := useStore(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 4 users, 3 places, 4 reviews, 1 questions")
	assert.Contains(t, out, "places")

	ctx := context.Background()
	rt, err := bootstrap.Open(ctx, cfg, nil)
	require.NoError(t, err)
	places, err := rt.Services.Places.List(ctx, "restaurant")
	require.NoError(t, err)
	require.NoError(t, rt.Close())
	require.Len(t, places, 1)

	// Friday 13:00 in Riyadh, before the 16:00 opening.
	out, err = run(t, "status", places[0].ID, "--at", "2024-06-07T10:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "closed")

	// Monday 01:45 Riyadh, inside the 12:00-02:00 range that crosses midnight.
	out, err = run(t, "status", places[0].ID, "--at", "2024-06-09T22:45:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "closing_soon")

	_, err = run(t, "status", places[0].ID, "--at", "yesterday")
	assert.Error(t, err)

	_, err = run(t, "reset")
	assert.Error(t, err)

	out, err = run(t, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "store reset")

	_, err = run(t, "status", places[0].ID)
	assert.Error(t, err)
}
