// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zatekoja/placesreview/internal/adapters/database"
	"github.com/zatekoja/placesreview/internal/infrastructure/clients/sqlite"
)

// NewStore opens a fresh in-memory SQLite entity store closed at test cleanup.
func NewStore(t testing.TB) *database.SQLStore {
	t.Helper()
	ctx := context.Background()

	client, err := sqlite.NewClient(ctx, sqlite.MemoryPath)
	require.NoError(t, err)

	store, err := database.NewSQLStore(ctx, client, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
