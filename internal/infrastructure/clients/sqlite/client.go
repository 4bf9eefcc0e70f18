// Package sqlite opens the on-device database file backing the entity store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/zatekoja/placesreview/pkg/retry"
)

// Dialect is the goqu dialect name matching this driver
const Dialect = "sqlite3"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Client wraps a single-connection SQLite handle. One connection serializes
// every statement, so each transaction is a critical section.
type Client struct {
	db   *sql.DB
	path string
}

// NewClient opens (creating if needed) the database at path.
func NewClient(ctx context.Context, path string) (*Client, error) {
	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// synchronous(FULL) makes a commit durable before it returns.
		dsn = "file:" + path +
			"?_pragma=journal_mode(WAL)" +
			"&_pragma=synchronous(FULL)" +
			"&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := retry.Do(ctx, retry.DefaultConfig(), "sqlite", db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("opened SQLite database")
	return &Client{db: db, path: path}, nil
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the goqu dialect for this client
func (c *Client) Dialect() string {
	return Dialect
}

// Path returns the database file path
func (c *Client) Path() string {
	return c.path
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}
