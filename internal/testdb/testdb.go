//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests using it are skipped unless
// PALETTE_TEST_DATABASE_URL is set.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/palette-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// EnvDatabaseURL names the variable holding the test database DSN.
const EnvDatabaseURL = "PALETTE_TEST_DATABASE_URL"

// Timeout bounds each setup step against the database.
const Timeout = 30 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// DatabaseURL returns the test DSN or "" when none is configured.
func DatabaseURL() string {
	return os.Getenv(EnvDatabaseURL)
}

// Open connects to the test database and applies all migrations once per
// test binary. The connection is closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := DatabaseURL()
	if dsn == "" {
		t.Skipf("%s not set, skipping database test", EnvDatabaseURL)
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "ping test database")

	migrateOnce.Do(func() {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		migrateErr = postgres.Migrate(ctx, db, "up", logger)
	})
	require.NoError(t, migrateErr, "migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// never see each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "begin test transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("rollback test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
