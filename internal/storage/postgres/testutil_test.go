package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container for testing and applies the
// schema. Returns a cleanup function that must be called after tests
// complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	applySchema(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// applySchema mirrors the embedded closed_trades migration. The
// migrations package cannot be imported from here without a cycle.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS closed_trades (
			trade_id            TEXT PRIMARY KEY,
			pool_address        TEXT NOT NULL,
			strategy            TEXT NOT NULL,
			trade_type          TEXT NOT NULL,
			amount              DOUBLE PRECISION NOT NULL,
			slippage            DOUBLE PRECISION NOT NULL,
			entry_price         DOUBLE PRECISION NOT NULL,
			entry_timestamp_ms  BIGINT NOT NULL,
			exit_price          DOUBLE PRECISION NOT NULL,
			exit_timestamp_ms   BIGINT NOT NULL,
			pnl                 DOUBLE PRECISION NOT NULL,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	require.NoError(t, err, "failed to create closed_trades")

	_, err = pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_closed_trades_pool
			ON closed_trades (pool_address, entry_timestamp_ms)
	`)
	require.NoError(t, err, "failed to create index")
}

// ptr is a helper to create pointers to values.
func ptr[T any](v T) *T {
	return &v
}
