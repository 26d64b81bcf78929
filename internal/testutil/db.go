package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const pricePointsDDL = `
CREATE TABLE IF NOT EXISTS price_points (
    id         BIGSERIAL PRIMARY KEY,
    timestamp  BIGINT NOT NULL UNIQUE,
    price      DOUBLE PRECISION NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SetupPool creates a pgxpool.Pool for integration tests and ensures the
// price_points table exists with a clean slate. Tests are skipped when
// TEST_DATABASE_URL is not configured.
func SetupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	ctx := context.Background()
	if _, err := pool.Exec(ctx, pricePointsDDL); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE price_points"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return pool
}

// EnvOr returns the value of an environment variable or a fallback
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
