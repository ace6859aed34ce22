// Package postgres applies the versioned schema to the hosted Postgres
// backend over a direct connection.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // Postgres driver

	"github.com/mmynk/weddingcard/internal/storage/migrate"
	"github.com/mmynk/weddingcard/internal/storage/postgres/migrations"
)

// Open connects to dsn and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return db, nil
}

// Migrate applies pending migrations and returns the names it applied.
func Migrate(ctx context.Context, db *sql.DB) ([]string, error) {
	applied, err := migrate.Apply(ctx, db, migrations.FS, ".", migrate.Postgres)
	if err != nil {
		return applied, fmt.Errorf("failed to run migrations: %w", err)
	}
	return applied, nil
}
