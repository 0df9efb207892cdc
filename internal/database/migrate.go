package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS stations (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS stations_name_idx ON stations (lower(name))`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id            TEXT PRIMARY KEY,
		station_id    TEXT NOT NULL REFERENCES stations (id) ON DELETE CASCADE,
		start_date    TEXT NOT NULL,
		end_date      TEXT NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_station_idx ON bookings (station_id, start_date)`,
}

// Migrate creates the station and booking tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}
