package postgres

import (
	"context"
	"fmt"
)

// schema creates the tables used by the repositories. Every statement is
// idempotent so it can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL,
		type          TEXT NOT NULL CHECK (type IN ('driver', 'passenger')),
		password_hash TEXT,
		profile_image TEXT,
		id_image      TEXT,
		license_image TEXT,
		car_image     TEXT,
		rating        DOUBLE PRECISION NOT NULL DEFAULT 5.0,
		trip_count    INTEGER NOT NULL DEFAULT 0,
		join_date     TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS trips (
		id            TEXT PRIMARY KEY,
		driver_id     TEXT NOT NULL,
		driver_name   TEXT NOT NULL,
		driver_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		origin        TEXT NOT NULL,
		destination   TEXT NOT NULL,
		trip_date     TEXT NOT NULL,
		trip_time     TEXT NOT NULL,
		seats         INTEGER NOT NULL CHECK (seats >= 0),
		passengers    TEXT[] NOT NULL DEFAULT '{}',
		car_model     TEXT,
		car_color     TEXT,
		car_image     TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (cardinality(passengers) <= seats)
	)`,
	`CREATE INDEX IF NOT EXISTS trips_driver_id_idx ON trips (driver_id)`,
	`CREATE INDEX IF NOT EXISTS trips_passengers_idx ON trips USING GIN (passengers)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
