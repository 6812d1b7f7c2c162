package repository

import (
	"context"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'USER',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cars (
		id                  BIGSERIAL PRIMARY KEY,
		name                TEXT NOT NULL,
		price_per_day       NUMERIC NOT NULL CHECK (price_per_day >= 0),
		image               TEXT NOT NULL,
		features            TEXT[] NOT NULL DEFAULT '{}',
		available           BOOLEAN NOT NULL DEFAULT TRUE,
		type                TEXT NOT NULL DEFAULT 'CAR',
		registration_number TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id                   BIGSERIAL PRIMARY KEY,
		car_id               BIGINT NOT NULL REFERENCES cars(id) ON DELETE CASCADE,
		user_id              BIGINT NOT NULL,
		customer_email       TEXT NOT NULL DEFAULT '',
		pickup_at            TIMESTAMPTZ NOT NULL,
		dropoff_at           TIMESTAMPTZ NOT NULL,
		total_price          NUMERIC NOT NULL CHECK (total_price >= 0),
		status               TEXT NOT NULL DEFAULT 'PENDING',
		payment_status       TEXT NOT NULL DEFAULT 'UNPAID',
		driving_license_path TEXT NOT NULL DEFAULT '',
		cancel_reason        TEXT NOT NULL DEFAULT '',
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (pickup_at < dropoff_at)
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_user_id_idx ON bookings (user_id)`,
	`CREATE INDEX IF NOT EXISTS bookings_pending_created_idx ON bookings (created_at) WHERE status = 'PENDING'`,
}

// EnsureSchema creates the tables when they are missing. It is safe to run on every start.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return domain.StoreError(err, "ensure schema")
		}
	}
	return nil
}
