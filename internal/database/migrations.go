package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createPotsTable,
		createSeatsTable,
		createSeatsPotIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// seat_count keeps whatever was declared; the normalizer clamps on read.
// schema_version 0 marks rows written before empty seats were stored as ''.
const createPotsTable = `
CREATE TABLE IF NOT EXISTS pots (
    id UUID PRIMARY KEY,
    title VARCHAR(200) NOT NULL,
    total NUMERIC(12,2) NOT NULL CHECK (total > 0),
    seat_count NUMERIC(6,2) NOT NULL,
    fee_per_seat NUMERIC(10,2) NOT NULL DEFAULT 0,
    event_at TIMESTAMPTZ NOT NULL,
    bank_name VARCHAR(100),
    iban VARCHAR(64),
    schema_version INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// seq breaks created_at ties between seats inserted in the same transaction
const createSeatsTable = `
CREATE TABLE IF NOT EXISTS seats (
    id UUID PRIMARY KEY,
    seq BIGSERIAL,
    pot_id UUID NOT NULL REFERENCES pots(id),
    name VARCHAR(100) NOT NULL DEFAULT '',
    paid BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createSeatsPotIndex = `
CREATE INDEX IF NOT EXISTS seats_pot_id_created_idx
ON seats (pot_id, created_at, seq);`
