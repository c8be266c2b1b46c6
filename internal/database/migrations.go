package database

import (
	"context"
	"fmt"
)

// Schema statements are idempotent so Migrate can run on every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sensors (
		sensor_id        TEXT PRIMARY KEY,
		name             TEXT NOT NULL DEFAULT '',
		latitude         DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude        DOUBLE PRECISION NOT NULL DEFAULT 0,
		ph               DOUBLE PRECISION NOT NULL,
		turbidity        DOUBLE PRECISION NOT NULL,
		temperature      DOUBLE PRECISION NOT NULL,
		dissolved_oxygen DOUBLE PRECISION NOT NULL,
		status           TEXT NOT NULL,
		timestamp        TIMESTAMPTZ NOT NULL,
		is_active        BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS sensor_readings (
		id               BIGSERIAL PRIMARY KEY,
		sensor_id        TEXT NOT NULL,
		ph               DOUBLE PRECISION NOT NULL,
		turbidity        DOUBLE PRECISION NOT NULL,
		temperature      DOUBLE PRECISION NOT NULL,
		dissolved_oxygen DOUBLE PRECISION NOT NULL,
		recorded_at      TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sensor_readings_sensor_time
		ON sensor_readings (sensor_id, recorded_at DESC)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id               UUID PRIMARY KEY,
		sensor_id        TEXT NOT NULL,
		location         TEXT NOT NULL DEFAULT '',
		severity         TEXT NOT NULL,
		message          TEXT NOT NULL,
		ph               DOUBLE PRECISION NOT NULL,
		turbidity        DOUBLE PRECISION NOT NULL,
		temperature      DOUBLE PRECISION NOT NULL,
		dissolved_oxygen DOUBLE PRECISION NOT NULL,
		is_resolved      BOOLEAN NOT NULL DEFAULT FALSE,
		timestamp        TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_alerts_unresolved
		ON alerts (timestamp DESC) WHERE is_resolved = FALSE`,

	`CREATE TABLE IF NOT EXISTS predictions (
		id               UUID PRIMARY KEY,
		sensor_id        TEXT NOT NULL,
		location         TEXT NOT NULL DEFAULT '',
		predicted_risk   TEXT NOT NULL,
		confidence       INTEGER NOT NULL,
		timeframe        TEXT NOT NULL,
		ph               DOUBLE PRECISION NOT NULL,
		turbidity        DOUBLE PRECISION NOT NULL,
		temperature      DOUBLE PRECISION NOT NULL,
		dissolved_oxygen DOUBLE PRECISION NOT NULL,
		timestamp        TIMESTAMPTZ NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_predictions_time
		ON predictions (timestamp DESC)`,
}

// Migrate applies the schema. Safe to call on every boot.
func (d *Database) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
