package repository

import (
	"context"
	"database/sql"
	"fmt"

	"HydroWatchAPI/internal/models"
)

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Insert persists a new alert record. Alerts are immutable after creation
// except for the resolve transition.
func (r *AlertRepository) Insert(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (
			id, sensor_id, location, severity, message,
			ph, turbidity, temperature, dissolved_oxygen,
			is_resolved, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		alert.ID,
		alert.SensorID,
		alert.Location,
		alert.Severity,
		alert.Message,
		alert.Parameters.PH,
		alert.Parameters.Turbidity,
		alert.Parameters.Temperature,
		alert.Parameters.DissolvedOxygen,
		alert.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("%w: insert alert for %s: %v", models.ErrStorageUnavailable, alert.SensorID, err)
	}

	return nil
}

func (r *AlertRepository) ListUnresolved(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, sensor_id, location, severity, message,
		       ph, turbidity, temperature, dissolved_oxygen,
		       is_resolved, timestamp
		FROM alerts
		WHERE is_resolved = FALSE
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list unresolved alerts: %v", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		var a models.Alert
		err := rows.Scan(
			&a.ID,
			&a.SensorID,
			&a.Location,
			&a.Severity,
			&a.Message,
			&a.Parameters.PH,
			&a.Parameters.Turbidity,
			&a.Parameters.Temperature,
			&a.Parameters.DissolvedOxygen,
			&a.IsResolved,
			&a.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan alert: %v", models.ErrStorageUnavailable, err)
		}
		alerts = append(alerts, a)
	}

	return alerts, nil
}

// Resolve flips is_resolved and returns the post-write record. Resolving an
// already-resolved alert is a no-op that still returns the record; an unknown
// id is ErrNotFound.
func (r *AlertRepository) Resolve(ctx context.Context, id string) (*models.Alert, error) {
	query := `
		UPDATE alerts
		SET is_resolved = TRUE
		WHERE id = $1
		RETURNING id, sensor_id, location, severity, message,
		          ph, turbidity, temperature, dissolved_oxygen,
		          is_resolved, timestamp
	`

	var a models.Alert
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID,
		&a.SensorID,
		&a.Location,
		&a.Severity,
		&a.Message,
		&a.Parameters.PH,
		&a.Parameters.Turbidity,
		&a.Parameters.Temperature,
		&a.Parameters.DissolvedOxygen,
		&a.IsResolved,
		&a.Timestamp,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: alert %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: resolve alert %s: %v", models.ErrStorageUnavailable, id, err)
	}

	return &a, nil
}
