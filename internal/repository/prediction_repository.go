package repository

import (
	"context"
	"database/sql"
	"fmt"

	"HydroWatchAPI/internal/models"
)

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// InsertBatch persists one prediction run inside a transaction.
func (r *PredictionRepository) InsertBatch(ctx context.Context, predictions []models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin prediction batch: %v", models.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO predictions (
			id, sensor_id, location, predicted_risk, confidence, timeframe,
			ph, turbidity, temperature, dissolved_oxygen, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("%w: prepare prediction insert: %v", models.ErrStorageUnavailable, err)
	}
	defer stmt.Close()

	for _, p := range predictions {
		_, err := stmt.ExecContext(
			ctx,
			p.ID,
			p.SensorID,
			p.Location,
			p.PredictedRisk,
			p.Confidence,
			p.Timeframe,
			p.PredictedParameters.PH,
			p.PredictedParameters.Turbidity,
			p.PredictedParameters.Temperature,
			p.PredictedParameters.DissolvedOxygen,
			p.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("%w: insert prediction for %s: %v", models.ErrStorageUnavailable, p.SensorID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit prediction batch: %v", models.ErrStorageUnavailable, err)
	}

	return nil
}

func (r *PredictionRepository) ListRecent(ctx context.Context, limit int) ([]models.Prediction, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, sensor_id, location, predicted_risk, confidence, timeframe,
		       ph, turbidity, temperature, dissolved_oxygen, timestamp
		FROM predictions
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list recent predictions: %v", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	predictions := []models.Prediction{}
	for rows.Next() {
		var p models.Prediction
		err := rows.Scan(
			&p.ID,
			&p.SensorID,
			&p.Location,
			&p.PredictedRisk,
			&p.Confidence,
			&p.Timeframe,
			&p.PredictedParameters.PH,
			&p.PredictedParameters.Turbidity,
			&p.PredictedParameters.Temperature,
			&p.PredictedParameters.DissolvedOxygen,
			&p.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan prediction: %v", models.ErrStorageUnavailable, err)
		}
		predictions = append(predictions, p)
	}

	return predictions, nil
}
