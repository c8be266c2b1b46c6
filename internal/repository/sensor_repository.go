package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"HydroWatchAPI/internal/models"
)

type SensorRepository struct {
	db *sql.DB
}

func NewSensorRepository(db *sql.DB) *SensorRepository {
	return &SensorRepository{db: db}
}

// Upsert creates or replaces the current-state record for a sensor in a single
// statement. The ON CONFLICT write is the atomicity boundary: two concurrent
// writers for the same sensor_id cannot interleave into a torn record.
// Name and coordinates only change when the caller supplies non-zero values.
func (r *SensorRepository) Upsert(ctx context.Context, sensor *models.Sensor) (*models.Sensor, error) {
	query := `
		INSERT INTO sensors (
			sensor_id, name, latitude, longitude,
			ph, turbidity, temperature, dissolved_oxygen,
			status, timestamp, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		ON CONFLICT (sensor_id) DO UPDATE SET
			name             = COALESCE(NULLIF(EXCLUDED.name, ''), sensors.name),
			latitude         = CASE WHEN EXCLUDED.latitude  <> 0 THEN EXCLUDED.latitude  ELSE sensors.latitude  END,
			longitude        = CASE WHEN EXCLUDED.longitude <> 0 THEN EXCLUDED.longitude ELSE sensors.longitude END,
			ph               = EXCLUDED.ph,
			turbidity        = EXCLUDED.turbidity,
			temperature      = EXCLUDED.temperature,
			dissolved_oxygen = EXCLUDED.dissolved_oxygen,
			status           = EXCLUDED.status,
			timestamp        = EXCLUDED.timestamp
		RETURNING sensor_id, name, latitude, longitude,
		          ph, turbidity, temperature, dissolved_oxygen,
		          status, timestamp, is_active
	`

	var out models.Sensor
	err := r.db.QueryRowContext(
		ctx, query,
		sensor.SensorID,
		sensor.Name,
		sensor.Latitude,
		sensor.Longitude,
		sensor.Readings.PH,
		sensor.Readings.Turbidity,
		sensor.Readings.Temperature,
		sensor.Readings.DissolvedOxygen,
		sensor.Status,
		sensor.Timestamp,
	).Scan(
		&out.SensorID,
		&out.Name,
		&out.Latitude,
		&out.Longitude,
		&out.Readings.PH,
		&out.Readings.Turbidity,
		&out.Readings.Temperature,
		&out.Readings.DissolvedOxygen,
		&out.Status,
		&out.Timestamp,
		&out.IsActive,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: upsert sensor %s: %v", models.ErrStorageUnavailable, sensor.SensorID, err)
	}

	return &out, nil
}

func (r *SensorRepository) GetByID(ctx context.Context, sensorID string) (*models.Sensor, error) {
	query := `
		SELECT sensor_id, name, latitude, longitude,
		       ph, turbidity, temperature, dissolved_oxygen,
		       status, timestamp, is_active
		FROM sensors
		WHERE sensor_id = $1
	`

	var s models.Sensor
	err := r.db.QueryRowContext(ctx, query, sensorID).Scan(
		&s.SensorID,
		&s.Name,
		&s.Latitude,
		&s.Longitude,
		&s.Readings.PH,
		&s.Readings.Turbidity,
		&s.Readings.Temperature,
		&s.Readings.DissolvedOxygen,
		&s.Status,
		&s.Timestamp,
		&s.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: sensor %s", models.ErrNotFound, sensorID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get sensor %s: %v", models.ErrStorageUnavailable, sensorID, err)
	}

	return &s, nil
}

func (r *SensorRepository) ListActive(ctx context.Context) ([]models.Sensor, error) {
	query := `
		SELECT sensor_id, name, latitude, longitude,
		       ph, turbidity, temperature, dissolved_oxygen,
		       status, timestamp, is_active
		FROM sensors
		WHERE is_active = TRUE
		ORDER BY timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list active sensors: %v", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return scanSensors(rows)
}

func (r *SensorRepository) ListByIDs(ctx context.Context, sensorIDs []string) ([]models.Sensor, error) {
	if len(sensorIDs) == 0 {
		return []models.Sensor{}, nil
	}

	placeholders := make([]string, len(sensorIDs))
	args := make([]interface{}, len(sensorIDs))
	for i, id := range sensorIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT sensor_id, name, latitude, longitude,
		       ph, turbidity, temperature, dissolved_oxygen,
		       status, timestamp, is_active
		FROM sensors
		WHERE sensor_id IN (%s) AND is_active = TRUE
		ORDER BY timestamp DESC
	`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list sensors by id: %v", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return scanSensors(rows)
}

// Deactivate soft-deletes a sensor. The row and its alerts stay in place.
func (r *SensorRepository) Deactivate(ctx context.Context, sensorID string) error {
	query := `UPDATE sensors SET is_active = FALSE WHERE sensor_id = $1`

	result, err := r.db.ExecContext(ctx, query, sensorID)
	if err != nil {
		return fmt.Errorf("%w: deactivate sensor %s: %v", models.ErrStorageUnavailable, sensorID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deactivate sensor %s: %v", models.ErrStorageUnavailable, sensorID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: sensor %s", models.ErrNotFound, sensorID)
	}

	return nil
}

// InsertReading appends to the per-sensor measurement history used by reports.
func (r *SensorRepository) InsertReading(ctx context.Context, sensorID string, readings models.Readings, recordedAt time.Time) error {
	query := `
		INSERT INTO sensor_readings (sensor_id, ph, turbidity, temperature, dissolved_oxygen, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		sensorID,
		readings.PH,
		readings.Turbidity,
		readings.Temperature,
		readings.DissolvedOxygen,
		recordedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert reading for %s: %v", models.ErrStorageUnavailable, sensorID, err)
	}

	return nil
}

// AggregateStats computes status counts and per-field averages over active
// sensors. COALESCE keeps the averages at zero when no sensor is active.
func (r *SensorRepository) AggregateStats(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'healthy'),
			COUNT(*) FILTER (WHERE status = 'moderate'),
			COUNT(*) FILTER (WHERE status = 'critical'),
			COALESCE(AVG(ph), 0),
			COALESCE(AVG(turbidity), 0),
			COALESCE(AVG(temperature), 0),
			COALESCE(AVG(dissolved_oxygen), 0)
		FROM sensors
		WHERE is_active = TRUE
	`

	stats := &models.DashboardStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalSensors,
		&stats.HealthySensors,
		&stats.ModerateSensors,
		&stats.CriticalSensors,
		&stats.AvgPH,
		&stats.AvgTurbidity,
		&stats.AvgTemperature,
		&stats.AvgDissolvedOxygen,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate sensor stats: %v", models.ErrStorageUnavailable, err)
	}

	return stats, nil
}

// ReportRows aggregates the reading history per sensor over a date range,
// joined with the alert count for the same range.
func (r *SensorRepository) ReportRows(ctx context.Context, start, end time.Time, sensorIDs []string) ([]models.ReportRow, error) {
	var conditions []string
	args := []interface{}{start, end}
	argCount := 3

	if len(sensorIDs) > 0 {
		placeholders := make([]string, len(sensorIDs))
		for i, id := range sensorIDs {
			placeholders[i] = fmt.Sprintf("$%d", argCount)
			args = append(args, id)
			argCount++
		}
		conditions = append(conditions, fmt.Sprintf("s.sensor_id IN (%s)", strings.Join(placeholders, ",")))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			s.sensor_id,
			s.name,
			COUNT(r.id),
			COALESCE(AVG(r.ph), 0),
			COALESCE(AVG(r.turbidity), 0),
			COALESCE(AVG(r.temperature), 0),
			COALESCE(AVG(r.dissolved_oxygen), 0),
			(SELECT COUNT(*) FROM alerts a
			  WHERE a.sensor_id = s.sensor_id
			    AND a.timestamp >= $1 AND a.timestamp <= $2),
			s.status
		FROM sensors s
		LEFT JOIN sensor_readings r
			ON r.sensor_id = s.sensor_id
			AND r.recorded_at >= $1 AND r.recorded_at <= $2
		WHERE s.is_active = TRUE %s
		GROUP BY s.sensor_id, s.name, s.status
		ORDER BY s.sensor_id
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: report query: %v", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	report := []models.ReportRow{}
	for rows.Next() {
		var row models.ReportRow
		err := rows.Scan(
			&row.SensorID,
			&row.Name,
			&row.SampleCount,
			&row.AvgPH,
			&row.AvgTurbidity,
			&row.AvgTemperature,
			&row.AvgDissolvedOxygen,
			&row.AlertCount,
			&row.CurrentStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan report row: %v", models.ErrStorageUnavailable, err)
		}
		report = append(report, row)
	}

	return report, nil
}

func scanSensors(rows *sql.Rows) ([]models.Sensor, error) {
	sensors := []models.Sensor{}
	for rows.Next() {
		var s models.Sensor
		err := rows.Scan(
			&s.SensorID,
			&s.Name,
			&s.Latitude,
			&s.Longitude,
			&s.Readings.PH,
			&s.Readings.Turbidity,
			&s.Readings.Temperature,
			&s.Readings.DissolvedOxygen,
			&s.Status,
			&s.Timestamp,
			&s.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan sensor: %v", models.ErrStorageUnavailable, err)
		}
		sensors = append(sensors, s)
	}

	return sensors, nil
}
