// internal/models/models.go

package models

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// Sensor status values derived by the classifier.
const (
	StatusHealthy  = "healthy"
	StatusModerate = "moderate"
	StatusCritical = "critical"
)

// Alert severity values. The schema allows the full range but the engine
// currently only emits SeverityCritical.
const (
	SeverityLow      = "low"
	SeverityModerate = "moderate"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Prediction risk tiers.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// WebSocket event types pushed to every connected subscriber.
const (
	EventSensorUpdate       = "sensor_update"
	EventAlert              = "alert"
	EventAlertResolved      = "alert_resolved"
	EventPredictionsUpdated = "predictions_updated"
)

// Readings is the four-field water-quality measurement for a sensor.
// Temperature is recorded but never affects the derived status.
type Readings struct {
	PH              float64 `json:"ph" db:"ph"`
	Turbidity       float64 `json:"turbidity" db:"turbidity"`
	Temperature     float64 `json:"temperature" db:"temperature"`
	DissolvedOxygen float64 `json:"dissolvedOxygen" db:"dissolved_oxygen"`
}

// Sensor is the current-state record for a monitoring station, one row per
// sensor_id. Status is always derived from Readings, never set independently.
type Sensor struct {
	SensorID  string    `json:"sensorId" db:"sensor_id"`
	Name      string    `json:"name" db:"name"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	Readings  Readings  `json:"readings"`
	Status    string    `json:"status" db:"status"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	IsActive  bool      `json:"isActive" db:"is_active"`
}

// Alert is a persisted record of a critical condition. Alerts reference their
// sensor by id only; deactivating a sensor never deletes its alerts.
type Alert struct {
	ID         string    `json:"id" db:"id"`
	SensorID   string    `json:"sensorId" db:"sensor_id"`
	Location   string    `json:"location" db:"location"`
	Severity   string    `json:"severity" db:"severity"`
	Message    string    `json:"message" db:"message"`
	Parameters Readings  `json:"parameters"`
	IsResolved bool      `json:"isResolved" db:"is_resolved"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// Prediction is a heuristic short-horizon risk forecast. Predictions are
// write-once and accumulate without pruning.
type Prediction struct {
	ID                  string    `json:"id" db:"id"`
	SensorID            string    `json:"sensorId" db:"sensor_id"`
	Location            string    `json:"location" db:"location"`
	PredictedRisk       string    `json:"predictedRisk" db:"predicted_risk"`
	Confidence          int       `json:"confidence" db:"confidence"`
	Timeframe           string    `json:"timeframe" db:"timeframe"`
	PredictedParameters Readings  `json:"predictedParameters"`
	Timestamp           time.Time `json:"timestamp" db:"timestamp"`
}

// SubmitReadingRequest is the inbound reading payload. The four measurement
// fields are pointers so a legitimate zero reading (e.g. ph 0) can be told
// apart from a missing field.
type SubmitReadingRequest struct {
	SensorID        string   `json:"sensorId"`
	Name            string   `json:"name"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	PH              *float64 `json:"ph"`
	Turbidity       *float64 `json:"turbidity"`
	Temperature     *float64 `json:"temperature"`
	DissolvedOxygen *float64 `json:"dissolvedOxygen"`
}

// Validate checks that all required fields are present and finite. Errors wrap
// ErrValidation.
func (r *SubmitReadingRequest) Validate() error {
	var missing []string

	if r.SensorID == "" {
		missing = append(missing, "sensorId")
	}

	fields := []struct {
		name string
		val  *float64
	}{
		{"ph", r.PH},
		{"turbidity", r.Turbidity},
		{"temperature", r.Temperature},
		{"dissolvedOxygen", r.DissolvedOxygen},
	}
	for _, f := range fields {
		if f.val == nil {
			missing = append(missing, f.name)
			continue
		}
		if math.IsNaN(*f.val) || math.IsInf(*f.val, 0) {
			return fmt.Errorf("%w: field %s is not a finite number", ErrValidation, f.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	return nil
}

// ToReadings converts the validated request into a measurement snapshot.
// Call Validate first; nil fields panic here.
func (r *SubmitReadingRequest) ToReadings() Readings {
	return Readings{
		PH:              *r.PH,
		Turbidity:       *r.Turbidity,
		Temperature:     *r.Temperature,
		DissolvedOxygen: *r.DissolvedOxygen,
	}
}

// DashboardStats is the aggregate view over active sensors.
type DashboardStats struct {
	TotalSensors       int     `json:"totalSensors"`
	HealthySensors     int     `json:"healthySensors"`
	ModerateSensors    int     `json:"moderateSensors"`
	CriticalSensors    int     `json:"criticalSensors"`
	AvgPH              float64 `json:"avgPh"`
	AvgTurbidity       float64 `json:"avgTurbidity"`
	AvgTemperature     float64 `json:"avgTemperature"`
	AvgDissolvedOxygen float64 `json:"avgDissolvedOxygen"`
	OverallWQI         int     `json:"overallWQI"`
}

// ReportRequest selects a date range and an optional set of sensors.
type ReportRequest struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	SensorIDs []string  `json:"sensorIds"`
}

// ReportRow aggregates the reading history of one sensor over the report range.
type ReportRow struct {
	SensorID           string  `json:"sensorId"`
	Name               string  `json:"name"`
	SampleCount        int     `json:"sampleCount"`
	AvgPH              float64 `json:"avgPh"`
	AvgTurbidity       float64 `json:"avgTurbidity"`
	AvgTemperature     float64 `json:"avgTemperature"`
	AvgDissolvedOxygen float64 `json:"avgDissolvedOxygen"`
	AlertCount         int     `json:"alertCount"`
	CurrentStatus      string  `json:"currentStatus"`
}

// Report is the full date-ranged aggregation.
type Report struct {
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Rows        []ReportRow `json:"rows"`
	TotalAlerts int         `json:"totalAlerts"`
}

// AreaSummary is the citizen-facing view of a fixed group of sensors.
type AreaSummary struct {
	AreaID          string    `json:"areaId"`
	SensorCount     int       `json:"sensorCount"`
	HealthySensors  int       `json:"healthySensors"`
	ModerateSensors int       `json:"moderateSensors"`
	CriticalSensors int       `json:"criticalSensors"`
	OverallStatus   string    `json:"overallStatus"`
	Advisory        string    `json:"advisory"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// APIResponse is the uniform envelope for every HTTP response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Total   int         `json:"total,omitempty"`
}

// HealthResponse reports service identity and component reachability.
type HealthResponse struct {
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Services  struct {
		Database bool `json:"database"`
		MQTT     bool `json:"mqtt"`
	} `json:"services"`
}

type SensorRepository interface {
	Upsert(ctx context.Context, sensor *Sensor) (*Sensor, error)
	GetByID(ctx context.Context, sensorID string) (*Sensor, error)
	ListActive(ctx context.Context) ([]Sensor, error)
	ListByIDs(ctx context.Context, sensorIDs []string) ([]Sensor, error)
	Deactivate(ctx context.Context, sensorID string) error
	InsertReading(ctx context.Context, sensorID string, readings Readings, recordedAt time.Time) error
	AggregateStats(ctx context.Context) (*DashboardStats, error)
	ReportRows(ctx context.Context, start, end time.Time, sensorIDs []string) ([]ReportRow, error)
}

type AlertRepository interface {
	Insert(ctx context.Context, alert *Alert) error
	ListUnresolved(ctx context.Context, limit int) ([]Alert, error)
	Resolve(ctx context.Context, id string) (*Alert, error)
}

type PredictionRepository interface {
	InsertBatch(ctx context.Context, predictions []Prediction) error
	ListRecent(ctx context.Context, limit int) ([]Prediction, error)
}
