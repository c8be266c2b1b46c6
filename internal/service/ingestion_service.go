package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/models"
)

// IngestionService runs the per-reading pipeline:
// validate -> classify -> upsert -> alert engine -> broadcast.
// There is no rollback: a failure mid-pipeline leaves earlier effects in place.
type IngestionService struct {
	sensors models.SensorRepository
	alerts  *AlertService
	hub     Broadcaster
	log     *logger.Logger
}

func NewIngestionService(sensors models.SensorRepository, alerts *AlertService, hub Broadcaster, log *logger.Logger) *IngestionService {
	return &IngestionService{
		sensors: sensors,
		alerts:  alerts,
		hub:     hub,
		log:     log,
	}
}

// IngestReading processes one submitted reading and returns the post-write
// sensor record. Validation errors reject the reading before any mutation.
func (s *IngestionService) IngestReading(ctx context.Context, req *models.SubmitReadingRequest) (*models.Sensor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	readings := req.ToReadings()
	status := Classify(readings)

	sensor, err := s.sensors.Upsert(ctx, &models.Sensor{
		SensorID:  req.SensorID,
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Readings:  readings,
		Status:    status,
		Timestamp: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	// History append is best-effort; the current-state write already succeeded.
	if err := s.sensors.InsertReading(ctx, sensor.SensorID, readings, sensor.Timestamp); err != nil {
		s.log.Warn("Failed to append reading history for %s: %v", sensor.SensorID, err)
	}

	alert, err := s.alerts.Evaluate(ctx, sensor)
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(models.EventSensorUpdate, sensor)
	if alert != nil {
		s.hub.Broadcast(models.EventAlert, alert)
	}

	s.log.Info("Reading ingested: sensor=%s status=%s ph=%.2f", sensor.SensorID, sensor.Status, readings.PH)

	return sensor, nil
}

// ProcessMessage ingests a reading arriving over MQTT. The payload format is
// identical to the HTTP submission body.
func (s *IngestionService) ProcessMessage(ctx context.Context, payload []byte) error {
	var req models.SubmitReadingRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("%w: invalid reading payload: %v", models.ErrValidation, err)
	}

	_, err := s.IngestReading(ctx, &req)
	return err
}

// GetSensor returns one sensor by id; inactive sensors are treated as absent.
func (s *IngestionService) GetSensor(ctx context.Context, sensorID string) (*models.Sensor, error) {
	sensor, err := s.sensors.GetByID(ctx, sensorID)
	if err != nil {
		return nil, err
	}
	if !sensor.IsActive {
		return nil, fmt.Errorf("%w: sensor %s is deactivated", models.ErrNotFound, sensorID)
	}
	return sensor, nil
}

// ListSensors returns active sensors, most recently updated first.
func (s *IngestionService) ListSensors(ctx context.Context) ([]models.Sensor, error) {
	return s.sensors.ListActive(ctx)
}

// DeactivateSensor soft-deletes a sensor. Its alerts and history remain.
func (s *IngestionService) DeactivateSensor(ctx context.Context, sensorID string) error {
	return s.sensors.Deactivate(ctx, sensorID)
}
