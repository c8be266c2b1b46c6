package service

import (
	"context"
	"fmt"
	"time"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/models"

	"github.com/google/uuid"
)

// Broadcaster fans a typed event out to every live subscriber.
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// AlertPublisher pushes alert records to the MQTT side channel.
type AlertPublisher interface {
	PublishJSON(topic string, data interface{}) error
}

type AlertService struct {
	repo        models.AlertRepository
	hub         Broadcaster
	publisher   AlertPublisher
	alertsTopic string
	log         *logger.Logger
}

func NewAlertService(repo models.AlertRepository, hub Broadcaster, publisher AlertPublisher, alertsTopic string, log *logger.Logger) *AlertService {
	return &AlertService{
		repo:        repo,
		hub:         hub,
		publisher:   publisher,
		alertsTopic: alertsTopic,
		log:         log,
	}
}

// Evaluate fires an alert if and only if the sensor classified critical.
// The alert is persisted before returning. Repeated critical readings are not
// debounced: every one produces a fresh alert record.
func (s *AlertService) Evaluate(ctx context.Context, sensor *models.Sensor) (*models.Alert, error) {
	if sensor.Status != models.StatusCritical {
		return nil, nil
	}

	alert := &models.Alert{
		ID:       uuid.NewString(),
		SensorID: sensor.SensorID,
		Location: sensor.Name,
		Severity: models.SeverityCritical,
		Message: fmt.Sprintf(
			"Critical water quality at %s: pH %.1f, turbidity %.1f NTU, dissolved oxygen %.1f mg/L",
			sensor.Name, sensor.Readings.PH, sensor.Readings.Turbidity, sensor.Readings.DissolvedOxygen,
		),
		Parameters: sensor.Readings,
		IsResolved: false,
		Timestamp:  time.Now(),
	}

	if err := s.repo.Insert(ctx, alert); err != nil {
		return nil, err
	}

	s.log.Warn("Critical alert raised: sensor=%s ph=%.1f turbidity=%.1f do=%.1f",
		sensor.SensorID, sensor.Readings.PH, sensor.Readings.Turbidity, sensor.Readings.DissolvedOxygen)

	if s.publisher != nil {
		if err := s.publisher.PublishJSON(s.alertsTopic, alert); err != nil {
			s.log.Warn("Failed to publish alert to MQTT: %v", err)
		}
	}

	return alert, nil
}

// ListUnresolved returns open alerts, newest first, capped at 50.
func (s *AlertService) ListUnresolved(ctx context.Context) ([]models.Alert, error) {
	return s.repo.ListUnresolved(ctx, 50)
}

// Resolve marks an alert resolved and broadcasts the transition. Resolving an
// already-resolved alert returns the same record without error.
func (s *AlertService) Resolve(ctx context.Context, id string) (*models.Alert, error) {
	alert, err := s.repo.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(models.EventAlertResolved, alert)
	}

	return alert, nil
}
