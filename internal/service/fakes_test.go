package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/models"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(logger.Config{Level: logger.ERROR})
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}
	return log
}

// fakeSensorRepo is an in-memory stand-in with the same upsert semantics as
// the Postgres repository: readings, status and timestamp always replace; name
// and coordinates only when non-zero; is_active survives updates.
type fakeSensorRepo struct {
	mu       sync.Mutex
	sensors  map[string]models.Sensor
	history  []models.Readings
	failNext error
}

func newFakeSensorRepo() *fakeSensorRepo {
	return &fakeSensorRepo{sensors: make(map[string]models.Sensor)}
}

func (f *fakeSensorRepo) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeSensorRepo) Upsert(ctx context.Context, sensor *models.Sensor) (*models.Sensor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeFailure(); err != nil {
		return nil, err
	}

	out, exists := f.sensors[sensor.SensorID]
	if !exists {
		out = models.Sensor{SensorID: sensor.SensorID, IsActive: true}
	}
	if sensor.Name != "" {
		out.Name = sensor.Name
	}
	if sensor.Latitude != 0 {
		out.Latitude = sensor.Latitude
	}
	if sensor.Longitude != 0 {
		out.Longitude = sensor.Longitude
	}
	out.Readings = sensor.Readings
	out.Status = sensor.Status
	out.Timestamp = sensor.Timestamp

	f.sensors[sensor.SensorID] = out
	return &out, nil
}

func (f *fakeSensorRepo) GetByID(ctx context.Context, sensorID string) (*models.Sensor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sensors[sensorID]
	if !ok {
		return nil, fmt.Errorf("%w: sensor %s", models.ErrNotFound, sensorID)
	}
	return &s, nil
}

func (f *fakeSensorRepo) ListActive(ctx context.Context) ([]models.Sensor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeFailure(); err != nil {
		return nil, err
	}

	out := []models.Sensor{}
	for _, s := range f.sensors {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (f *fakeSensorRepo) ListByIDs(ctx context.Context, sensorIDs []string) ([]models.Sensor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Sensor{}
	for _, id := range sensorIDs {
		if s, ok := f.sensors[id]; ok && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSensorRepo) Deactivate(ctx context.Context, sensorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sensors[sensorID]
	if !ok {
		return fmt.Errorf("%w: sensor %s", models.ErrNotFound, sensorID)
	}
	s.IsActive = false
	f.sensors[sensorID] = s
	return nil
}

func (f *fakeSensorRepo) InsertReading(ctx context.Context, sensorID string, readings models.Readings, recordedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.history = append(f.history, readings)
	return nil
}

func (f *fakeSensorRepo) AggregateStats(ctx context.Context) (*models.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeFailure(); err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{}
	for _, s := range f.sensors {
		if !s.IsActive {
			continue
		}
		stats.TotalSensors++
		switch s.Status {
		case models.StatusHealthy:
			stats.HealthySensors++
		case models.StatusModerate:
			stats.ModerateSensors++
		case models.StatusCritical:
			stats.CriticalSensors++
		}
		stats.AvgPH += s.Readings.PH
		stats.AvgTurbidity += s.Readings.Turbidity
		stats.AvgTemperature += s.Readings.Temperature
		stats.AvgDissolvedOxygen += s.Readings.DissolvedOxygen
	}
	if stats.TotalSensors > 0 {
		n := float64(stats.TotalSensors)
		stats.AvgPH /= n
		stats.AvgTurbidity /= n
		stats.AvgTemperature /= n
		stats.AvgDissolvedOxygen /= n
	}
	return stats, nil
}

func (f *fakeSensorRepo) ReportRows(ctx context.Context, start, end time.Time, sensorIDs []string) ([]models.ReportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeFailure(); err != nil {
		return nil, err
	}

	out := []models.ReportRow{}
	for _, s := range f.sensors {
		out = append(out, models.ReportRow{
			SensorID:      s.SensorID,
			Name:          s.Name,
			SampleCount:   1,
			CurrentStatus: s.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SensorID < out[j].SensorID })
	return out, nil
}

type fakeAlertRepo struct {
	mu       sync.Mutex
	alerts   []models.Alert
	failNext error
}

func (f *fakeAlertRepo) Insert(ctx context.Context, alert *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeAlertRepo) ListUnresolved(ctx context.Context, limit int) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Alert{}
	for i := len(f.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		if !f.alerts[i].IsResolved {
			out = append(out, f.alerts[i])
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) Resolve(ctx context.Context, id string) (*models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].IsResolved = true
			a := f.alerts[i]
			return &a, nil
		}
	}
	return nil, fmt.Errorf("%w: alert %s", models.ErrNotFound, id)
}

type fakePredictionRepo struct {
	mu       sync.Mutex
	batches  [][]models.Prediction
	failNext error
}

func (f *fakePredictionRepo) InsertBatch(ctx context.Context, predictions []models.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.batches = append(f.batches, predictions)
	return nil
}

func (f *fakePredictionRepo) ListRecent(ctx context.Context, limit int) ([]models.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Prediction{}
	for i := len(f.batches) - 1; i >= 0; i-- {
		for _, p := range f.batches[i] {
			if len(out) == limit {
				return out, nil
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeHub records broadcast events in order.
type fakeHub struct {
	mu     sync.Mutex
	events []fakeEvent
}

type fakeEvent struct {
	Type    string
	Payload interface{}
}

func (f *fakeHub) Broadcast(eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fakeEvent{Type: eventType, Payload: payload})
}

func (f *fakeHub) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	types := make([]string, len(f.events))
	for i, e := range f.events {
		types[i] = e.Type
	}
	return types
}

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (f *fakePublisher) PublishJSON(topic string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, topic)
	return nil
}
