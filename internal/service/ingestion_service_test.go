package service

import (
	"context"
	"math"
	"testing"

	"HydroWatchAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func submitRequest(sensorID string, ph, turbidity, temperature, do float64) *models.SubmitReadingRequest {
	return &models.SubmitReadingRequest{
		SensorID:        sensorID,
		Name:            "Test Station",
		PH:              fptr(ph),
		Turbidity:       fptr(turbidity),
		Temperature:     fptr(temperature),
		DissolvedOxygen: fptr(do),
	}
}

func newTestPipeline(t *testing.T) (*IngestionService, *fakeSensorRepo, *fakeAlertRepo, *fakeHub) {
	t.Helper()

	log := newTestLogger(t)
	sensors := newFakeSensorRepo()
	alerts := &fakeAlertRepo{}
	hub := &fakeHub{}
	alertSvc := NewAlertService(alerts, hub, nil, "hydro/alerts", log)

	return NewIngestionService(sensors, alertSvc, hub, log), sensors, alerts, hub
}

func TestIngestReading(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy reading upserts and broadcasts sensor_update only", func(t *testing.T) {
		svc, sensors, alerts, hub := newTestPipeline(t)

		sensor, err := svc.IngestReading(ctx, submitRequest("sensor-1", 7.2, 10, 22, 8))
		require.NoError(t, err)

		assert.Equal(t, "sensor-1", sensor.SensorID)
		assert.Equal(t, models.StatusHealthy, sensor.Status)
		assert.True(t, sensor.IsActive)
		assert.Empty(t, alerts.alerts)
		assert.Equal(t, []string{models.EventSensorUpdate}, hub.eventTypes())
		assert.Len(t, sensors.history, 1)
	})

	t.Run("critical reading raises an alert and broadcasts both events", func(t *testing.T) {
		svc, _, alerts, hub := newTestPipeline(t)

		sensor, err := svc.IngestReading(ctx, submitRequest("sensor-1", 4.2, 45.2, 26.1, 2.8))
		require.NoError(t, err)

		assert.Equal(t, models.StatusCritical, sensor.Status)
		require.Len(t, alerts.alerts, 1)
		assert.Contains(t, alerts.alerts[0].Message, "4.2")
		assert.Contains(t, alerts.alerts[0].Message, "45.2")
		assert.Contains(t, alerts.alerts[0].Message, "2.8")
		assert.Equal(t, []string{models.EventSensorUpdate, models.EventAlert}, hub.eventTypes())
	})

	t.Run("identical reading twice keeps identity and status", func(t *testing.T) {
		svc, sensors, _, _ := newTestPipeline(t)

		first, err := svc.IngestReading(ctx, submitRequest("sensor-1", 7.2, 10, 22, 8))
		require.NoError(t, err)
		second, err := svc.IngestReading(ctx, submitRequest("sensor-1", 7.2, 10, 22, 8))
		require.NoError(t, err)

		assert.Equal(t, first.SensorID, second.SensorID)
		assert.Equal(t, first.Status, second.Status)
		assert.Len(t, sensors.sensors, 1)
	})

	t.Run("zero reading values are valid, not missing", func(t *testing.T) {
		svc, _, _, _ := newTestPipeline(t)

		sensor, err := svc.IngestReading(ctx, submitRequest("sensor-1", 0, 0, 0, 0))
		require.NoError(t, err)
		// ph 0 and DO 0 put the reading deep in the critical band.
		assert.Equal(t, models.StatusCritical, sensor.Status)
	})

	t.Run("missing field rejects before any mutation", func(t *testing.T) {
		svc, sensors, _, hub := newTestPipeline(t)

		req := submitRequest("sensor-1", 7.2, 10, 22, 8)
		req.PH = nil

		_, err := svc.IngestReading(ctx, req)
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Contains(t, err.Error(), "ph")
		assert.Empty(t, sensors.sensors)
		assert.Empty(t, hub.eventTypes())
	})

	t.Run("non-finite field rejects", func(t *testing.T) {
		svc, _, _, _ := newTestPipeline(t)

		req := submitRequest("sensor-1", 7.2, 10, 22, 8)
		req.Turbidity = fptr(math.NaN())

		_, err := svc.IngestReading(ctx, req)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("missing sensor id rejects", func(t *testing.T) {
		svc, _, _, _ := newTestPipeline(t)

		req := submitRequest("", 7.2, 10, 22, 8)

		_, err := svc.IngestReading(ctx, req)
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Contains(t, err.Error(), "sensorId")
	})

	t.Run("upsert failure aborts before any broadcast", func(t *testing.T) {
		svc, sensors, _, hub := newTestPipeline(t)
		sensors.failNext = models.ErrStorageUnavailable

		_, err := svc.IngestReading(ctx, submitRequest("sensor-1", 7.2, 10, 22, 8))
		assert.ErrorIs(t, err, models.ErrStorageUnavailable)
		assert.Empty(t, hub.eventTypes())
	})

	t.Run("alert persistence failure leaves the sensor write in place", func(t *testing.T) {
		svc, sensors, alerts, hub := newTestPipeline(t)
		alerts.failNext = models.ErrStorageUnavailable

		_, err := svc.IngestReading(ctx, submitRequest("sensor-1", 4.2, 45.2, 26.1, 2.8))
		assert.ErrorIs(t, err, models.ErrStorageUnavailable)

		// No rollback: the upsert stands even though the pipeline failed.
		stored, getErr := sensors.GetByID(ctx, "sensor-1")
		require.NoError(t, getErr)
		assert.Equal(t, models.StatusCritical, stored.Status)
		assert.Empty(t, hub.eventTypes())
	})
}

func TestProcessMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("valid payload flows through the pipeline", func(t *testing.T) {
		svc, sensors, _, _ := newTestPipeline(t)

		payload := []byte(`{"sensorId":"sensor-9","ph":7.1,"turbidity":12,"temperature":20,"dissolvedOxygen":7.5}`)
		require.NoError(t, svc.ProcessMessage(ctx, payload))
		assert.Len(t, sensors.sensors, 1)
	})

	t.Run("malformed payload is a validation error", func(t *testing.T) {
		svc, _, _, _ := newTestPipeline(t)

		err := svc.ProcessMessage(ctx, []byte("{not json"))
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestGetSensor(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestPipeline(t)

	_, err := svc.IngestReading(ctx, submitRequest("sensor-1", 7.2, 10, 22, 8))
	require.NoError(t, err)

	t.Run("active sensor is returned", func(t *testing.T) {
		sensor, err := svc.GetSensor(ctx, "sensor-1")
		require.NoError(t, err)
		assert.Equal(t, "sensor-1", sensor.SensorID)
	})

	t.Run("unknown sensor is not found", func(t *testing.T) {
		_, err := svc.GetSensor(ctx, "sensor-404")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("deactivated sensor is treated as absent", func(t *testing.T) {
		require.NoError(t, svc.DeactivateSensor(ctx, "sensor-1"))

		_, err := svc.GetSensor(ctx, "sensor-1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
