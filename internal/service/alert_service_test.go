package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"HydroWatchAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func criticalSensor() *models.Sensor {
	return &models.Sensor{
		SensorID:  "sensor-1",
		Name:      "River Mouth",
		Readings:  reading(4.2, 45.2, 26.1, 2.8),
		Status:    models.StatusCritical,
		Timestamp: time.Now(),
		IsActive:  true,
	}
}

func TestAlertServiceEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("no alert below critical", func(t *testing.T) {
		repo := &fakeAlertRepo{}
		svc := NewAlertService(repo, &fakeHub{}, nil, "hydro/alerts", newTestLogger(t))

		for _, status := range []string{models.StatusHealthy, models.StatusModerate} {
			sensor := criticalSensor()
			sensor.Status = status

			alert, err := svc.Evaluate(ctx, sensor)
			require.NoError(t, err)
			assert.Nil(t, alert)
		}
		assert.Empty(t, repo.alerts)
	})

	t.Run("critical reading raises one alert", func(t *testing.T) {
		repo := &fakeAlertRepo{}
		pub := &fakePublisher{}
		svc := NewAlertService(repo, &fakeHub{}, pub, "hydro/alerts", newTestLogger(t))

		alert, err := svc.Evaluate(ctx, criticalSensor())
		require.NoError(t, err)
		require.NotNil(t, alert)

		assert.Equal(t, models.SeverityCritical, alert.Severity)
		assert.Equal(t, "sensor-1", alert.SensorID)
		assert.False(t, alert.IsResolved)
		assert.Equal(t, reading(4.2, 45.2, 26.1, 2.8), alert.Parameters)
		assert.Contains(t, alert.Message, "4.2")
		assert.Contains(t, alert.Message, "45.2")
		assert.Contains(t, alert.Message, "2.8")

		require.Len(t, repo.alerts, 1)
		assert.Equal(t, alert.ID, repo.alerts[0].ID)
		assert.Equal(t, []string{"hydro/alerts"}, pub.published)
	})

	t.Run("repeated critical readings are not debounced", func(t *testing.T) {
		repo := &fakeAlertRepo{}
		svc := NewAlertService(repo, &fakeHub{}, nil, "hydro/alerts", newTestLogger(t))

		first, err := svc.Evaluate(ctx, criticalSensor())
		require.NoError(t, err)
		second, err := svc.Evaluate(ctx, criticalSensor())
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Len(t, repo.alerts, 2)
	})

	t.Run("insert failure aborts without an alert", func(t *testing.T) {
		repo := &fakeAlertRepo{failNext: models.ErrStorageUnavailable}
		svc := NewAlertService(repo, &fakeHub{}, nil, "hydro/alerts", newTestLogger(t))

		alert, err := svc.Evaluate(ctx, criticalSensor())
		assert.Nil(t, alert)
		assert.ErrorIs(t, err, models.ErrStorageUnavailable)
	})

	t.Run("publish failure does not fail the evaluation", func(t *testing.T) {
		repo := &fakeAlertRepo{}
		pub := &fakePublisher{err: errors.New("broker gone")}
		svc := NewAlertService(repo, &fakeHub{}, pub, "hydro/alerts", newTestLogger(t))

		alert, err := svc.Evaluate(ctx, criticalSensor())
		require.NoError(t, err)
		assert.NotNil(t, alert)
		assert.Len(t, repo.alerts, 1)
	})
}

func TestAlertServiceResolve(t *testing.T) {
	ctx := context.Background()

	repo := &fakeAlertRepo{}
	hub := &fakeHub{}
	svc := NewAlertService(repo, hub, nil, "hydro/alerts", newTestLogger(t))

	alert, err := svc.Evaluate(ctx, criticalSensor())
	require.NoError(t, err)

	t.Run("resolve flips the flag and broadcasts", func(t *testing.T) {
		resolved, err := svc.Resolve(ctx, alert.ID)
		require.NoError(t, err)
		assert.True(t, resolved.IsResolved)
		assert.Equal(t, []string{models.EventAlertResolved}, hub.eventTypes())
	})

	t.Run("second resolve is a no-op returning the same record", func(t *testing.T) {
		again, err := svc.Resolve(ctx, alert.ID)
		require.NoError(t, err)
		assert.True(t, again.IsResolved)
		assert.Equal(t, alert.ID, again.ID)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "no-such-alert")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("resolved alerts drop out of the unresolved list", func(t *testing.T) {
		open, err := svc.ListUnresolved(ctx)
		require.NoError(t, err)
		assert.Empty(t, open)
	})
}
