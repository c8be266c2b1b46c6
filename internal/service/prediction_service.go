package service

import (
	"context"
	"math/rand"
	"time"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/models"

	"github.com/google/uuid"
)

// PredictionBatchSize caps a run at the most-recently-updated active sensors.
const PredictionBatchSize = 10

// PredictionTimeframe labels the horizon of every forecast.
const PredictionTimeframe = "24h"

// RiskTier is the deterministic half of the predictor: a risk level and a
// confidence score from the current readings alone.
func RiskTier(r models.Readings) (string, int) {
	switch {
	case r.PH < 6.0 || r.Turbidity > 30 || r.DissolvedOxygen < 4:
		return models.RiskHigh, 85
	case r.PH < 6.5 || r.Turbidity > 20 || r.DissolvedOxygen < 5:
		return models.RiskMedium, 80
	default:
		return models.RiskLow, 75
	}
}

type PredictionService struct {
	sensors     models.SensorRepository
	predictions models.PredictionRepository
	hub         Broadcaster
	log         *logger.Logger
	rng         *rand.Rand
}

func NewPredictionService(sensors models.SensorRepository, predictions models.PredictionRepository, hub Broadcaster, log *logger.Logger) *PredictionService {
	return &PredictionService{
		sensors:     sensors,
		predictions: predictions,
		hub:         hub,
		log:         log,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate runs the predictor over up to PredictionBatchSize active sensors,
// persists the batch and broadcasts it.
func (s *PredictionService) Generate(ctx context.Context) ([]models.Prediction, error) {
	sensors, err := s.sensors.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(sensors) > PredictionBatchSize {
		sensors = sensors[:PredictionBatchSize]
	}

	batch := make([]models.Prediction, 0, len(sensors))
	now := time.Now()
	for _, sensor := range sensors {
		risk, confidence := RiskTier(sensor.Readings)

		batch = append(batch, models.Prediction{
			ID:                  uuid.NewString(),
			SensorID:            sensor.SensorID,
			Location:            sensor.Name,
			PredictedRisk:       risk,
			Confidence:          confidence,
			Timeframe:           PredictionTimeframe,
			PredictedParameters: s.project(sensor.Readings),
			Timestamp:           now,
		})
	}

	if err := s.predictions.InsertBatch(ctx, batch); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast(models.EventPredictionsUpdated, batch)
	}

	s.log.Info("Prediction batch generated: %d sensors", len(batch))

	return batch, nil
}

// project perturbs the current readings with a bounded jitter. Illustrative
// only: ph drifts down up to 0.5, turbidity up up to 5, temperature up up to
// 2, dissolved oxygen down up to 0.3.
func (s *PredictionService) project(r models.Readings) models.Readings {
	return models.Readings{
		PH:              r.PH - s.rng.Float64()*0.5,
		Turbidity:       r.Turbidity + s.rng.Float64()*5,
		Temperature:     r.Temperature + s.rng.Float64()*2,
		DissolvedOxygen: r.DissolvedOxygen - s.rng.Float64()*0.3,
	}
}

// ListRecent returns the latest predictions, capped at 10.
func (s *PredictionService) ListRecent(ctx context.Context) ([]models.Prediction, error) {
	return s.predictions.ListRecent(ctx, 10)
}
