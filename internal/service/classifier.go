package service

import "HydroWatchAPI/internal/models"

// Classification thresholds. All comparisons are strict: a reading sitting
// exactly on a boundary (e.g. ph 6.5) stays in the better band.
const (
	PHModerateLow     = 6.5
	PHModerateHigh    = 8.5
	TurbidityModerate = 25.0
	DOModerate        = 5.0

	PHCriticalLow     = 5.5
	PHCriticalHigh    = 9.0
	TurbidityCritical = 35.0
	DOCritical        = 3.0
)

// Classify derives a sensor status from a reading. Pure and deterministic.
// Both bands are checked; the critical band overrides moderate. Temperature is
// recorded but intentionally does not influence status.
func Classify(r models.Readings) string {
	status := models.StatusHealthy

	if r.PH < PHModerateLow || r.PH > PHModerateHigh ||
		r.Turbidity > TurbidityModerate || r.DissolvedOxygen < DOModerate {
		status = models.StatusModerate
	}

	if r.PH < PHCriticalLow || r.PH > PHCriticalHigh ||
		r.Turbidity > TurbidityCritical || r.DissolvedOxygen < DOCritical {
		status = models.StatusCritical
	}

	return status
}
