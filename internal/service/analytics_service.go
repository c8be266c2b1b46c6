package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// areaSensors is the fixed citizen-facing mapping from area id to the sensors
// that cover it.
var areaSensors = map[string][]string{
	"downtown":  {"sensor-1", "sensor-2", "sensor-3"},
	"riverside": {"sensor-4", "sensor-5"},
	"harbor":    {"sensor-6", "sensor-7", "sensor-8"},
	"uptown":    {"sensor-9", "sensor-10"},
}

var areaAdvisories = map[string]string{
	models.StatusHealthy:  "Water quality is within safe limits.",
	models.StatusModerate: "Water quality is degraded. Sensitive groups should avoid direct contact.",
	models.StatusCritical: "Water quality is critical. Avoid all contact until alerts are resolved.",
}

type AnalyticsService struct {
	sensors models.SensorRepository
	log     *logger.Logger
}

func NewAnalyticsService(sensors models.SensorRepository, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		sensors: sensors,
		log:     log,
	}
}

// GetDashboardStats aggregates active sensors and derives the overall WQI as
// the rounded percentage of healthy sensors. Zero active sensors yields 0.
func (s *AnalyticsService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.sensors.AggregateStats(ctx)
	if err != nil {
		return nil, err
	}

	stats.OverallWQI = ComputeWQI(stats.HealthySensors, stats.TotalSensors)

	return stats, nil
}

// ComputeWQI approximates a water quality index as round(healthy/total*100).
func ComputeWQI(healthy, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(healthy) / float64(total) * 100))
}

// GenerateReport aggregates reading history over a date range, optionally
// filtered to a set of sensors.
func (s *AnalyticsService) GenerateReport(ctx context.Context, req *models.ReportRequest) (*models.Report, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: startDate and endDate are required", models.ErrValidation)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: endDate precedes startDate", models.ErrValidation)
	}

	rows, err := s.sensors.ReportRows(ctx, req.StartDate, req.EndDate, req.SensorIDs)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		GeneratedAt: time.Now(),
		Rows:        rows,
	}
	for _, row := range rows {
		report.TotalAlerts += row.AlertCount
	}

	s.log.Debug("Report generated: %d sensors, %d alerts", len(rows), report.TotalAlerts)

	return report, nil
}

// RenderReportPDF renders a report as a single-page table.
func (s *AnalyticsService) RenderReportPDF(report *models.Report) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Hydro Watch - Water Quality Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s    Generated: %s",
		report.StartDate.Format("2006-01-02"),
		report.EndDate.Format("2006-01-02"),
		report.GeneratedAt.Format("2006-01-02 15:04"),
	))
	pdf.Ln(12)

	headers := []string{"Sensor", "Samples", "Avg pH", "Avg Turbidity", "Avg Temp", "Avg DO", "Alerts", "Status"}
	widths := []float64{60, 25, 25, 30, 25, 25, 25, 30}

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range report.Rows {
		cells := []string{
			fmt.Sprintf("%s (%s)", row.Name, row.SensorID),
			fmt.Sprintf("%d", row.SampleCount),
			fmt.Sprintf("%.2f", row.AvgPH),
			fmt.Sprintf("%.2f", row.AvgTurbidity),
			fmt.Sprintf("%.1f", row.AvgTemperature),
			fmt.Sprintf("%.2f", row.AvgDissolvedOxygen),
			fmt.Sprintf("%d", row.AlertCount),
			row.CurrentStatus,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 8, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// GetAreaSummary builds the citizen-facing view for a mapped area. An unmapped
// area id is ErrNotFound.
func (s *AnalyticsService) GetAreaSummary(ctx context.Context, areaID string) (*models.AreaSummary, error) {
	sensorIDs, ok := areaSensors[areaID]
	if !ok {
		return nil, fmt.Errorf("%w: area %s", models.ErrNotFound, areaID)
	}

	sensors, err := s.sensors.ListByIDs(ctx, sensorIDs)
	if err != nil {
		return nil, err
	}

	summary := &models.AreaSummary{
		AreaID:      areaID,
		SensorCount: len(sensors),
		UpdatedAt:   time.Now(),
	}

	overall := models.StatusHealthy
	for _, sensor := range sensors {
		switch sensor.Status {
		case models.StatusHealthy:
			summary.HealthySensors++
		case models.StatusModerate:
			summary.ModerateSensors++
			if overall == models.StatusHealthy {
				overall = models.StatusModerate
			}
		case models.StatusCritical:
			summary.CriticalSensors++
			overall = models.StatusCritical
		}
	}

	summary.OverallStatus = overall
	summary.Advisory = areaAdvisories[overall]

	return summary, nil
}
