// internal/handler/analytics_handler.go

package handler

import (
	"encoding/json"
	"net/http"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/models"
	"HydroWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	log              *logger.Logger
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		log:              log,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/dashboard/stats", h.GetDashboardStats).Methods("GET")
	r.HandleFunc("/reports", h.GenerateReport).Methods("POST")
	r.HandleFunc("/reports/pdf", h.GenerateReportPDF).Methods("POST")
	r.HandleFunc("/areas/{area_id}/summary", h.GetAreaSummary).Methods("GET")
}

func (h *AnalyticsHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analyticsService.GetDashboardStats(r.Context())
	if err != nil {
		h.log.Error("Failed to get dashboard stats: %v", err)
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, stats, "")
}

func (h *AnalyticsHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	report, err := h.analyticsService.GenerateReport(r.Context(), &req)
	if err != nil {
		h.log.Error("Failed to generate report: %v", err)
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, report, "")
}

// GenerateReportPDF returns the same report rendered as a PDF document.
func (h *AnalyticsHandler) GenerateReportPDF(w http.ResponseWriter, r *http.Request) {
	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	report, err := h.analyticsService.GenerateReport(r.Context(), &req)
	if err != nil {
		h.log.Error("Failed to generate report: %v", err)
		respondServiceError(w, err)
		return
	}

	pdf, err := h.analyticsService.RenderReportPDF(report)
	if err != nil {
		h.log.Error("Failed to render report PDF: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="water-quality-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *AnalyticsHandler) GetAreaSummary(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	areaID := vars["area_id"]

	summary, err := h.analyticsService.GetAreaSummary(r.Context(), areaID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, summary, "")
}
