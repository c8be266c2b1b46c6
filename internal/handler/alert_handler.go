package handler

import (
	"net/http"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

type AlertHandler struct {
	alertService *service.AlertService
	log          *logger.Logger
}

func NewAlertHandler(alertService *service.AlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		log:          log,
	}
}

func (h *AlertHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/alerts", h.ListUnresolved).Methods("GET")
	r.HandleFunc("/alerts/{id}/resolve", h.Resolve).Methods("PUT")
}

func (h *AlertHandler) ListUnresolved(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alertService.ListUnresolved(r.Context())
	if err != nil {
		h.log.Error("Failed to list unresolved alerts: %v", err)
		respondServiceError(w, err)
		return
	}

	respondList(w, alerts, len(alerts))
}

func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	alert, err := h.alertService.Resolve(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to resolve alert %s: %v", id, err)
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, alert, "Alert resolved")
}
