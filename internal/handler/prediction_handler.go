package handler

import (
	"net/http"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

type PredictionHandler struct {
	predictionService *service.PredictionService
	log               *logger.Logger
}

func NewPredictionHandler(predictionService *service.PredictionService, log *logger.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		log:               log,
	}
}

func (h *PredictionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/predictions", h.ListRecent).Methods("GET")
	r.HandleFunc("/predictions/generate", h.Generate).Methods("POST")
}

func (h *PredictionHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.predictionService.ListRecent(r.Context())
	if err != nil {
		h.log.Error("Failed to list predictions: %v", err)
		respondServiceError(w, err)
		return
	}

	respondList(w, predictions, len(predictions))
}

func (h *PredictionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	batch, err := h.predictionService.Generate(r.Context())
	if err != nil {
		h.log.Error("Failed to generate predictions: %v", err)
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, batch, "Prediction batch generated")
}
