package handler

import (
	"encoding/json"
	"net/http"

	"HydroWatchAPI/internal/logger"
	"HydroWatchAPI/internal/models"
	"HydroWatchAPI/internal/service"

	"github.com/gorilla/mux"
)

type SensorHandler struct {
	ingestion *service.IngestionService
	log       *logger.Logger
}

func NewSensorHandler(ingestion *service.IngestionService, log *logger.Logger) *SensorHandler {
	return &SensorHandler{
		ingestion: ingestion,
		log:       log,
	}
}

func (h *SensorHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sensors/readings", h.SubmitReading).Methods("POST")
	r.HandleFunc("/sensors", h.ListSensors).Methods("GET")
	r.HandleFunc("/sensors/{sensor_id}", h.GetSensor).Methods("GET")
	r.HandleFunc("/sensors/{sensor_id}", h.DeactivateSensor).Methods("DELETE")
}

func (h *SensorHandler) SubmitReading(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	sensor, err := h.ingestion.IngestReading(r.Context(), &req)
	if err != nil {
		h.log.Error("Failed to ingest reading: %v", err)
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, sensor, "Reading processed, status: "+sensor.Status)
}

func (h *SensorHandler) ListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := h.ingestion.ListSensors(r.Context())
	if err != nil {
		h.log.Error("Failed to list sensors: %v", err)
		respondServiceError(w, err)
		return
	}

	respondList(w, sensors, len(sensors))
}

func (h *SensorHandler) GetSensor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sensorID := vars["sensor_id"]

	sensor, err := h.ingestion.GetSensor(r.Context(), sensorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, sensor, "")
}

func (h *SensorHandler) DeactivateSensor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sensorID := vars["sensor_id"]

	if err := h.ingestion.DeactivateSensor(r.Context(), sensorID); err != nil {
		h.log.Error("Failed to deactivate sensor %s: %v", sensorID, err)
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil, "Sensor deactivated")
}
