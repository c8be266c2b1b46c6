package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"HydroWatchAPI/internal/models"
)

func respondJSON(w http.ResponseWriter, statusCode int, envelope models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		return
	}
}

func respondData(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	respondJSON(w, statusCode, models.APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondList(w http.ResponseWriter, data interface{}, total int) {
	respondJSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Data:    data,
		Total:   total,
	})
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondServiceError maps the error taxonomy onto status codes: validation
// 400, not found 404, everything else (including storage failures) 500 with
// the underlying message embedded.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
