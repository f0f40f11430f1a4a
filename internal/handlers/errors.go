package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"vocabtrainer/internal/calibration"
	"vocabtrainer/internal/security"
	"vocabtrainer/internal/service"
	"vocabtrainer/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

// respondServiceError maps known service errors to a status and message.
// Anything unrecognised is logged and reported as a 500.
func respondServiceError(w http.ResponseWriter, logMsg string, err error) {
	status, known := statusForError(err)
	if !known {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
		return
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func statusForError(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrNoActiveRound),
		errors.Is(err, service.ErrNoCalibration),
		errors.Is(err, service.ErrCalibrationActive),
		errors.Is(err, calibration.ErrFinished),
		errors.Is(err, service.ErrNothingToPractice):
		return http.StatusConflict, true
	case errors.Is(err, calibration.ErrInvalidRating),
		errors.Is(err, validation.ErrInvalidEmail),
		errors.Is(err, validation.ErrInvalidPassword),
		errors.Is(err, validation.ErrInvalidName),
		errors.Is(err, validation.ErrTooManyWords):
		return http.StatusBadRequest, true
	case errors.Is(err, service.ErrUnknownCollection):
		return http.StatusNotFound, true
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, true
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, security.ErrInvalidToken):
		return http.StatusUnauthorized, true
	case errors.Is(err, service.ErrEmailNotConfigured):
		return http.StatusServiceUnavailable, true
	}
	return 0, false
}

// decodeJSON reads a bounded JSON body into dst, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return false
	}
	return true
}
