package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"kidoova/internal/logger"
	"kidoova/internal/repository"
	"kidoova/internal/security"
	"kidoova/internal/service"
	"kidoova/internal/validation"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, log *logger.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Error(logMsg, "status", status, "error", err)
	}

	respondJSON(w, status, errorBody{Error: userMsg})
}

// respondWithServiceError answers with the status a service error stands for.
// Unrecognised errors are logged and reported as a generic 500.
func respondWithServiceError(w http.ResponseWriter, log *logger.Logger, logMsg string, err error) {
	var validationErr validation.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: validationErr.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrChildNotFound),
		errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrPillarNotFound),
		errors.Is(err, service.ErrThemeNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPracticeNotFound),
		errors.Is(err, service.ErrNoFamily):
		respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrAlreadyCompletedToday),
		errors.Is(err, service.ErrAlreadyInFamily),
		errors.Is(err, repository.ErrDuplicate):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorBody{Error: ErrForbiddenMsg})
	case errors.Is(err, service.ErrInviteInvalid):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrInviteExpired):
		respondJSON(w, http.StatusGone, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrUnsupportedProvider):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, security.ErrInvalidToken):
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: ErrInvalidTokenMsg})
	case errors.Is(err, service.ErrMediaDisabled):
		respondJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	default:
		respondWithError(w, log, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
