package handlers

import (
	"net/http"

	"kidoova/internal/logger"
	"kidoova/internal/service"
)

// CompletionHandler handles challenge completions and reflections
type CompletionHandler struct {
	completionService *service.CompletionService
	logger            *logger.Logger
}

// NewCompletionHandler creates a new completion handler
func NewCompletionHandler(completionService *service.CompletionService, log *logger.Logger) *CompletionHandler {
	return &CompletionHandler{
		completionService: completionService,
		logger:            log.With("component", "completion_handler"),
	}
}

// LogChallenge records a completion, scores it and grants rewards
func (h *CompletionHandler) LogChallenge(w http.ResponseWriter, r *http.Request) {
	var req service.CompletionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	result, err := h.completionService.Complete(r.Context(), userID(r), req)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to log challenge", err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// SaveReflection stores how a challenge felt
func (h *CompletionHandler) SaveReflection(w http.ResponseWriter, r *http.Request) {
	var req service.ReflectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	reflection, err := h.completionService.SaveReflection(r.Context(), userID(r), req)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to save reflection", err)
		return
	}
	respondJSON(w, http.StatusCreated, reflection)
}
