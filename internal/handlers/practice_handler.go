package handlers

import (
	"net/http"
	"strconv"

	"kidoova/internal/logger"
	"kidoova/internal/models"
	"kidoova/internal/service"
)

// PracticeHandler serves practice modules and records step progress
type PracticeHandler struct {
	practiceService *service.PracticeService
	logger          *logger.Logger
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService, log *logger.Logger) *PracticeHandler {
	return &PracticeHandler{
		practiceService: practiceService,
		logger:          log.With("component", "practice_handler"),
	}
}

type practiceModulesResponse struct {
	Modules []models.PracticeModule `json:"modules"`
}

// ListModules returns modules for ?child_id=, optionally narrowed by ?pillar_id=
func (h *PracticeHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	var pillarID *int
	if raw := r.URL.Query().Get("pillar_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid pillar id"})
			return
		}
		pillarID = &id
	}

	modules, err := h.practiceService.ListModules(r.Context(), userID(r), r.URL.Query().Get("child_id"), pillarID)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to list practice modules", err)
		return
	}
	respondJSON(w, http.StatusOK, practiceModulesResponse{Modules: modules})
}

// RecordStep marks a practice step complete
func (h *PracticeHandler) RecordStep(w http.ResponseWriter, r *http.Request) {
	var req service.PracticeStepRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	progress, err := h.practiceService.RecordStep(r.Context(), userID(r), req)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to update practice progress", err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}
