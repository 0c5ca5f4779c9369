package handlers

import (
	"net/http"

	"kidoova/internal/logger"
	"kidoova/internal/service"
)

// ChildHandler handles child profiles and per-child insights
type ChildHandler struct {
	childService    *service.ChildService
	progressService *service.ProgressService
	rewardService   *service.RewardService
	scoringService  *service.ScoringService
	mediaService    *service.MediaService
	logger          *logger.Logger
}

// NewChildHandler creates a new child handler
func NewChildHandler(
	childService *service.ChildService,
	progressService *service.ProgressService,
	rewardService *service.RewardService,
	scoringService *service.ScoringService,
	mediaService *service.MediaService,
	log *logger.Logger,
) *ChildHandler {
	return &ChildHandler{
		childService:    childService,
		progressService: progressService,
		rewardService:   rewardService,
		scoringService:  scoringService,
		mediaService:    mediaService,
		logger:          log.With("component", "child_handler"),
	}
}

// ListChildren returns the children in the caller's family
func (h *ChildHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.childService.ListChildren(r.Context(), userID(r))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to list children", err)
		return
	}
	respondJSON(w, http.StatusOK, children)
}

// CreateChild adds a child to the caller's family
func (h *ChildHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	var in service.ChildInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	child, err := h.childService.CreateChild(r.Context(), userID(r), in)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to create child", err)
		return
	}
	respondJSON(w, http.StatusCreated, child)
}

// UpdateChild edits a child profile
func (h *ChildHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	var in service.ChildInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	child, err := h.childService.UpdateChild(r.Context(), userID(r), r.PathValue("id"), in)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to update child", err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// accessibleChild resolves the {id} path child for the caller, answering the
// request itself when the child is out of reach.
func (h *ChildHandler) accessibleChild(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	child, err := h.childService.GetChild(r.Context(), userID(r), r.PathValue(param))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load child", err)
		return "", false
	}
	return child.ID, true
}

// Progress returns the child's dashboard summary
func (h *ChildHandler) Progress(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.accessibleChild(w, r, "id")
	if !ok {
		return
	}
	progress, err := h.progressService.ChildProgress(r.Context(), childID)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load progress", err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// Rewards lists the rewards the child has earned
func (h *ChildHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.accessibleChild(w, r, "id")
	if !ok {
		return
	}
	rewards, err := h.rewardService.ChildRewards(r.Context(), childID)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load rewards", err)
		return
	}
	respondJSON(w, http.StatusOK, rewards)
}

// TraitScores lists the child's trait totals, highest first
func (h *ChildHandler) TraitScores(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.accessibleChild(w, r, "id")
	if !ok {
		return
	}
	scores, err := h.scoringService.TraitScores(r.Context(), childID)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load trait scores", err)
		return
	}
	respondJSON(w, http.StatusOK, scores)
}

// XPSummary returns what the child's latest completion of a challenge earned
func (h *ChildHandler) XPSummary(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.accessibleChild(w, r, "childId")
	if !ok {
		return
	}
	summary, err := h.scoringService.CompletionSummary(r.Context(), childID, r.PathValue("challengeId"))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load XP summary", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// ConfidenceTrend returns recent feelings and their direction
func (h *ChildHandler) ConfidenceTrend(w http.ResponseWriter, r *http.Request) {
	childID, ok := h.accessibleChild(w, r, "id")
	if !ok {
		return
	}
	trend, err := h.progressService.ConfidenceTrend(r.Context(), childID)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load confidence trend", err)
		return
	}
	respondJSON(w, http.StatusOK, trend)
}

// Media lists the child's uploads
func (h *ChildHandler) Media(w http.ResponseWriter, r *http.Request) {
	media, err := h.mediaService.ListChildMedia(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to list media", err)
		return
	}
	respondJSON(w, http.StatusOK, media)
}
