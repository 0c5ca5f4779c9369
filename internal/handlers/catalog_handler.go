package handlers

import (
	"net/http"
	"strconv"

	"kidoova/internal/logger"
	"kidoova/internal/service"
)

// CatalogHandler serves pillars, challenges, themes and the reward catalog
type CatalogHandler struct {
	catalogService *service.CatalogService
	rewardService  *service.RewardService
	logger         *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService, rewardService *service.RewardService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		rewardService:  rewardService,
		logger:         log.With("component", "catalog_handler"),
	}
}

func pillarIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid pillar id"})
		return 0, false
	}
	return id, true
}

// ListPillars returns every pillar
func (h *CatalogHandler) ListPillars(w http.ResponseWriter, r *http.Request) {
	pillars, err := h.catalogService.ListPillars(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to list pillars", err)
		return
	}
	respondJSON(w, http.StatusOK, pillars)
}

// GetPillar returns one pillar
func (h *CatalogHandler) GetPillar(w http.ResponseWriter, r *http.Request) {
	id, ok := pillarIDParam(w, r)
	if !ok {
		return
	}
	pillar, err := h.catalogService.GetPillar(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load pillar", err)
		return
	}
	respondJSON(w, http.StatusOK, pillar)
}

// PillarChallenges lists a pillar's challenges, filtered for ?child_id= when given
func (h *CatalogHandler) PillarChallenges(w http.ResponseWriter, r *http.Request) {
	id, ok := pillarIDParam(w, r)
	if !ok {
		return
	}
	challenges, err := h.catalogService.PillarChallenges(r.Context(), userID(r), id, r.URL.Query().Get("child_id"))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to list pillar challenges", err)
		return
	}
	respondJSON(w, http.StatusOK, challenges)
}

// PillarProgress reports a child's progress through a pillar
func (h *CatalogHandler) PillarProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pillarIDParam(w, r)
	if !ok {
		return
	}
	progress, err := h.catalogService.PillarProgress(r.Context(), userID(r), id, r.URL.Query().Get("child_id"))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load pillar progress", err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// ListChallenges returns the catalog, optionally for ?pillar_id= and ?child_id=
func (h *CatalogHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	var pillarID *int
	if raw := r.URL.Query().Get("pillar_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid pillar id"})
			return
		}
		pillarID = &id
	}

	challenges, err := h.catalogService.ListChallenges(r.Context(), userID(r), r.URL.Query().Get("child_id"), pillarID)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to list challenges", err)
		return
	}
	respondJSON(w, http.StatusOK, challenges)
}

// GetChallenge returns one challenge
func (h *CatalogHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.catalogService.GetChallenge(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load challenge", err)
		return
	}
	respondJSON(w, http.StatusOK, challenge)
}

// CurrentTheme returns this week's theme
func (h *CatalogHandler) CurrentTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.catalogService.CurrentTheme(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load theme", err)
		return
	}
	respondJSON(w, http.StatusOK, theme)
}

// Rewards returns every reward that can be earned
func (h *CatalogHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewardService.Catalog(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to list rewards", err)
		return
	}
	respondJSON(w, http.StatusOK, rewards)
}
