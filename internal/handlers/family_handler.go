package handlers

import (
	"net/http"

	"kidoova/internal/logger"
	"kidoova/internal/service"
)

// FamilyHandler handles families, membership and invites
type FamilyHandler struct {
	familyService *service.FamilyService
	logger        *logger.Logger
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, log *logger.Logger) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		logger:        log.With("component", "family_handler"),
	}
}

// GetFamily returns the caller's family with members and children
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	overview, err := h.familyService.Overview(r.Context(), userID(r))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load family", err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

type createFamilyRequest struct {
	Name string `json:"name"`
}

// CreateFamily creates a family owned by the caller
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	var req createFamilyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	family, err := h.familyService.CreateFamily(r.Context(), userID(r), req.Name)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to create family", err)
		return
	}
	respondJSON(w, http.StatusCreated, family)
}

// Invite creates an invite into the caller's family
func (h *FamilyHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req service.InviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	invite, err := h.familyService.Invite(r.Context(), userID(r), req)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to create invite", err)
		return
	}
	respondJSON(w, http.StatusCreated, invite)
}

// VerifyInvite reports what an invite code would join
func (h *FamilyHandler) VerifyInvite(w http.ResponseWriter, r *http.Request) {
	info, err := h.familyService.VerifyInvite(r.Context(), r.PathValue("code"))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to verify invite", err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

type joinFamilyRequest struct {
	InviteCode string `json:"invite_code"`
}

// Join adds the caller to the family an invite belongs to
func (h *FamilyHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinFamilyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	family, err := h.familyService.Join(r.Context(), userID(r), req.InviteCode)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to join family", err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}
