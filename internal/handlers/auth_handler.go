package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"kidoova/internal/logger"
	"kidoova/internal/service"
)

// AuthHandler handles sign-in and account requests
type AuthHandler struct {
	authService     *service.AuthService
	oauthConfig     *oauth2.Config
	redirectBaseURL string
	frontendURL     string
	logger          *logger.Logger
}

// NewAuthHandler creates a new auth handler. oauthConfig drives the Google
// authorization-code flow and may be nil when it is not configured.
func NewAuthHandler(authService *service.AuthService, oauthConfig *oauth2.Config, redirectBaseURL, frontendURL string, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		oauthConfig:     oauthConfig,
		redirectBaseURL: strings.TrimRight(redirectBaseURL, "/"),
		frontendURL:     strings.TrimRight(frontendURL, "/"),
		logger:          log.With("component", "auth_handler"),
	}
}

type loginRequest struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
}

// Login exchanges a provider ID token for an app token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}
	if req.Provider == "" {
		req.Provider = "google"
	}

	result, err := h.authService.Login(r.Context(), req.Provider, req.Token)
	if err != nil {
		respondWithServiceError(w, h.logger, "Login failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Profile returns the signed-in user with their family and children
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.authService.Profile(r.Context(), userID(r))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load profile", err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

type selectChildRequest struct {
	ChildID string `json:"child_id"`
}

// SelectChild remembers which child the user is working with
func (h *AuthHandler) SelectChild(w http.ResponseWriter, r *http.Request) {
	var req selectChildRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	if err := h.authService.SelectChild(r.Context(), userID(r), req.ChildID); err != nil {
		respondWithServiceError(w, h.logger, "Failed to select child", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "selected_child_id": req.ChildID})
}

// OnboardingStatus reports whether the user finished onboarding
func (h *AuthHandler) OnboardingStatus(w http.ResponseWriter, r *http.Request) {
	done, err := h.authService.OnboardingStatus(r.Context(), userID(r))
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to load onboarding status", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"has_completed_onboarding": done})
}

// CompleteOnboarding marks onboarding finished
func (h *AuthHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.CompleteOnboarding(r.Context(), userID(r)); err != nil {
		respondWithServiceError(w, h.logger, "Failed to complete onboarding", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
