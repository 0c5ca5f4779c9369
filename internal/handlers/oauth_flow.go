package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"kidoova/internal/security"
)

const (
	googleProvider = "google"
	oauthCookieTTL = 10 * time.Minute
)

func (h *AuthHandler) oauthConfigured() bool {
	return h.oauthConfig != nil && h.oauthConfig.ClientID != "" && h.oauthConfig.ClientSecret != ""
}

// StartGoogle redirects to Google's consent screen
func (h *AuthHandler) StartGoogle(w http.ResponseWriter, r *http.Request) {
	if !h.oauthConfigured() {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Google sign-in is not configured"})
		return
	}

	state, err := security.GenerateState()
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, ErrInternalServerError, "Failed to generate OAuth state", err)
		return
	}
	h.setTempCookie(w, r, oauthStateCookie, state, oauthCookieTTL)

	config := *h.oauthConfig
	config.RedirectURL = h.oauthRedirectURL(r)
	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback finishes the authorization-code flow and hands the app
// token to the frontend in the URL fragment.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.oauthConfigured() {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Google sign-in is not configured"})
		return
	}

	if providerErr := r.URL.Query().Get("error"); providerErr != "" {
		h.logger.Warn("google sign-in declined", "error", providerErr)
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Sign-in was cancelled"})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Missing authorization code"})
		return
	}
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid OAuth state"})
		return
	}
	h.clearTempCookie(w, r, oauthStateCookie)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *h.oauthConfig
	config.RedirectURL = h.oauthRedirectURL(r)
	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Failed to exchange OAuth code", "", err)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "Google did not return an ID token"})
		return
	}

	result, err := h.authService.Login(ctx, googleProvider, rawIDToken)
	if err != nil {
		respondWithServiceError(w, h.logger, "OAuth sign-in failed", err)
		return
	}

	fragment := url.Values{"token": {result.Token}}.Encode()
	http.Redirect(w, r, h.frontendURL+"/auth/callback#"+fragment, http.StatusSeeOther)
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request) string {
	base := h.redirectBaseURL
	if base == "" {
		scheme := "http"
		if isSecureRequest(r) {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/api/auth/google/callback"
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/api/auth",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
