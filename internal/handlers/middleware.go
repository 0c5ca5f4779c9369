package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"kidoova/internal/logger"
	"kidoova/internal/security"
	"kidoova/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const PrincipalContextKey ContextKey = "principal"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
	logger      *logger.Logger
}

// NewMiddleware creates a new middleware instance. A nil limiter disables rate limiting.
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter, log *logger.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
		logger:      log.With("component", "http"),
	}
}

// RequireAuth is middleware that requires a valid bearer token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondJSON(w, http.StatusUnauthorized, errorBody{Error: ErrUnauthorized})
			return
		}

		principal, err := m.authService.Authenticate(token)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, errorBody{Error: ErrInvalidTokenMsg})
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit is middleware that limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			m.logger.Warn("rate limit exceeded", "ip", security.GetClientIP(r), "path", r.URL.Path)
			respondJSON(w, http.StatusTooManyRequests, errorBody{Error: ErrTooManyRequests})
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetPrincipalFromContext retrieves the authenticated user from the request context
func GetPrincipalFromContext(ctx context.Context) *security.Principal {
	principal, ok := ctx.Value(PrincipalContextKey).(*security.Principal)
	if !ok {
		return nil
	}
	return principal
}

// userID returns the authenticated user's id. Only valid behind RequireAuth.
func userID(r *http.Request) string {
	if p := GetPrincipalFromContext(r.Context()); p != nil {
		return p.UserID
	}
	return ""
}
