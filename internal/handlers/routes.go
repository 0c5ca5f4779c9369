package handlers

import (
	"context"
	"net/http"
	"time"

	"kidoova/internal/metrics"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Routes bundles the handlers served by the API
type Routes struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Family     *FamilyHandler
	Child      *ChildHandler
	Catalog    *CatalogHandler
	Completion *CompletionHandler
	Media      *MediaHandler
	Practice   *PracticeHandler
	DB         Pinger
}

// Handler registers every route on a ServeMux and wraps it with request
// logging and metrics.
func (rt Routes) Handler() http.Handler {
	m := rt.Middleware
	auth := m.RequireAuth
	mux := http.NewServeMux()

	// Operational
	mux.HandleFunc("GET /healthz", rt.health)
	mux.Handle("GET /metrics", metrics.Handler())

	// Sign-in
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("GET /api/auth/google/start", m.RateLimit(rt.Auth.StartGoogle))
	mux.HandleFunc("GET /api/auth/google/callback", m.RateLimit(rt.Auth.GoogleCallback))

	// Account
	mux.HandleFunc("GET /api/user/profile", auth(rt.Auth.Profile))
	mux.HandleFunc("PUT /api/user/selected-child", auth(rt.Auth.SelectChild))
	mux.HandleFunc("GET /api/onboarding/status", auth(rt.Auth.OnboardingStatus))
	mux.HandleFunc("POST /api/onboarding/complete", auth(rt.Auth.CompleteOnboarding))

	// Families
	mux.HandleFunc("GET /api/family", auth(rt.Family.GetFamily))
	mux.HandleFunc("POST /api/family", auth(rt.Family.CreateFamily))
	mux.HandleFunc("POST /api/family/invite", auth(rt.Family.Invite))
	mux.HandleFunc("GET /api/family/invite/{code}", m.RateLimit(rt.Family.VerifyInvite))
	mux.HandleFunc("POST /api/family/join", auth(rt.Family.Join))

	// Children
	mux.HandleFunc("GET /api/children", auth(rt.Child.ListChildren))
	mux.HandleFunc("POST /api/children", auth(rt.Child.CreateChild))
	mux.HandleFunc("PUT /api/children/{id}", auth(rt.Child.UpdateChild))
	mux.HandleFunc("GET /api/children/{id}/progress", auth(rt.Child.Progress))
	mux.HandleFunc("GET /api/children/{id}/rewards", auth(rt.Child.Rewards))
	mux.HandleFunc("GET /api/children/{id}/trait-scores", auth(rt.Child.TraitScores))
	mux.HandleFunc("GET /api/children/{id}/confidence-trend", auth(rt.Child.ConfidenceTrend))
	mux.HandleFunc("GET /api/children/{id}/media", auth(rt.Child.Media))
	mux.HandleFunc("GET /api/children/{childId}/challenges/{challengeId}/xp-summary", auth(rt.Child.XPSummary))

	// Catalog
	mux.HandleFunc("GET /api/pillars", auth(rt.Catalog.ListPillars))
	mux.HandleFunc("GET /api/pillars/{id}", auth(rt.Catalog.GetPillar))
	mux.HandleFunc("GET /api/pillars/{id}/challenges", auth(rt.Catalog.PillarChallenges))
	mux.HandleFunc("GET /api/pillars/{id}/progress", auth(rt.Catalog.PillarProgress))
	mux.HandleFunc("GET /api/challenges", auth(rt.Catalog.ListChallenges))
	mux.HandleFunc("GET /api/challenges/{id}", auth(rt.Catalog.GetChallenge))
	mux.HandleFunc("GET /api/theme/current", auth(rt.Catalog.CurrentTheme))
	mux.HandleFunc("GET /api/rewards", auth(rt.Catalog.Rewards))

	// Completions
	mux.HandleFunc("POST /api/challenge-log", auth(rt.Completion.LogChallenge))
	mux.HandleFunc("POST /api/reflection", auth(rt.Completion.SaveReflection))

	// Media
	mux.HandleFunc("POST /api/media/upload-url", auth(rt.Media.UploadURL))
	mux.HandleFunc("POST /api/media", auth(rt.Media.Record))

	// Practice
	mux.HandleFunc("GET /api/practice", auth(rt.Practice.ListModules))
	mux.HandleFunc("POST /api/practice/progress", auth(rt.Practice.RecordStep))

	return metrics.InstrumentHandler(m.Logging(mux))
}

func (rt Routes) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := rt.DB.PingContext(ctx); err != nil {
		respondWithError(w, rt.Middleware.logger, http.StatusServiceUnavailable, "Database unavailable", "Health check failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
