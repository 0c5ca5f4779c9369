package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/metrics"
	"kidoova/internal/models"
	"kidoova/internal/repository"
)

// ScoringService turns challenge completions into trait experience
type ScoringService struct {
	catalog  *repository.CatalogRepository
	activity *repository.ActivityRepository
	traits   *repository.TraitRepository
	logger   *logger.Logger
}

// NewScoringService creates a scoring service over db, which may be a transaction
func NewScoringService(db database.Querier, log *logger.Logger) *ScoringService {
	return &ScoringService{
		catalog:  repository.NewCatalogRepository(db),
		activity: repository.NewActivityRepository(db),
		traits:   repository.NewTraitRepository(db),
		logger:   log.With("component", "scoring"),
	}
}

// TraitAward is the experience written for one trait
type TraitAward struct {
	TraitID int     `json:"trait_id"`
	Weight  float64 `json:"weight"`
	Delta   float64 `json:"delta"`
}

// ScoreResult describes what one completion contributed
type ScoreResult struct {
	Feeling    int          `json:"feeling"`
	Multiplier float64      `json:"multiplier"`
	Awards     []TraitAward `json:"awards"`
	TotalXP    float64      `json:"total_xp"`
}

// ScoreCompletion awards trait experience for a completion that has already
// been logged. The latest reflection for the child and challenge sets the
// feeling (neutral when there is none). Each weighted trait gets its running
// total increased and one history row stamped with completedAt. A challenge
// without trait weights writes nothing. The first failing statement aborts.
func (s *ScoringService) ScoreCompletion(ctx context.Context, childID, challengeID string, completedAt time.Time) (*ScoreResult, error) {
	feeling := NeutralFeeling
	var reflectionText *string

	reflection, err := s.activity.LatestReflection(ctx, childID, challengeID)
	if err != nil {
		return nil, err
	}
	if reflection != nil {
		feeling = reflection.Feeling
		reflectionText = reflection.Reflection
	}

	weights, err := s.catalog.GetChallengeTraitWeights(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	result := &ScoreResult{
		Feeling:    feeling,
		Multiplier: FeelingMultiplier(feeling),
		Awards:     []TraitAward{},
	}
	if len(weights) == 0 {
		s.logger.Debug("challenge has no trait weights", "challenge_id", challengeID)
		return result, nil
	}

	for _, w := range weights {
		delta := TraitDelta(feeling, w.Weight)

		if err := s.traits.AddToTraitScore(ctx, childID, w.TraitID, delta, completedAt); err != nil {
			return nil, err
		}

		entry := &models.TraitScoreHistoryEntry{
			ID:          uuid.NewString(),
			ChildID:     childID,
			TraitID:     w.TraitID,
			ChallengeID: challengeID,
			ScoreDelta:  delta,
			Feeling:     feeling,
			Reflection:  reflectionText,
			CompletedAt: completedAt,
		}
		if err := s.traits.AppendHistory(ctx, entry); err != nil {
			return nil, err
		}

		result.Awards = append(result.Awards, TraitAward{TraitID: w.TraitID, Weight: w.Weight, Delta: delta})
		result.TotalXP += delta
	}

	metrics.RecordTraitXP(result.TotalXP)
	s.logger.Debug("scored completion",
		"child_id", childID,
		"challenge_id", challengeID,
		"feeling", feeling,
		"traits", len(result.Awards),
		"total_xp", result.TotalXP,
	)
	return result, nil
}

// CompletionSummary reconstructs the experience gained from the most recent
// completion of a challenge from the scoring history.
func (s *ScoringService) CompletionSummary(ctx context.Context, childID, challengeID string) (*models.CompletionSummary, error) {
	summary := &models.CompletionSummary{Traits: []models.TraitXP{}}

	latest, err := s.traits.LatestHistoryTime(ctx, childID, challengeID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return summary, nil
	}

	traits, err := s.traits.HistoryAt(ctx, childID, challengeID, *latest)
	if err != nil {
		return nil, err
	}
	summary.Traits = traits
	for _, t := range traits {
		summary.TotalXP += t.XPGained
	}
	return summary, nil
}

// TraitScores returns the child's running trait totals, highest first
func (s *ScoringService) TraitScores(ctx context.Context, childID string) ([]models.TraitScore, error) {
	return s.traits.ListTraitScores(ctx, childID)
}
