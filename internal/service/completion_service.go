package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/metrics"
	"kidoova/internal/models"
	"kidoova/internal/repository"
	"kidoova/internal/validation"
)

// Completion outcomes recorded in metrics
const (
	outcomeCompleted = "completed"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

// CompletionService logs challenge completions and reflections
type CompletionService struct {
	db     *database.DB
	loc    *time.Location
	logger *logger.Logger
	now    func() time.Time
}

// NewCompletionService creates a completion service. Completion days are taken in loc.
func NewCompletionService(db *database.DB, loc *time.Location, log *logger.Logger) *CompletionService {
	return &CompletionService{
		db:     db,
		loc:    loc,
		logger: log.With("component", "completion"),
		now:    time.Now,
	}
}

// CompletionRequest is a parent marking a challenge done for a child.
// Feeling and Reflection are optional.
type CompletionRequest struct {
	ChildID     string  `json:"child_id"`
	ChallengeID string  `json:"challenge_id"`
	Feeling     *int    `json:"feeling"`
	Reflection  *string `json:"reflection"`
}

// ReflectionRequest is a standalone reflection on a challenge
type ReflectionRequest struct {
	ChildID     string  `json:"child_id"`
	ChallengeID string  `json:"challenge_id"`
	Feeling     int     `json:"feeling"`
	Reflection  *string `json:"reflection"`
}

// CompletionStats are the child's totals right after a completion
type CompletionStats struct {
	TotalCompleted int `json:"total_completed"`
	CurrentStreak  int `json:"current_streak"`
}

// CompletionResult is everything a completion produced
type CompletionResult struct {
	Success     bool                      `json:"success"`
	LogID       string                    `json:"log_id"`
	CompletedAt time.Time                 `json:"completed_at"`
	XP          *models.CompletionSummary `json:"xp"`
	NewRewards  []models.Reward           `json:"new_rewards"`
	Stats       CompletionStats           `json:"stats"`
}

// Complete logs a completion for a child the user can access, scores it and
// grants any rewards it unlocks. All writes share one transaction, so a
// failure anywhere leaves no partial completion behind. A second completion
// of the same challenge on the same day returns ErrAlreadyCompletedToday.
func (s *CompletionService) Complete(ctx context.Context, userID string, req CompletionRequest) (*CompletionResult, error) {
	if err := validation.ValidateRequired("child_id", req.ChildID); err != nil {
		return nil, err
	}
	if err := validation.ValidateRequired("challenge_id", req.ChallengeID); err != nil {
		return nil, err
	}
	if req.Feeling != nil {
		if err := validation.ValidateFeeling(*req.Feeling); err != nil {
			return nil, err
		}
	}

	if err := s.checkTargets(ctx, userID, req.ChildID, req.ChallengeID); err != nil {
		return nil, err
	}

	now := s.now()
	entry := &models.ChallengeLog{
		ID:           uuid.NewString(),
		ChildID:      req.ChildID,
		ChallengeID:  req.ChallengeID,
		CompletedAt:  now,
		CompletedDay: DayKey(now, s.loc),
		Completed:    true,
	}
	result := &CompletionResult{LogID: entry.ID}

	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		activity := repository.NewActivityRepository(tx)

		if req.Feeling != nil {
			reflection := &models.Reflection{
				ID:          uuid.NewString(),
				ChildID:     req.ChildID,
				ChallengeID: req.ChallengeID,
				Feeling:     *req.Feeling,
				Reflection:  req.Reflection,
				CreatedAt:   now,
			}
			if err := activity.CreateReflection(ctx, reflection); err != nil {
				return err
			}
		}

		inserted, err := activity.InsertChallengeLog(ctx, entry)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrAlreadyCompletedToday
		}

		scoring := NewScoringService(tx, s.logger)
		if _, err := scoring.ScoreCompletion(ctx, req.ChildID, req.ChallengeID, entry.CompletedAt); err != nil {
			return err
		}

		rewards := NewRewardService(tx, s.loc, s.logger)
		rewards.now = s.now
		if result.NewRewards, err = rewards.EvaluateAndGrant(ctx, req.ChildID); err != nil {
			return err
		}

		if result.XP, err = scoring.CompletionSummary(ctx, req.ChildID, req.ChallengeID); err != nil {
			return err
		}

		if result.Stats.TotalCompleted, err = activity.CountChallengeLogs(ctx, req.ChildID); err != nil {
			return err
		}
		times, err := activity.CompletionTimes(ctx, req.ChildID)
		if err != nil {
			return err
		}
		result.Stats.CurrentStreak = CurrentStreak(times, s.loc)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCompletedToday) {
			metrics.RecordCompletion(outcomeDuplicate)
		} else {
			metrics.RecordCompletion(outcomeFailed)
		}
		return nil, err
	}

	result.Success = true
	result.CompletedAt = entry.CompletedAt
	metrics.RecordCompletion(outcomeCompleted)
	s.logger.Info("challenge completed",
		"child_id", req.ChildID,
		"challenge_id", req.ChallengeID,
		"xp", result.XP.TotalXP,
		"new_rewards", len(result.NewRewards),
	)
	return result, nil
}

// SaveReflection stores a reflection without logging a completion. It feeds
// the next completion's score and the confidence trend.
func (s *CompletionService) SaveReflection(ctx context.Context, userID string, req ReflectionRequest) (*models.Reflection, error) {
	if err := validation.ValidateRequired("child_id", req.ChildID); err != nil {
		return nil, err
	}
	if err := validation.ValidateRequired("challenge_id", req.ChallengeID); err != nil {
		return nil, err
	}
	if err := validation.ValidateFeeling(req.Feeling); err != nil {
		return nil, err
	}
	if err := s.checkTargets(ctx, userID, req.ChildID, req.ChallengeID); err != nil {
		return nil, err
	}

	reflection := &models.Reflection{
		ID:          uuid.NewString(),
		ChildID:     req.ChildID,
		ChallengeID: req.ChallengeID,
		Feeling:     req.Feeling,
		Reflection:  req.Reflection,
		CreatedAt:   s.now(),
	}
	if err := repository.NewActivityRepository(s.db).CreateReflection(ctx, reflection); err != nil {
		return nil, err
	}
	return reflection, nil
}

// checkTargets confirms the child belongs to one of the user's families and
// the challenge exists.
func (s *CompletionService) checkTargets(ctx context.Context, userID, childID, challengeID string) error {
	child, err := repository.NewChildRepository(s.db).GetChildForUser(ctx, childID, userID)
	if err != nil {
		return err
	}
	if child == nil {
		return ErrChildNotFound
	}

	challenge, err := repository.NewCatalogRepository(s.db).GetChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	if challenge == nil {
		return ErrChallengeNotFound
	}
	return nil
}
