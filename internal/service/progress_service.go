package service

import (
	"context"
	"time"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/models"
	"kidoova/internal/repository"
)

const (
	confidenceWindow    = 7
	confidenceKeepGoing = "Let's keep tracking your confidence!"
	confidenceUp        = "You're trending upward, keep it up!"
	confidenceDown      = "Confidence has dipped a bit, let's keep practicing!"
	confidenceSteady    = "You're staying steady, nice work!"
)

// ProgressService builds read-only summaries of a child's activity
type ProgressService struct {
	children *repository.ChildRepository
	catalog  *repository.CatalogRepository
	activity *repository.ActivityRepository
	rewards  *repository.RewardRepository
	loc      *time.Location
	logger   *logger.Logger
	now      func() time.Time
}

// NewProgressService creates a progress service. Days and weeks are measured in loc.
func NewProgressService(db database.Querier, loc *time.Location, log *logger.Logger) *ProgressService {
	return &ProgressService{
		children: repository.NewChildRepository(db),
		catalog:  repository.NewCatalogRepository(db),
		activity: repository.NewActivityRepository(db),
		rewards:  repository.NewRewardRepository(db),
		loc:      loc,
		logger:   log.With("component", "progress"),
		now:      time.Now,
	}
}

// ChildProgress aggregates lifetime and weekly completions, streaks, per-pillar
// progress against the child's age range and the next rewards within reach.
func (s *ProgressService) ChildProgress(ctx context.Context, childID string) (*models.ChildProgress, error) {
	child, err := s.children.GetChildByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	total, err := s.activity.CountChallengeLogs(ctx, childID)
	if err != nil {
		return nil, err
	}
	times, err := s.activity.CompletionTimes(ctx, childID)
	if err != nil {
		return nil, err
	}
	pillarCounts, err := s.activity.CountLogsByPillar(ctx, childID)
	if err != nil {
		return nil, err
	}
	pillarTotals, err := s.catalog.CountChallengesByPillar(ctx, child.AgeRange)
	if err != nil {
		return nil, err
	}
	pillars, err := s.catalog.ListPillars(ctx)
	if err != nil {
		return nil, err
	}

	progress := &models.ChildProgress{
		TotalCompleted:  total,
		CurrentStreak:   CurrentStreak(times, s.loc),
		LongestStreak:   LongestStreak(times, s.loc),
		WeeklyCompleted: CountSince(times, WeekStart(s.now(), s.loc)),
		Pillars:         make([]models.PillarProgress, 0, len(pillars)),
	}

	focusCount := 0
	for _, p := range pillars {
		completed := pillarCounts[p.ID]
		totalForAge := pillarTotals[p.ID]
		progress.Pillars = append(progress.Pillars, models.PillarProgress{
			PillarID:   p.ID,
			PillarName: p.Name,
			Completed:  completed,
			Total:      totalForAge,
			Percentage: percentOf(completed, totalForAge),
		})
		if completed > focusCount {
			name := p.Name
			progress.CurrentFocusPillar = &name
			focusCount = completed
		}
	}

	next := NextThreshold(MilestoneThresholds, total)
	progress.Milestone = models.MilestoneProgress{
		Current:    total,
		Next:       next,
		Percentage: percentOf(total, next),
	}

	if progress.NextMilestone, err = s.nextReward(ctx, childID, models.RewardMilestone, total); err != nil {
		return nil, err
	}
	if progress.NextStreak, err = s.nextReward(ctx, childID, models.RewardStreak, progress.CurrentStreak); err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *ProgressService) nextReward(ctx context.Context, childID string, rewardType models.RewardType, current int) (*models.NextReward, error) {
	reward, err := s.rewards.NextUnearnedReward(ctx, childID, rewardType)
	if err != nil || reward == nil {
		return nil, err
	}
	return &models.NextReward{
		Reward:     *reward,
		Current:    current,
		Percentage: percentOf(current, reward.CriteriaValue),
	}, nil
}

// ConfidenceTrend returns the child's most recent feelings, newest first, and
// a summary of their direction.
func (s *ProgressService) ConfidenceTrend(ctx context.Context, childID string) (*models.ConfidenceTrend, error) {
	feelings, err := s.activity.RecentFeelings(ctx, childID, confidenceWindow)
	if err != nil {
		return nil, err
	}
	return &models.ConfidenceTrend{Feelings: feelings, Summary: ConfidenceSummary(feelings)}, nil
}

// ConfidenceSummary describes the average change between consecutive feelings
// given newest first.
func ConfidenceSummary(newestFirst []int) string {
	if len(newestFirst) < 2 {
		return confidenceKeepGoing
	}

	sum := 0
	for i := len(newestFirst) - 1; i > 0; i-- {
		// oldest to newest
		sum += newestFirst[i-1] - newestFirst[i]
	}
	average := float64(sum) / float64(len(newestFirst)-1)

	switch {
	case average > 0.2:
		return confidenceUp
	case average < -0.2:
		return confidenceDown
	default:
		return confidenceSteady
	}
}
