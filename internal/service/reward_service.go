package service

import (
	"context"
	"sort"
	"time"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/metrics"
	"kidoova/internal/models"
	"kidoova/internal/repository"
)

// RewardService decides which milestone, streak and pillar rewards a child
// has qualified for and grants each at most once.
type RewardService struct {
	activity *repository.ActivityRepository
	rewards  *repository.RewardRepository
	loc      *time.Location
	logger   *logger.Logger
	now      func() time.Time
}

// NewRewardService creates a reward service over db, which may be a
// transaction. Completion days are bucketed in loc.
func NewRewardService(db database.Querier, loc *time.Location, log *logger.Logger) *RewardService {
	return &RewardService{
		activity: repository.NewActivityRepository(db),
		rewards:  repository.NewRewardRepository(db),
		loc:      loc,
		logger:   log.With("component", "rewards"),
		now:      time.Now,
	}
}

// EvaluateAndGrant runs the three qualification checks for a child and
// returns the rewards that were newly granted by this call.
func (s *RewardService) EvaluateAndGrant(ctx context.Context, childID string) ([]models.Reward, error) {
	newlyGranted := []models.Reward{}
	grant := func(rewardType models.RewardType, value int, pillarID *int) error {
		reward, granted, err := s.GrantIfNew(ctx, childID, rewardType, value, pillarID)
		if err != nil {
			return err
		}
		if granted {
			newlyGranted = append(newlyGranted, *reward)
		}
		return nil
	}

	// Milestones over lifetime logs
	total, err := s.activity.CountChallengeLogs(ctx, childID)
	if err != nil {
		return nil, err
	}
	for _, threshold := range MilestoneThresholds {
		if total >= threshold {
			if err := grant(models.RewardMilestone, threshold, nil); err != nil {
				return nil, err
			}
		}
	}

	// Streaks over completion days in the reference zone
	times, err := s.activity.CompletionTimes(ctx, childID)
	if err != nil {
		return nil, err
	}
	streak := CurrentStreak(times, s.loc)
	for _, threshold := range StreakThresholds {
		if streak >= threshold {
			if err := grant(models.RewardStreak, threshold, nil); err != nil {
				return nil, err
			}
		}
	}

	// Pillar tiers, each pillar independently
	pillarCounts, err := s.activity.CountLogsByPillar(ctx, childID)
	if err != nil {
		return nil, err
	}
	pillarIDs := make([]int, 0, len(pillarCounts))
	for id := range pillarCounts {
		pillarIDs = append(pillarIDs, id)
	}
	sort.Ints(pillarIDs)
	for _, id := range pillarIDs {
		pillarID := id
		for _, threshold := range PillarThresholds {
			if pillarCounts[id] >= threshold {
				if err := grant(models.RewardPillar, threshold, &pillarID); err != nil {
					return nil, err
				}
			}
		}
	}

	s.logger.Debug("evaluated rewards",
		"child_id", childID,
		"total", total,
		"streak", streak,
		"new_rewards", len(newlyGranted),
	)
	return newlyGranted, nil
}

// GrantIfNew grants the catalog reward matching type, threshold and pillar
// (nil for global rewards). A threshold without a catalog entry is skipped
// silently. granted is false when the child already had the reward.
func (s *RewardService) GrantIfNew(ctx context.Context, childID string, rewardType models.RewardType, value int, pillarID *int) (*models.Reward, bool, error) {
	reward, err := s.rewards.FindCatalogReward(ctx, rewardType, value, pillarID)
	if err != nil {
		return nil, false, err
	}
	if reward == nil {
		return nil, false, nil
	}

	granted, err := s.rewards.GrantReward(ctx, childID, reward.ID, s.now())
	if err != nil {
		return nil, false, err
	}
	if granted {
		metrics.RecordRewardGranted(string(reward.Type))
		s.logger.Info("granted reward", "child_id", childID, "reward_id", reward.ID)
	}
	return reward, granted, nil
}

// ChildRewards returns the rewards a child has earned, most recent first
func (s *RewardService) ChildRewards(ctx context.Context, childID string) ([]models.GrantedReward, error) {
	return s.rewards.ListChildRewards(ctx, childID)
}

// Catalog returns every reward that can be earned
func (s *RewardService) Catalog(ctx context.Context) ([]models.Reward, error) {
	return s.rewards.ListCatalog(ctx)
}
