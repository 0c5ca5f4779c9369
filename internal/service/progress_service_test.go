package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidoova/internal/models"
)

func TestChildProgressEmpty(t *testing.T) {
	f := newFixture(t)
	progress, err := NewProgressService(f.db, f.loc, f.log).ChildProgress(context.Background(), f.childID)
	require.NoError(t, err)

	assert.Zero(t, progress.TotalCompleted)
	assert.Zero(t, progress.CurrentStreak)
	assert.Zero(t, progress.WeeklyCompleted)
	assert.Nil(t, progress.CurrentFocusPillar)
	require.Len(t, progress.Pillars, 5)
	for _, p := range progress.Pillars {
		assert.Equal(t, 1, p.Total, "pillar %d", p.PillarID)
		assert.Zero(t, p.Percentage)
	}
	assert.Equal(t, models.MilestoneProgress{Current: 0, Next: 5, Percentage: 0}, progress.Milestone)
	require.NotNil(t, progress.NextMilestone)
	assert.Equal(t, "milestone-5", progress.NextMilestone.ID)
	require.NotNil(t, progress.NextStreak)
	assert.Equal(t, "streak-3", progress.NextStreak.ID)
}

func TestChildProgressAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2025, time.March, d, 10, 0, 0, 0, f.loc) }

	logCompletion(t, f, "c-1-5-8-pack-bag", day(7))
	logCompletion(t, f, "c-2-5-8-try-again", day(10))
	logCompletion(t, f, "c-3-5-8-order-food", day(11))
	logCompletion(t, f, "c-1-5-8-pack-bag", day(11))

	progress := NewProgressService(f.db, f.loc, f.log)
	// Wednesday; the week began on Sunday the 9th
	progress.now = fixedClock(time.Date(2025, time.March, 12, 15, 0, 0, 0, f.loc))

	summary, err := progress.ChildProgress(ctx, f.childID)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalCompleted)
	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 2, summary.LongestStreak)
	assert.Equal(t, 3, summary.WeeklyCompleted)

	require.NotNil(t, summary.CurrentFocusPillar)
	assert.Equal(t, "Independence & Problem-Solving", *summary.CurrentFocusPillar)

	require.Len(t, summary.Pillars, 5)
	assert.Equal(t, models.PillarProgress{
		PillarID: 1, PillarName: "Independence & Problem-Solving", Completed: 2, Total: 1, Percentage: 100,
	}, summary.Pillars[0])
	assert.Equal(t, 1, summary.Pillars[1].Completed)
	assert.InDelta(t, 100.0, summary.Pillars[1].Percentage, 1e-9)
	assert.Zero(t, summary.Pillars[4].Completed)

	assert.Equal(t, models.MilestoneProgress{Current: 4, Next: 5, Percentage: 80}, summary.Milestone)
	require.NotNil(t, summary.NextMilestone)
	assert.Equal(t, "milestone-5", summary.NextMilestone.ID)
	assert.Equal(t, 4, summary.NextMilestone.Current)
	assert.InDelta(t, 80.0, summary.NextMilestone.Percentage, 1e-9)
	require.NotNil(t, summary.NextStreak)
	assert.Equal(t, "streak-3", summary.NextStreak.ID)
	assert.InDelta(t, 66.666667, summary.NextStreak.Percentage, 1e-6)
}

func TestChildProgressSkipsEarnedRewards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rewards := NewRewardService(f.db, f.loc, f.log)
	_, _, err := rewards.GrantIfNew(ctx, f.childID, models.RewardMilestone, 5, nil)
	require.NoError(t, err)

	summary, err := NewProgressService(f.db, f.loc, f.log).ChildProgress(ctx, f.childID)
	require.NoError(t, err)
	require.NotNil(t, summary.NextMilestone)
	assert.Equal(t, "milestone-10", summary.NextMilestone.ID)
}

func TestChildProgressUnknownChild(t *testing.T) {
	f := newFixture(t)
	_, err := NewProgressService(f.db, f.loc, f.log).ChildProgress(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrChildNotFound)
}

func TestConfidenceTrend(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i, feeling := range []int{2, 3, 4, 5} {
		addReflection(t, f, "c-1-5-8-pack-bag", feeling, base.Add(time.Duration(i)*time.Hour))
	}

	trend, err := NewProgressService(f.db, f.loc, f.log).ConfidenceTrend(context.Background(), f.childID)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4, 3, 2}, trend.Feelings)
	assert.Equal(t, confidenceUp, trend.Summary)
}

func TestConfidenceSummary(t *testing.T) {
	tests := []struct {
		name     string
		feelings []int
		want     string
	}{
		{"no feelings", nil, confidenceKeepGoing},
		{"single feeling", []int{4}, confidenceKeepGoing},
		{"rising", []int{5, 3, 1}, confidenceUp},
		{"falling", []int{1, 3, 5}, confidenceDown},
		{"flat", []int{3, 3, 3}, confidenceSteady},
		{"small wobble", []int{3, 4, 3, 3, 3, 3}, confidenceSteady},
		{"exactly threshold is steady", []int{4, 3, 3, 3, 3, 3}, confidenceSteady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfidenceSummary(tt.feelings))
		})
	}
}
