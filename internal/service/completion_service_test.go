package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidoova/internal/testutil"
	"kidoova/internal/validation"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func newCompletionService(f *fixture, at time.Time) *CompletionService {
	s := NewCompletionService(f.db, f.loc, f.log)
	s.now = fixedClock(at)
	return s
}

func TestCompleteScoresAndReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

	result, err := newCompletionService(f, at).Complete(ctx, f.userID, CompletionRequest{
		ChildID:     f.childID,
		ChallengeID: "c-1-5-8-pack-bag",
		Feeling:     intPtr(5),
		Reflection:  strPtr("did it alone"),
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.LogID)
	assert.True(t, at.Equal(result.CompletedAt))
	assert.Empty(t, result.NewRewards)
	assert.Equal(t, CompletionStats{TotalCompleted: 1, CurrentStreak: 1}, result.Stats)

	// feeling 5 gives 11 per unit weight: independence 1.0, problem solving 0.5
	require.NotNil(t, result.XP)
	require.Len(t, result.XP.Traits, 2)
	assert.InDelta(t, 11.0, result.XP.Traits[0].XPGained, 1e-9)
	assert.InDelta(t, 5.5, result.XP.Traits[1].XPGained, 1e-9)
	assert.InDelta(t, 16.5, result.XP.TotalXP, 1e-9)

	assert.Equal(t, 1, testutil.Count(t, f.db, "SELECT COUNT(*) FROM challenge_reflections WHERE child_id = ?", f.childID))
	assert.Equal(t, 2, testutil.Count(t, f.db, "SELECT COUNT(*) FROM trait_score_history WHERE child_id = ?", f.childID))
}

func TestCompleteWithoutFeelingUsesNeutral(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

	result, err := newCompletionService(f, at).Complete(context.Background(), f.userID, CompletionRequest{
		ChildID:     f.childID,
		ChallengeID: "c-5-5-8-brave-step",
	})
	require.NoError(t, err)

	// courage weighted 2.0 at feeling 3
	assert.InDelta(t, 18.0, result.XP.TotalXP, 1e-9)
	assert.Zero(t, testutil.Count(t, f.db, "SELECT COUNT(*) FROM challenge_reflections WHERE child_id = ?", f.childID))
}

func TestCompleteTwiceSameDayIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// 9am and 11pm New York are the same local day
	morning := time.Date(2025, time.March, 10, 13, 0, 0, 0, time.UTC)
	night := time.Date(2025, time.March, 11, 3, 0, 0, 0, time.UTC)
	req := CompletionRequest{ChildID: f.childID, ChallengeID: "c-1-5-8-pack-bag", Feeling: intPtr(4)}

	_, err := newCompletionService(f, morning).Complete(ctx, f.userID, req)
	require.NoError(t, err)

	_, err = newCompletionService(f, night).Complete(ctx, f.userID, req)
	assert.ErrorIs(t, err, ErrAlreadyCompletedToday)

	// The rejected attempt left nothing behind
	assert.Equal(t, 1, testutil.Count(t, f.db, "SELECT COUNT(*) FROM challenge_logs WHERE child_id = ?", f.childID))
	assert.Equal(t, 1, testutil.Count(t, f.db, "SELECT COUNT(*) FROM challenge_reflections WHERE child_id = ?", f.childID))
	assert.Equal(t, 2, testutil.Count(t, f.db, "SELECT COUNT(*) FROM trait_score_history WHERE child_id = ?", f.childID))

	var score float64
	require.NoError(t, f.db.QueryRowContext(ctx,
		"SELECT score FROM child_trait_scores WHERE child_id = ? AND trait_id = 1", f.childID).Scan(&score))
	assert.InDelta(t, 10.0, score, 1e-9)

	// The next local day is allowed again
	nextDay := time.Date(2025, time.March, 11, 13, 0, 0, 0, time.UTC)
	result, err := newCompletionService(f, nextDay).Complete(ctx, f.userID, req)
	require.NoError(t, err)
	assert.Equal(t, CompletionStats{TotalCompleted: 2, CurrentStreak: 2}, result.Stats)
}

func TestCompleteGrantsMilestone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	s := newCompletionService(f, at)

	challenges := []string{
		"c-1-5-8-pack-bag",
		"c-2-5-8-try-again",
		"c-3-5-8-order-food",
		"c-4-5-8-strength-hunt",
		"c-5-5-8-brave-step",
	}
	var last *CompletionResult
	for _, challengeID := range challenges {
		result, err := s.Complete(ctx, f.userID, CompletionRequest{ChildID: f.childID, ChallengeID: challengeID})
		require.NoError(t, err)
		last = result
	}

	require.Len(t, last.NewRewards, 1)
	assert.Equal(t, "milestone-5", last.NewRewards[0].ID)
	assert.Equal(t, 5, last.Stats.TotalCompleted)
}

func TestCompleteRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for day := 1; day <= 4; day++ {
		logCompletion(t, f, "c-1-5-8-pack-bag", time.Date(2025, time.March, day, 14, 0, 0, 0, time.UTC))
	}

	// The fifth completion reaches milestone-5, and granting it fails
	_, err := f.db.ExecContext(ctx, "DROP TABLE child_rewards")
	require.NoError(t, err)

	at := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	_, err = newCompletionService(f, at).Complete(ctx, f.userID, CompletionRequest{
		ChildID:     f.childID,
		ChallengeID: "c-5-5-8-brave-step",
		Feeling:     intPtr(4),
		Reflection:  strPtr("stood up in class"),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyCompletedToday)

	assert.Zero(t, testutil.Count(t, f.db,
		"SELECT COUNT(*) FROM challenge_logs WHERE child_id = ? AND challenge_id = ?", f.childID, "c-5-5-8-brave-step"))
	assert.Equal(t, 4, testutil.Count(t, f.db, "SELECT COUNT(*) FROM challenge_logs WHERE child_id = ?", f.childID))
	assert.Zero(t, testutil.Count(t, f.db, "SELECT COUNT(*) FROM challenge_reflections WHERE child_id = ?", f.childID))
	assert.Zero(t, testutil.Count(t, f.db, "SELECT COUNT(*) FROM trait_score_history WHERE child_id = ?", f.childID))
	assert.Zero(t, testutil.Count(t, f.db, "SELECT COUNT(*) FROM child_trait_scores WHERE child_id = ?", f.childID))
}

func TestCompleteRejectsOtherFamiliesChild(t *testing.T) {
	f := newFixture(t)
	stranger := testutil.CreateUser(t, f.db, "stranger@example.com")
	testutil.CreateFamily(t, f.db, stranger)

	_, err := NewCompletionService(f.db, f.loc, f.log).Complete(context.Background(), stranger, CompletionRequest{
		ChildID:     f.childID,
		ChallengeID: "c-1-5-8-pack-bag",
	})
	assert.ErrorIs(t, err, ErrChildNotFound)
	assert.Zero(t, testutil.Count(t, f.db, "SELECT COUNT(*) FROM challenge_logs"))
}

func TestCompleteValidation(t *testing.T) {
	f := newFixture(t)
	s := NewCompletionService(f.db, f.loc, f.log)

	tests := []struct {
		name    string
		req     CompletionRequest
		wantErr error
		field   string
	}{
		{
			name:  "missing child",
			req:   CompletionRequest{ChallengeID: "c-1-5-8-pack-bag"},
			field: "child_id",
		},
		{
			name:  "missing challenge",
			req:   CompletionRequest{ChildID: f.childID},
			field: "challenge_id",
		},
		{
			name:  "feeling too high",
			req:   CompletionRequest{ChildID: f.childID, ChallengeID: "c-1-5-8-pack-bag", Feeling: intPtr(6)},
			field: "feeling",
		},
		{
			name:  "feeling too low",
			req:   CompletionRequest{ChildID: f.childID, ChallengeID: "c-1-5-8-pack-bag", Feeling: intPtr(0)},
			field: "feeling",
		},
		{
			name:    "unknown challenge",
			req:     CompletionRequest{ChildID: f.childID, ChallengeID: "nope"},
			wantErr: ErrChallengeNotFound,
		},
		{
			name:    "unknown child",
			req:     CompletionRequest{ChildID: "nope", ChallengeID: "c-1-5-8-pack-bag"},
			wantErr: ErrChildNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Complete(context.Background(), f.userID, tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var validationErr validation.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestSaveReflectionFeedsNextCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	s := newCompletionService(f, at)

	reflection, err := s.SaveReflection(ctx, f.userID, ReflectionRequest{
		ChildID:     f.childID,
		ChallengeID: "c-5-5-8-brave-step",
		Feeling:     1,
		Reflection:  strPtr("scary"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, reflection.Feeling)

	s.now = fixedClock(at.Add(time.Minute))
	result, err := s.Complete(ctx, f.userID, CompletionRequest{ChildID: f.childID, ChallengeID: "c-5-5-8-brave-step"})
	require.NoError(t, err)
	// courage weighted 2.0 at feeling 1
	assert.InDelta(t, 14.0, result.XP.TotalXP, 1e-9)

	_, err = s.SaveReflection(ctx, f.userID, ReflectionRequest{ChildID: f.childID, ChallengeID: "c-5-5-8-brave-step", Feeling: 9})
	var validationErr validation.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}
