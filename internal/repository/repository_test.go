package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidoova/internal/models"
	"kidoova/internal/testutil"
)

func TestUserUpsertFromIdentity(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	identity := models.Identity{Provider: "google", Subject: "sub-1", Email: "a@example.com", Name: "Ann"}
	first, err := repo.UpsertFromIdentity(ctx, identity, now)
	require.NoError(t, err)

	identity.Name = "Ann B"
	second, err := repo.UpsertFromIdentity(ctx, identity, now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same identity must map to the same account")
	assert.Equal(t, "Ann B", second.Name)
	assert.Equal(t, 1, testutil.Count(t, db, "SELECT COUNT(*) FROM users"))

	require.NoError(t, repo.MarkOnboardingComplete(ctx, first.ID, now))
	loaded, err := repo.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, loaded.HasCompletedOnboarding)
	assert.Nil(t, loaded.SelectedChildID)
}

func TestFamilyMembershipIsUnique(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFamilyRepository(db)
	ctx := context.Background()
	now := time.Now()

	owner := testutil.CreateUser(t, db, "owner@example.com")
	family, err := repo.CreateFamily(ctx, "The Testers", owner, now)
	require.NoError(t, err)

	err = repo.AddFamilyMember(ctx, family.ID, owner, models.RoleParent, now)
	require.ErrorIs(t, err, ErrDuplicate)

	got, role, err := repo.GetUserFamily(ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, family.ID, got.ID)
	assert.Equal(t, models.RoleOwner, role)

	members, err := repo.GetFamilyMembers(ctx, family.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "owner@example.com", members[0].Email)
}

func TestGetChildForUserChecksMembership(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChildRepository(db)
	ctx := context.Background()

	parent := testutil.CreateUser(t, db, "parent@example.com")
	stranger := testutil.CreateUser(t, db, "stranger@example.com")
	family := testutil.CreateFamily(t, db, parent)
	childID := testutil.CreateChild(t, db, family, "5-8")

	child, err := repo.GetChildForUser(ctx, childID, parent)
	require.NoError(t, err)
	require.NotNil(t, child)
	assert.Equal(t, "5-8", child.AgeRange)

	child, err = repo.GetChildForUser(ctx, childID, stranger)
	require.NoError(t, err)
	assert.Nil(t, child)
}

func TestDeleteExpiredInvitations(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewInvitationRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	owner := testutil.CreateUser(t, db, "owner@example.com")
	family := testutil.CreateFamily(t, db, owner)

	for hash, expires := range map[string]time.Time{
		"expired": now.Add(-time.Hour),
		"live":    now.Add(time.Hour),
	} {
		require.NoError(t, repo.CreateInvitation(ctx, &models.FamilyInvite{
			CodeHash: hash, FamilyID: family, Email: "x@example.com", Role: models.RoleParent,
			CreatedBy: owner, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: expires,
		}))
	}

	n, err := repo.DeleteExpiredInvitations(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	live, err := repo.GetInvitationByHash(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, "Test Family", live.FamilyName)

	gone, err := repo.GetInvitationByHash(ctx, "expired")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestListChallengesFiltersByAgeAndMarksCompleted(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner@example.com")
	family := testutil.CreateFamily(t, db, owner)
	child := testutil.CreateChild(t, db, family, "12+")

	pillar := 2
	done := testutil.CreateChallenge(t, db, pillar, "12+", nil)
	testutil.CreateChallenge(t, db, pillar, "12+", nil)
	testutil.LogCompletion(t, db, child, done, time.Now(), time.UTC)

	challenges, err := repo.ListChallenges(ctx, ChallengeFilter{AgeRange: "12+", PillarID: &pillar, ChildID: child})
	require.NoError(t, err)
	require.Len(t, challenges, 2)

	completed := 0
	for _, c := range challenges {
		assert.Equal(t, "12+", c.AgeRange)
		if c.IsCompleted {
			completed++
			assert.Equal(t, done, c.ID)
		}
	}
	assert.Equal(t, 1, completed)

	total, completedInPillar, err := repo.PillarProgress(ctx, pillar, child, "12+")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, completedInPillar)
}

func TestSeededChallengeStepsDecode(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)

	challenge, err := repo.GetChallenge(context.Background(), "c-1-5-8-pack-bag")
	require.NoError(t, err)
	require.NotNil(t, challenge)
	assert.Len(t, challenge.Steps, 3)

	assert.Equal(t, []string{"just do it"}, decodeSteps("just do it"))
	assert.Equal(t, []string{}, decodeSteps(""))
}

func TestSeededPracticeModulesDecode(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPracticeRepository(db)

	module, err := repo.GetModule(context.Background(), "pm-2-not-yet")
	require.NoError(t, err)
	require.NotNil(t, module)
	assert.Equal(t, 2, module.PillarID)
	require.Len(t, module.Steps, 3)
	assert.Equal(t, models.PracticeStepInteractive, module.Steps[1].Type)
	require.Len(t, module.Steps[1].Options, 2)
	assert.True(t, module.Steps[1].Options[0].IsCorrect)
	assert.True(t, module.HasStep("s3"))
	assert.False(t, module.HasStep("s4"))

	missing, err := repo.GetModule(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPracticeRecordStepOncePerChild(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPracticeRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 4, 2, 18, 0, 0, 0, time.UTC)

	owner := testutil.CreateUser(t, db, "owner@example.com")
	family := testutil.CreateFamily(t, db, owner)
	child := testutil.CreateChild(t, db, family, "5-8")
	sibling := testutil.CreateChild(t, db, family, "8-12")

	recorded, err := repo.RecordStep(ctx, child, "pm-1-own-it", "s2", now)
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = repo.RecordStep(ctx, child, "pm-1-own-it", "s2", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, recorded, "a step is recorded once")

	recorded, err = repo.RecordStep(ctx, child, "pm-1-own-it", "s1", now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, recorded)

	steps, err := repo.CompletedSteps(ctx, child, "pm-1-own-it")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, steps)

	steps, err = repo.CompletedSteps(ctx, sibling, "pm-1-own-it")
	require.NoError(t, err)
	assert.Equal(t, []string{}, steps)
	assert.Equal(t, 2, testutil.Count(t, db, "SELECT COUNT(*) FROM practice_progress"))
}

func TestListPracticeModulesFiltersByPillar(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPracticeRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner@example.com")
	family := testutil.CreateFamily(t, db, owner)
	child := testutil.CreateChild(t, db, family, "5-8")
	_, err := repo.RecordStep(ctx, child, "pm-5-brave-breath", "s1", time.Now())
	require.NoError(t, err)

	all, err := repo.ListModules(ctx, child, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for _, m := range all {
		if m.ID == "pm-5-brave-breath" {
			assert.Equal(t, []string{"s1"}, m.CompletedSteps)
		} else {
			assert.Empty(t, m.CompletedSteps)
			assert.NotNil(t, m.CompletedSteps)
		}
	}

	pillar := 5
	filtered, err := repo.ListModules(ctx, child, &pillar)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "pm-5-brave-breath", filtered[0].ID)
	assert.Equal(t, []string{"s1"}, filtered[0].CompletedSteps)

	empty := 99
	none, err := repo.ListModules(ctx, child, &empty)
	require.NoError(t, err)
	assert.Empty(t, none)
}
