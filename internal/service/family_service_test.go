package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidoova/internal/models"
	"kidoova/internal/security"
	"kidoova/internal/testutil"
	"kidoova/internal/validation"
)

const testInviteTTL = 7 * 24 * time.Hour

func newFamilyService(f *fixture, at time.Time) *FamilyService {
	s := NewFamilyService(f.db, testInviteTTL, "https://app.example.com/", f.log)
	s.now = fixedClock(at)
	return s
}

func TestCreateFamily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newFamilyService(f, time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC))
	newcomer := testutil.CreateUser(t, f.db, "new@example.com")

	family, err := s.CreateFamily(ctx, newcomer, "  The Smiths ")
	require.NoError(t, err)
	assert.Equal(t, "The Smiths", family.Name)
	assert.Equal(t, newcomer, family.CreatedBy)

	overview, err := s.Overview(ctx, newcomer)
	require.NoError(t, err)
	assert.Equal(t, family.ID, overview.Family.ID)
	require.Len(t, overview.Members, 1)
	assert.Equal(t, models.RoleOwner, overview.Members[0].Role)
	assert.Empty(t, overview.Children)

	_, err = s.CreateFamily(ctx, newcomer, "Second")
	assert.ErrorIs(t, err, ErrAlreadyInFamily)
}

func TestCreateFamilyRequiresName(t *testing.T) {
	f := newFixture(t)
	newcomer := testutil.CreateUser(t, f.db, "new@example.com")

	_, err := NewFamilyService(f.db, testInviteTTL, "", f.log).CreateFamily(context.Background(), newcomer, " ")
	var validationErr validation.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestOverviewWithoutFamily(t *testing.T) {
	f := newFixture(t)
	loner := testutil.CreateUser(t, f.db, "loner@example.com")

	_, err := NewFamilyService(f.db, testInviteTTL, "", f.log).Overview(context.Background(), loner)
	assert.ErrorIs(t, err, ErrNoFamily)
}

func TestInviteAndJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	s := newFamilyService(f, now)

	invite, err := s.Invite(ctx, f.userID, InviteRequest{Email: "gran@example.com", Role: "Caregiver"})
	require.NoError(t, err)
	assert.Len(t, invite.InviteCode, 32)
	assert.Equal(t, "https://app.example.com/join?code="+invite.InviteCode, invite.InviteLink)
	assert.True(t, now.Add(testInviteTTL).Equal(invite.ExpiresAt))

	// Only the digest is stored
	assert.Zero(t, testutil.Count(t, f.db, "SELECT COUNT(*) FROM family_invites WHERE id = ?", invite.InviteCode))
	assert.Equal(t, 1, testutil.Count(t, f.db, "SELECT COUNT(*) FROM family_invites WHERE id = ?",
		security.HashInviteCode(invite.InviteCode)))

	info, err := s.VerifyInvite(ctx, strings.ToUpper(invite.InviteCode))
	require.NoError(t, err)
	assert.Equal(t, "Test Family", info.FamilyName)
	assert.Equal(t, models.RoleCaregiver, info.Role)
	assert.Equal(t, "gran@example.com", info.Email)

	gran := testutil.CreateUser(t, f.db, "gran@example.com")
	family, err := s.Join(ctx, gran, invite.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, f.familyID, family.ID)

	overview, err := s.Overview(ctx, gran)
	require.NoError(t, err)
	assert.Len(t, overview.Members, 2)
	assert.Len(t, overview.Children, 1)

	// Invites are single use
	_, err = s.VerifyInvite(ctx, invite.InviteCode)
	assert.ErrorIs(t, err, ErrInviteInvalid)
}

func TestInviteRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newFamilyService(f, time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC))

	invite, err := s.Invite(ctx, f.userID, InviteRequest{Email: "dad@example.com"})
	require.NoError(t, err)
	dad := testutil.CreateUser(t, f.db, "dad@example.com")
	_, err = s.Join(ctx, dad, invite.InviteCode)
	require.NoError(t, err)

	t.Run("non-owner cannot invite", func(t *testing.T) {
		_, err := s.Invite(ctx, dad, InviteRequest{Email: "aunt@example.com"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("owner role cannot be granted", func(t *testing.T) {
		_, err := s.Invite(ctx, f.userID, InviteRequest{Email: "aunt@example.com", Role: models.RoleOwner})
		var validationErr validation.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "role", validationErr.Field)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := s.Invite(ctx, f.userID, InviteRequest{Email: "not-an-email"})
		var validationErr validation.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})

	t.Run("no family", func(t *testing.T) {
		loner := testutil.CreateUser(t, f.db, "loner@example.com")
		_, err := s.Invite(ctx, loner, InviteRequest{Email: "aunt@example.com"})
		assert.ErrorIs(t, err, ErrNoFamily)
	})

	t.Run("member of another family cannot join", func(t *testing.T) {
		invite, err := s.Invite(ctx, f.userID, InviteRequest{Email: "aunt@example.com"})
		require.NoError(t, err)
		other := testutil.CreateUser(t, f.db, "other@example.com")
		testutil.CreateFamily(t, f.db, other)

		_, err = s.Join(ctx, other, invite.InviteCode)
		assert.ErrorIs(t, err, ErrAlreadyInFamily)
		// The failed join did not consume the invite
		_, err = s.VerifyInvite(ctx, invite.InviteCode)
		assert.NoError(t, err)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := s.VerifyInvite(ctx, "deadbeef")
		assert.ErrorIs(t, err, ErrInviteInvalid)
		_, err = s.VerifyInvite(ctx, "")
		assert.ErrorIs(t, err, ErrInviteInvalid)
	})
}

func TestExpiredInvites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

	invite, err := newFamilyService(f, created).Invite(ctx, f.userID, InviteRequest{Email: "late@example.com"})
	require.NoError(t, err)
	_, err = newFamilyService(f, created.Add(time.Hour)).Invite(ctx, f.userID, InviteRequest{Email: "later@example.com"})
	require.NoError(t, err)

	expired := newFamilyService(f, created.Add(testInviteTTL+time.Minute))
	_, err = expired.VerifyInvite(ctx, invite.InviteCode)
	assert.ErrorIs(t, err, ErrInviteExpired)

	late := testutil.CreateUser(t, f.db, "late@example.com")
	_, err = expired.Join(ctx, late, invite.InviteCode)
	assert.ErrorIs(t, err, ErrInviteExpired)

	n, err := expired.PurgeExpiredInvites(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, testutil.Count(t, f.db, "SELECT COUNT(*) FROM family_invites"))
}
