// Package testutil builds migrated SQLite databases and small fixtures for
// package tests. Fixtures are written with plain SQL so any package can use
// them without import cycles.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"kidoova/internal/database"
)

// NewDB returns a migrated and seeded SQLite database that is closed when the test ends
func NewDB(t testing.TB) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "kidoova_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations(ctx, nil))
	require.NoError(t, db.SeedReferenceData(ctx))
	return db
}

// CreateUser inserts a user and returns its id
func CreateUser(t testing.TB, db *database.DB, email string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO users (id, provider, provider_subject, email, name) VALUES (?, ?, ?, ?, ?)",
		id, "google", "sub-"+id, email, email)
	require.NoError(t, err)
	return id
}

// CreateFamily inserts a family owned by userID and returns its id
func CreateFamily(t testing.TB, db *database.DB, userID string) string {
	t.Helper()
	ctx := context.Background()
	id := uuid.NewString()
	_, err := db.ExecContext(ctx, "INSERT INTO families (id, name, created_by) VALUES (?, ?, ?)", id, "Test Family", userID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO family_members (id, family_id, user_id, role) VALUES (?, ?, ?, 'owner')",
		uuid.NewString(), id, userID)
	require.NoError(t, err)
	return id
}

// CreateChild inserts a child in the given family and age range and returns its id
func CreateChild(t testing.TB, db *database.DB, familyID, ageRange string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO children (id, family_id, name, age_range) VALUES (?, ?, ?, ?)", id, familyID, "Kid", ageRange)
	require.NoError(t, err)
	return id
}

// CreateChallenge inserts a challenge with the given trait weights and returns its id
func CreateChallenge(t testing.TB, db *database.DB, pillarID int, ageRange string, weights map[int]float64) string {
	t.Helper()
	ctx := context.Background()
	id := "test-" + uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO challenges (id, pillar_id, title, description, goal, steps, example_dialogue, tip, age_range, difficulty_level)
		VALUES (?, ?, ?, '', '', '[]', '', '', ?, 1)`, id, pillarID, "Challenge "+id, ageRange)
	require.NoError(t, err)
	for traitID, weight := range weights {
		_, err := db.ExecContext(ctx, "INSERT INTO challenge_traits (challenge_id, trait_id, weight) VALUES (?, ?, ?)",
			id, traitID, weight)
		require.NoError(t, err)
	}
	return id
}

// LogCompletion inserts a completed challenge log at the given time, bucketed into a day in loc
func LogCompletion(t testing.TB, db *database.DB, childID, challengeID string, at time.Time, loc *time.Location) {
	t.Helper()
	at = at.UTC().Truncate(time.Microsecond)
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO challenge_logs (id, child_id, challenge_id, completed_at, completed_day, completed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), childID, challengeID, at, at.In(loc).Format("2006-01-02"), true)
	require.NoError(t, err)
}

// Count returns SELECT COUNT(*) for the given query
func Count(t testing.TB, db *database.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}
