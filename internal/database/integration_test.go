package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMigrated(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "kidoova.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations(ctx, nil))
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	tables := []string{
		"users", "families", "family_members", "family_invites", "children",
		"pillars", "challenges", "traits", "challenge_traits", "rewards", "theme_weeks",
		"challenge_logs", "challenge_reflections", "child_trait_scores", "trait_score_history",
		"child_rewards", "media", "practice_modules", "practice_progress",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s not found", table)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	var applied []string
	require.NoError(t, db.RunMigrations(ctx, func(f string) { applied = append(applied, f) }))
	assert.Empty(t, applied, "second run should not re-apply migrations")
}

func TestSeedReferenceData(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	require.NoError(t, db.SeedReferenceData(ctx))
	require.NoError(t, db.SeedReferenceData(ctx), "seeding twice must not fail")

	counts := map[string]int{
		"pillars":          len(defaultPillars),
		"traits":           len(defaultTraits),
		"challenges":       len(defaultChallenges),
		"rewards":          len(defaultRewards()),
		"theme_weeks":      53,
		"practice_modules": len(defaultPracticeModules),
	}
	for table, want := range counts {
		var got int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&got))
		assert.Equal(t, want, got, "row count for %s", table)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	insertUser := "INSERT INTO users (id, provider, provider_subject, email) VALUES (?, ?, ?, ?)"

	err := db.InTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, insertUser, "u1", "google", "sub-1", "a@example.com")
		return err
	})
	require.NoError(t, err)

	errBoom := errors.New("boom")
	err = db.InTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, insertUser, "u2", "google", "sub-2", "b@example.com"); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count, "rolled back insert must not be visible")
}

func TestUniqueViolationAndInsertIgnore(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	insertUser := "INSERT INTO users (id, provider, provider_subject, email) VALUES (?, ?, ?, ?)"
	_, err := db.ExecContext(ctx, insertUser, "u1", "google", "sub-1", "a@example.com")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insertUser, "u2", "google", "sub-1", "a@example.com")
	require.Error(t, err)
	assert.True(t, db.Dialect.IsUniqueViolation(err))

	res, err := db.ExecContext(ctx, db.Dialect.InsertIgnore(insertUser), "u3", "google", "sub-1", "a@example.com")
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUpsertTraitScoreAccumulates(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()
	require.NoError(t, db.SeedReferenceData(ctx))

	_, err := db.ExecContext(ctx, "INSERT INTO users (id, provider, provider_subject, email) VALUES ('u1', 'google', 's', 'e')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO families (id, name, created_by) VALUES ('f1', 'F', 'u1')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO children (id, family_id, name) VALUES ('c1', 'f1', 'Kid')")
	require.NoError(t, err)

	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	_, err = db.ExecContext(ctx, db.Dialect.UpsertTraitScoreQuery(), "c1", 1, 9.0, first)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, db.Dialect.UpsertTraitScoreQuery(), "c1", 1, 4.5, second)
	require.NoError(t, err)

	var score float64
	var updatedAt time.Time
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT score, updated_at FROM child_trait_scores WHERE child_id = ? AND trait_id = ?", "c1", 1).
		Scan(&score, &updatedAt))
	assert.InDelta(t, 13.5, score, 1e-9)
	assert.True(t, updatedAt.Equal(second))
}
