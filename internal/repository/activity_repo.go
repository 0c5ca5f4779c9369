package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kidoova/internal/database"
	"kidoova/internal/models"
)

// ActivityRepository handles challenge completions and reflections
type ActivityRepository struct {
	db database.Querier
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db database.Querier) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// InsertChallengeLog stores a completion unless the child already completed
// the challenge on the same CompletedDay. The unique key on
// (child_id, challenge_id, completed_day) decides, so concurrent requests
// cannot both succeed. Returns false when nothing was written.
func (r *ActivityRepository) InsertChallengeLog(ctx context.Context, log *models.ChallengeLog) (bool, error) {
	log.CompletedAt = dbTime(log.CompletedAt)
	query := r.db.GetDialect().InsertIgnore(`INSERT INTO challenge_logs (id, child_id, challenge_id, completed_at, completed_day, completed)
		VALUES (?, ?, ?, ?, ?, ?)`)
	result, err := r.db.ExecContext(ctx, query, log.ID, log.ChildID, log.ChallengeID, log.CompletedAt, log.CompletedDay, log.Completed)
	if err != nil {
		return false, fmt.Errorf("failed to create challenge log: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check challenge log insert: %w", err)
	}
	return n > 0, nil
}

// CountChallengeLogs returns the child's lifetime number of challenge logs
func (r *ActivityRepository) CountChallengeLogs(ctx context.Context, childID string) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM challenge_logs WHERE child_id = ?", childID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count challenge logs: %w", err)
	}
	return total, nil
}

// CompletionTimes returns when the child completed challenges, oldest first
func (r *ActivityRepository) CompletionTimes(ctx context.Context, childID string) ([]time.Time, error) {
	query := "SELECT completed_at FROM challenge_logs WHERE child_id = ? AND completed = ? ORDER BY completed_at ASC"
	rows, err := r.db.QueryContext(ctx, query, childID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan completion time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completion times: %w", err)
	}
	return times, nil
}

// CountLogsByPillar groups the child's challenge logs by the pillar of their challenge
func (r *ActivityRepository) CountLogsByPillar(ctx context.Context, childID string) (map[int]int, error) {
	query := `
		SELECT c.pillar_id, COUNT(*)
		FROM challenge_logs cl
		JOIN challenges c ON c.id = cl.challenge_id
		WHERE cl.child_id = ?
		GROUP BY c.pillar_id
	`
	return queryIntCounts(ctx, r.db, query, childID)
}

// CreateReflection stores a reflection. ID and CreatedAt must be set.
func (r *ActivityRepository) CreateReflection(ctx context.Context, reflection *models.Reflection) error {
	reflection.CreatedAt = dbTime(reflection.CreatedAt)
	query := `INSERT INTO challenge_reflections (id, child_id, challenge_id, feeling, reflection, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, reflection.ID, reflection.ChildID, reflection.ChallengeID,
		reflection.Feeling, reflection.Reflection, reflection.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reflection: %w", err)
	}
	return nil
}

// LatestReflection returns the most recent reflection for a child and challenge, or nil
func (r *ActivityRepository) LatestReflection(ctx context.Context, childID, challengeID string) (*models.Reflection, error) {
	query := `
		SELECT id, child_id, challenge_id, feeling, reflection, created_at
		FROM challenge_reflections
		WHERE child_id = ? AND challenge_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`
	var ref models.Reflection
	var text sql.NullString
	err := r.db.QueryRowContext(ctx, query, childID, challengeID).Scan(
		&ref.ID,
		&ref.ChildID,
		&ref.ChallengeID,
		&ref.Feeling,
		&text,
		&ref.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reflection: %w", err)
	}
	ref.Reflection = nullStringPtr(text)
	return &ref, nil
}

// RecentFeelings returns up to limit feeling ratings for a child, newest first
func (r *ActivityRepository) RecentFeelings(ctx context.Context, childID string, limit int) ([]int, error) {
	query := `
		SELECT feeling
		FROM challenge_reflections
		WHERE child_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feelings: %w", err)
	}
	defer rows.Close()

	feelings := []int{}
	for rows.Next() {
		var f int
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan feeling: %w", err)
		}
		feelings = append(feelings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feelings: %w", err)
	}
	return feelings, nil
}
