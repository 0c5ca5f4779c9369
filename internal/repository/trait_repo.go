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

// TraitRepository handles running trait totals and the scoring history
type TraitRepository struct {
	db database.Querier
}

// NewTraitRepository creates a new trait repository
func NewTraitRepository(db database.Querier) *TraitRepository {
	return &TraitRepository{db: db}
}

// AddToTraitScore adds delta to the child's running total for a trait in a
// single statement, creating the row on first use.
func (r *TraitRepository) AddToTraitScore(ctx context.Context, childID string, traitID int, delta float64, at time.Time) error {
	query := r.db.GetDialect().UpsertTraitScoreQuery()
	if _, err := r.db.ExecContext(ctx, query, childID, traitID, delta, dbTime(at)); err != nil {
		return fmt.Errorf("failed to add trait score: %w", err)
	}
	return nil
}

// AppendHistory writes one scoring event. ID must be set.
func (r *TraitRepository) AppendHistory(ctx context.Context, entry *models.TraitScoreHistoryEntry) error {
	entry.CompletedAt = dbTime(entry.CompletedAt)
	query := `INSERT INTO trait_score_history (id, child_id, trait_id, challenge_id, score_delta, feeling, reflection, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.ChildID, entry.TraitID, entry.ChallengeID,
		entry.ScoreDelta, entry.Feeling, entry.Reflection, entry.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to append trait history: %w", err)
	}
	return nil
}

// LatestHistoryTime returns the most recent scoring timestamp for a child and challenge, or nil
func (r *TraitRepository) LatestHistoryTime(ctx context.Context, childID, challengeID string) (*time.Time, error) {
	// ORDER BY instead of MAX() keeps the column type, so every driver scans a time
	query := `
		SELECT completed_at
		FROM trait_score_history
		WHERE child_id = ? AND challenge_id = ?
		ORDER BY completed_at DESC
		LIMIT 1
	`
	var latest time.Time
	err := r.db.QueryRowContext(ctx, query, childID, challengeID).Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest trait history: %w", err)
	}
	return &latest, nil
}

// HistoryAt returns the scoring events recorded for a child and challenge at
// exactly the given time, with each trait's name and current running total.
func (r *TraitRepository) HistoryAt(ctx context.Context, childID, challengeID string, at time.Time) ([]models.TraitXP, error) {
	query := `
		SELECT h.trait_id, t.name, h.score_delta, COALESCE(s.score, 0)
		FROM trait_score_history h
		JOIN traits t ON t.id = h.trait_id
		LEFT JOIN child_trait_scores s ON s.child_id = h.child_id AND s.trait_id = h.trait_id
		WHERE h.child_id = ? AND h.challenge_id = ? AND h.completed_at = ?
		ORDER BY h.trait_id
	`
	rows, err := r.db.QueryContext(ctx, query, childID, challengeID, dbTime(at))
	if err != nil {
		return nil, fmt.Errorf("failed to query trait history: %w", err)
	}
	defer rows.Close()

	traits := []models.TraitXP{}
	for rows.Next() {
		var xp models.TraitXP
		if err := rows.Scan(&xp.TraitID, &xp.TraitName, &xp.XPGained, &xp.NewTotal); err != nil {
			return nil, fmt.Errorf("failed to scan trait history: %w", err)
		}
		traits = append(traits, xp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trait history: %w", err)
	}
	return traits, nil
}

// ListTraitScores returns the child's trait totals, highest first
func (r *TraitRepository) ListTraitScores(ctx context.Context, childID string) ([]models.TraitScore, error) {
	query := `
		SELECT t.id, t.code, t.name, t.pillar_id, s.score, s.updated_at
		FROM child_trait_scores s
		JOIN traits t ON t.id = s.trait_id
		WHERE s.child_id = ?
		ORDER BY s.score DESC, t.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trait scores: %w", err)
	}
	defer rows.Close()

	scores := []models.TraitScore{}
	for rows.Next() {
		var s models.TraitScore
		var pillarID sql.NullInt64
		if err := rows.Scan(&s.TraitID, &s.TraitCode, &s.TraitName, &pillarID, &s.Score, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trait score: %w", err)
		}
		s.PillarID = nullIntPtr(pillarID)
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trait scores: %w", err)
	}
	return scores, nil
}
