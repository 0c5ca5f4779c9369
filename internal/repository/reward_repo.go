package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kidoova/internal/database"
	"kidoova/internal/models"
)

// RewardRepository handles the reward catalog and grants
type RewardRepository struct {
	db database.Querier
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db database.Querier) *RewardRepository {
	return &RewardRepository{db: db}
}

const rewardColumns = "r.id, r.title, r.description, r.icon, r.type, r.criteria_value, r.pillar_id"

func scanReward(row interface{ Scan(...interface{}) error }, extra ...interface{}) (*models.Reward, error) {
	var reward models.Reward
	var pillarID sql.NullInt64
	dest := []interface{}{
		&reward.ID, &reward.Title, &reward.Description, &reward.Icon,
		&reward.Type, &reward.CriteriaValue, &pillarID,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	reward.PillarID = nullIntPtr(pillarID)
	return &reward, nil
}

// FindCatalogReward looks up the catalog reward for a type and threshold.
// A nil pillarID matches only global rewards.
func (r *RewardRepository) FindCatalogReward(ctx context.Context, rewardType models.RewardType, value int, pillarID *int) (*models.Reward, error) {
	query := "SELECT " + rewardColumns + " FROM rewards r WHERE r.type = ? AND r.criteria_value = ?"
	args := []interface{}{string(rewardType), value}
	// Branch here rather than binding NULL, which PostgreSQL cannot type
	if pillarID == nil {
		query += " AND r.pillar_id IS NULL"
	} else {
		query += " AND r.pillar_id = ?"
		args = append(args, *pillarID)
	}
	query += " ORDER BY r.id LIMIT 1"

	reward, err := scanReward(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find catalog reward: %w", err)
	}
	return reward, nil
}

// GrantReward links a reward to a child. The unique key on (child_id, reward_id)
// makes repeated grants no-ops; the result reports whether a row was written.
func (r *RewardRepository) GrantReward(ctx context.Context, childID, rewardID string, at time.Time) (bool, error) {
	query := r.db.GetDialect().InsertIgnore("INSERT INTO child_rewards (id, child_id, reward_id, granted_at) VALUES (?, ?, ?, ?)")
	result, err := r.db.ExecContext(ctx, query, uuid.NewString(), childID, rewardID, dbTime(at))
	if err != nil {
		return false, fmt.Errorf("failed to grant reward: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check reward grant: %w", err)
	}
	return n > 0, nil
}

// ListChildRewards returns the child's granted rewards, most recent first
func (r *RewardRepository) ListChildRewards(ctx context.Context, childID string) ([]models.GrantedReward, error) {
	query := `SELECT ` + rewardColumns + `, cr.granted_at
		FROM rewards r
		JOIN child_rewards cr ON cr.reward_id = r.id
		WHERE cr.child_id = ?
		ORDER BY cr.granted_at DESC, r.id ASC`
	rows, err := r.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query child rewards: %w", err)
	}
	defer rows.Close()

	granted := []models.GrantedReward{}
	for rows.Next() {
		var grantedAt time.Time
		reward, err := scanReward(rows, &grantedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child reward: %w", err)
		}
		granted = append(granted, models.GrantedReward{Reward: *reward, GrantedAt: grantedAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate child rewards: %w", err)
	}
	return granted, nil
}

// ListCatalog returns the full reward catalog ordered by type and threshold
func (r *RewardRepository) ListCatalog(ctx context.Context) ([]models.Reward, error) {
	query := "SELECT " + rewardColumns + " FROM rewards r ORDER BY r.type, r.criteria_value, r.pillar_id, r.id"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	rewards := []models.Reward{}
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, *reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rewards: %w", err)
	}
	return rewards, nil
}

// NextUnearnedReward returns the lowest-threshold global reward of a type the
// child has not been granted yet, or nil when every one is earned.
func (r *RewardRepository) NextUnearnedReward(ctx context.Context, childID string, rewardType models.RewardType) (*models.Reward, error) {
	query := `SELECT ` + rewardColumns + `
		FROM rewards r
		WHERE r.type = ? AND r.pillar_id IS NULL
		AND NOT EXISTS (SELECT 1 FROM child_rewards cr WHERE cr.reward_id = r.id AND cr.child_id = ?)
		ORDER BY r.criteria_value ASC
		LIMIT 1`
	reward, err := scanReward(r.db.QueryRowContext(ctx, query, string(rewardType), childID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next reward: %w", err)
	}
	return reward, nil
}
