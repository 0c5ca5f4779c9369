package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kidoova/internal/database"
	"kidoova/internal/models"
)

// CatalogRepository reads the static reference data: pillars, challenges,
// trait weights and theme weeks.
type CatalogRepository struct {
	db database.Querier
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db database.Querier) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListPillars returns every pillar ordered by id
func (r *CatalogRepository) ListPillars(ctx context.Context) ([]models.Pillar, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description, icon, color FROM pillars ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query pillars: %w", err)
	}
	defer rows.Close()

	pillars := []models.Pillar{}
	for rows.Next() {
		var p models.Pillar
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Icon, &p.Color); err != nil {
			return nil, fmt.Errorf("failed to scan pillar: %w", err)
		}
		pillars = append(pillars, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pillars: %w", err)
	}
	return pillars, nil
}

// GetPillar retrieves a pillar by ID
func (r *CatalogRepository) GetPillar(ctx context.Context, id int) (*models.Pillar, error) {
	var p models.Pillar
	err := r.db.QueryRowContext(ctx, "SELECT id, name, description, icon, color FROM pillars WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Icon, &p.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pillar: %w", err)
	}
	return &p, nil
}

const challengeColumns = "c.id, c.pillar_id, c.title, c.description, c.goal, c.steps, c.example_dialogue, c.tip, c.age_range, c.difficulty_level"

func scanChallenge(row interface{ Scan(...interface{}) error }, extra ...interface{}) (*models.Challenge, error) {
	var c models.Challenge
	var steps string
	dest := []interface{}{
		&c.ID, &c.PillarID, &c.Title, &c.Description, &c.Goal, &steps,
		&c.ExampleDialogue, &c.Tip, &c.AgeRange, &c.DifficultyLevel,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.Steps = decodeSteps(steps)
	return &c, nil
}

// decodeSteps reads the JSON array stored in challenges.steps. Anything that
// is not an array is treated as a single free-text step.
func decodeSteps(raw string) []string {
	steps := []string{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return steps
	}
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return []string{raw}
	}
	return steps
}

// GetChallenge retrieves a challenge by ID
func (r *CatalogRepository) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	query := "SELECT " + challengeColumns + " FROM challenges c WHERE c.id = ?"
	c, err := scanChallenge(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return c, nil
}

// ChallengeFilter narrows a catalog listing. Zero values mean "any".
type ChallengeFilter struct {
	AgeRange string
	PillarID *int
	// ChildID, when set, fills IsCompleted from that child's logs
	ChildID string
}

// ListChallenges returns catalog challenges matching the filter ordered by pillar and difficulty
func (r *CatalogRepository) ListChallenges(ctx context.Context, filter ChallengeFilter) ([]models.ChallengeWithStatus, error) {
	var args []interface{}
	completed := "0"
	if filter.ChildID != "" {
		completed = "CASE WHEN EXISTS (SELECT 1 FROM challenge_logs cl WHERE cl.challenge_id = c.id AND cl.child_id = ?) THEN 1 ELSE 0 END"
		args = append(args, filter.ChildID)
	}

	var where []string
	if filter.AgeRange != "" {
		where = append(where, "c.age_range = ?")
		args = append(args, filter.AgeRange)
	}
	if filter.PillarID != nil {
		where = append(where, "c.pillar_id = ?")
		args = append(args, *filter.PillarID)
	}

	query := "SELECT " + challengeColumns + ", " + completed + " FROM challenges c"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.pillar_id, c.difficulty_level, c.title"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer rows.Close()

	challenges := []models.ChallengeWithStatus{}
	for rows.Next() {
		var isCompleted int
		c, err := scanChallenge(rows, &isCompleted)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, models.ChallengeWithStatus{Challenge: *c, IsCompleted: isCompleted == 1})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate challenges: %w", err)
	}
	return challenges, nil
}

// CountChallengesByPillar returns how many catalog challenges each pillar has for an age range
func (r *CatalogRepository) CountChallengesByPillar(ctx context.Context, ageRange string) (map[int]int, error) {
	query := "SELECT pillar_id, COUNT(*) FROM challenges WHERE age_range = ? GROUP BY pillar_id"
	return queryIntCounts(ctx, r.db, query, ageRange)
}

// PillarProgress counts a pillar's age-appropriate challenges and how many of them the child has completed
func (r *CatalogRepository) PillarProgress(ctx context.Context, pillarID int, childID, ageRange string) (total, completed int, err error) {
	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM challenges WHERE pillar_id = ? AND age_range = ?", pillarID, ageRange).Scan(&total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count pillar challenges: %w", err)
	}

	query := `
		SELECT COUNT(DISTINCT cl.challenge_id)
		FROM challenge_logs cl
		JOIN challenges c ON c.id = cl.challenge_id
		WHERE cl.child_id = ? AND c.pillar_id = ? AND c.age_range = ?
	`
	if err := r.db.QueryRowContext(ctx, query, childID, pillarID, ageRange).Scan(&completed); err != nil {
		return 0, 0, fmt.Errorf("failed to count completed pillar challenges: %w", err)
	}
	return total, completed, nil
}

// GetChallengeTraitWeights returns the trait weights configured for a challenge
func (r *CatalogRepository) GetChallengeTraitWeights(ctx context.Context, challengeID string) ([]models.ChallengeTraitWeight, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT trait_id, weight FROM challenge_traits WHERE challenge_id = ? ORDER BY trait_id", challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trait weights: %w", err)
	}
	defer rows.Close()

	var weights []models.ChallengeTraitWeight
	for rows.Next() {
		var w models.ChallengeTraitWeight
		if err := rows.Scan(&w.TraitID, &w.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan trait weight: %w", err)
		}
		weights = append(weights, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trait weights: %w", err)
	}
	return weights, nil
}

// GetThemeWeek retrieves the theme for a week number
func (r *CatalogRepository) GetThemeWeek(ctx context.Context, weekNumber int) (*models.ThemeWeek, error) {
	var theme models.ThemeWeek
	var pillarID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT id, week_number, title, description, pillar_id FROM theme_weeks WHERE week_number = ?", weekNumber).
		Scan(&theme.ID, &theme.WeekNumber, &theme.Title, &theme.Description, &pillarID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get theme week: %w", err)
	}
	theme.PillarID = nullIntPtr(pillarID)
	return &theme, nil
}

// queryIntCounts runs a two-column (int key, count) query into a map
func queryIntCounts(ctx context.Context, db database.Querier, query string, args ...interface{}) (map[int]int, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var key, count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counts: %w", err)
	}
	return counts, nil
}
