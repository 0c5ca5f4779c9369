package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kidoova/internal/database"
	"kidoova/internal/models"
)

// PracticeRepository handles practice modules and a child's progress through them
type PracticeRepository struct {
	db database.Querier
}

// NewPracticeRepository creates a new practice repository
func NewPracticeRepository(db database.Querier) *PracticeRepository {
	return &PracticeRepository{db: db}
}

const practiceModuleColumns = "m.id, m.pillar_id, m.title, m.description, m.steps, m.created_at"

func scanPracticeModule(row interface{ Scan(...interface{}) error }) (*models.PracticeModule, error) {
	var m models.PracticeModule
	var steps string
	if err := row.Scan(&m.ID, &m.PillarID, &m.Title, &m.Description, &steps, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Steps = []models.PracticeStep{}
	if raw := strings.TrimSpace(steps); raw != "" {
		if err := json.Unmarshal([]byte(raw), &m.Steps); err != nil {
			return nil, fmt.Errorf("invalid steps for practice module %s: %w", m.ID, err)
		}
	}
	m.CompletedSteps = []string{}
	return &m, nil
}

// GetModule retrieves a practice module by ID
func (r *PracticeRepository) GetModule(ctx context.Context, id string) (*models.PracticeModule, error) {
	query := "SELECT " + practiceModuleColumns + " FROM practice_modules m WHERE m.id = ?"
	m, err := scanPracticeModule(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get practice module: %w", err)
	}
	return m, nil
}

// ListModules returns practice modules, newest first, with the steps childID
// has completed in each. A nil pillarID lists every pillar.
func (r *PracticeRepository) ListModules(ctx context.Context, childID string, pillarID *int) ([]models.PracticeModule, error) {
	query := "SELECT " + practiceModuleColumns + " FROM practice_modules m"
	var args []interface{}
	if pillarID != nil {
		query += " WHERE m.pillar_id = ?"
		args = append(args, *pillarID)
	}
	query += " ORDER BY m.created_at DESC, m.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query practice modules: %w", err)
	}
	defer rows.Close()

	modules := []models.PracticeModule{}
	for rows.Next() {
		m, err := scanPracticeModule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan practice module: %w", err)
		}
		modules = append(modules, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate practice modules: %w", err)
	}

	completed, err := r.completedSteps(ctx, childID)
	if err != nil {
		return nil, err
	}
	for i := range modules {
		if steps, ok := completed[modules[i].ID]; ok {
			modules[i].CompletedSteps = steps
		}
	}
	return modules, nil
}

// CompletedSteps returns the steps of one module the child has completed, in the order they were done
func (r *PracticeRepository) CompletedSteps(ctx context.Context, childID, moduleID string) ([]string, error) {
	completed, err := r.completedSteps(ctx, childID)
	if err != nil {
		return nil, err
	}
	if steps, ok := completed[moduleID]; ok {
		return steps, nil
	}
	return []string{}, nil
}

func (r *PracticeRepository) completedSteps(ctx context.Context, childID string) (map[string][]string, error) {
	query := `
		SELECT module_id, step_id
		FROM practice_progress
		WHERE child_id = ?
		ORDER BY completed_at ASC, step_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query practice progress: %w", err)
	}
	defer rows.Close()

	completed := map[string][]string{}
	for rows.Next() {
		var moduleID, stepID string
		if err := rows.Scan(&moduleID, &stepID); err != nil {
			return nil, fmt.Errorf("failed to scan practice progress: %w", err)
		}
		completed[moduleID] = append(completed[moduleID], stepID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate practice progress: %w", err)
	}
	return completed, nil
}

// RecordStep marks a step complete for a child. It reports false when the
// step was already recorded.
func (r *PracticeRepository) RecordStep(ctx context.Context, childID, moduleID, stepID string, at time.Time) (bool, error) {
	query := r.db.GetDialect().InsertIgnore(
		"INSERT INTO practice_progress (child_id, module_id, step_id, completed_at) VALUES (?, ?, ?, ?)")
	result, err := r.db.ExecContext(ctx, query, childID, moduleID, stepID, dbTime(at))
	if err != nil {
		return false, fmt.Errorf("failed to record practice step: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check practice step: %w", err)
	}
	return n > 0, nil
}
