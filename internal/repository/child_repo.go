package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kidoova/internal/database"
	"kidoova/internal/models"
)

// ChildRepository handles database operations for child profiles
type ChildRepository struct {
	db database.Querier
}

// NewChildRepository creates a new child repository
func NewChildRepository(db database.Querier) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = "c.id, c.family_id, c.name, c.birthdate, c.gender, c.age_range, c.avatar_url, c.created_at, c.updated_at"

func scanChild(row interface{ Scan(...interface{}) error }) (*models.Child, error) {
	var child models.Child
	var birthdate, gender, avatar sql.NullString
	if err := row.Scan(
		&child.ID,
		&child.FamilyID,
		&child.Name,
		&birthdate,
		&gender,
		&child.AgeRange,
		&avatar,
		&child.CreatedAt,
		&child.UpdatedAt,
	); err != nil {
		return nil, err
	}
	child.Birthdate = nullStringPtr(birthdate)
	child.Gender = nullStringPtr(gender)
	child.AvatarURL = nullStringPtr(avatar)
	return &child, nil
}

// CreateChild creates a new child profile. ID, FamilyID and the timestamps must be set.
func (r *ChildRepository) CreateChild(ctx context.Context, child *models.Child) error {
	child.CreatedAt = dbTime(child.CreatedAt)
	child.UpdatedAt = dbTime(child.UpdatedAt)
	query := `INSERT INTO children (id, family_id, name, birthdate, gender, age_range, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, child.ID, child.FamilyID, child.Name, child.Birthdate, child.Gender,
		child.AgeRange, child.AvatarURL, child.CreatedAt, child.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}
	return nil
}

// UpdateChild overwrites the editable fields of a child profile
func (r *ChildRepository) UpdateChild(ctx context.Context, child *models.Child) error {
	child.UpdatedAt = dbTime(child.UpdatedAt)
	query := `UPDATE children SET name = ?, birthdate = ?, gender = ?, age_range = ?, avatar_url = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, child.Name, child.Birthdate, child.Gender, child.AgeRange,
		child.AvatarURL, child.UpdatedAt, child.ID)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

// GetChildByID retrieves a child by ID
func (r *ChildRepository) GetChildByID(ctx context.Context, childID string) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children c WHERE c.id = ?"
	child, err := scanChild(r.db.QueryRowContext(ctx, query, childID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetChildForUser retrieves a child only if it belongs to a family the user is a member of
func (r *ChildRepository) GetChildForUser(ctx context.Context, childID, userID string) (*models.Child, error) {
	query := `SELECT ` + childColumns + `
		FROM children c
		JOIN family_members fm ON fm.family_id = c.family_id
		WHERE c.id = ? AND fm.user_id = ?`
	child, err := scanChild(r.db.QueryRowContext(ctx, query, childID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetFamilyChildren retrieves all children in a family
func (r *ChildRepository) GetFamilyChildren(ctx context.Context, familyID string) ([]models.Child, error) {
	query := `SELECT ` + childColumns + `
		FROM children c
		WHERE c.family_id = ?
		ORDER BY c.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	children := []models.Child{}
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *child)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate children: %w", err)
	}
	return children, nil
}
