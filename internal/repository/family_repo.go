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

// FamilyRepository handles database operations for families and membership
type FamilyRepository struct {
	db database.Querier
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db database.Querier) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a family and makes the creator its owner. Run it in a
// transaction so a failed membership insert does not leave an orphan family.
func (r *FamilyRepository) CreateFamily(ctx context.Context, name, creatorUserID string, now time.Time) (*models.Family, error) {
	now = dbTime(now)
	family := &models.Family{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: creatorUserID,
		CreatedAt: now,
	}

	query := "INSERT INTO families (id, name, created_by, created_at) VALUES (?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, family.ID, family.Name, family.CreatedBy, now); err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	if err := r.AddFamilyMember(ctx, family.ID, creatorUserID, models.RoleOwner, now); err != nil {
		return nil, err
	}

	return family, nil
}

// AddFamilyMember adds a user to a family. Returns ErrDuplicate when the user
// already belongs to a family.
func (r *FamilyRepository) AddFamilyMember(ctx context.Context, familyID, userID, role string, now time.Time) error {
	query := "INSERT INTO family_members (id, family_id, user_id, role, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), familyID, userID, role, dbTime(now)); err != nil {
		return wrapInsertError(r.db, "family member", err)
	}
	return nil
}

// GetUserFamily retrieves the family a user belongs to and their role in it
func (r *FamilyRepository) GetUserFamily(ctx context.Context, userID string) (*models.Family, string, error) {
	query := `
		SELECT f.id, f.name, f.created_by, f.created_at, fm.role
		FROM families f
		JOIN family_members fm ON fm.family_id = f.id
		WHERE fm.user_id = ?
	`
	var family models.Family
	var role string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&family.ID,
		&family.Name,
		&family.CreatedBy,
		&family.CreatedAt,
		&role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user family: %w", err)
	}
	return &family, role, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(ctx context.Context, familyID string) (*models.Family, error) {
	query := "SELECT id, name, created_by, created_at FROM families WHERE id = ?"
	var family models.Family
	err := r.db.QueryRowContext(ctx, query, familyID).Scan(
		&family.ID,
		&family.Name,
		&family.CreatedBy,
		&family.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return &family, nil
}

// GetFamilyMembers retrieves the members of a family with their names and emails
func (r *FamilyRepository) GetFamilyMembers(ctx context.Context, familyID string) ([]models.FamilyMember, error) {
	query := `
		SELECT fm.id, fm.family_id, fm.user_id, fm.role, fm.created_at, u.name, u.email
		FROM family_members fm
		JOIN users u ON u.id = fm.user_id
		WHERE fm.family_id = ?
		ORDER BY fm.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	members := []models.FamilyMember{}
	for rows.Next() {
		var m models.FamilyMember
		if err := rows.Scan(&m.ID, &m.FamilyID, &m.UserID, &m.Role, &m.CreatedAt, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family members: %w", err)
	}
	return members, nil
}
