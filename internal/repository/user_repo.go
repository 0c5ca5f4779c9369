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

// UserRepository handles database operations for parent accounts
type UserRepository struct {
	db database.Querier
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Querier) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, provider, provider_subject, email, name, picture, selected_child_id,
	has_completed_onboarding, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	var selected sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Provider,
		&user.ProviderSubject,
		&user.Email,
		&user.Name,
		&user.Picture,
		&selected,
		&user.HasCompletedOnboarding,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.SelectedChildID = nullStringPtr(selected)
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByIdentity retrieves a user by identity provider and subject
func (r *UserRepository) GetUserByIdentity(ctx context.Context, provider, subject string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE provider = ? AND provider_subject = ?"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, provider, subject))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by identity: %w", err)
	}
	return user, nil
}

// UpsertFromIdentity returns the user for a verified identity, creating the
// account on first sign-in and refreshing profile fields on later ones.
func (r *UserRepository) UpsertFromIdentity(ctx context.Context, identity models.Identity, now time.Time) (*models.User, error) {
	now = dbTime(now)

	existing, err := r.GetUserByIdentity(ctx, identity.Provider, identity.Subject)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		query := "UPDATE users SET email = ?, name = ?, picture = ?, updated_at = ? WHERE id = ?"
		if _, err := r.db.ExecContext(ctx, query, identity.Email, identity.Name, identity.Picture, now, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		existing.Email = identity.Email
		existing.Name = identity.Name
		existing.Picture = identity.Picture
		existing.UpdatedAt = now
		return existing, nil
	}

	user := &models.User{
		ID:              uuid.NewString(),
		Provider:        identity.Provider,
		ProviderSubject: identity.Subject,
		Email:           identity.Email,
		Name:            identity.Name,
		Picture:         identity.Picture,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	query := `INSERT INTO users (id, provider, provider_subject, email, name, picture, has_completed_onboarding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, user.ID, user.Provider, user.ProviderSubject, user.Email,
		user.Name, user.Picture, false, now, now)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			// Lost a race with a concurrent first sign-in
			return r.GetUserByIdentity(ctx, identity.Provider, identity.Subject)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// SetSelectedChild records which child the user last worked with
func (r *UserRepository) SetSelectedChild(ctx context.Context, userID, childID string, now time.Time) error {
	query := "UPDATE users SET selected_child_id = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, childID, dbTime(now), userID); err != nil {
		return fmt.Errorf("failed to set selected child: %w", err)
	}
	return nil
}

// MarkOnboardingComplete flags the user as having finished onboarding
func (r *UserRepository) MarkOnboardingComplete(ctx context.Context, userID string, now time.Time) error {
	query := "UPDATE users SET has_completed_onboarding = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, true, dbTime(now), userID); err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}
