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

// InvitationRepository stores pending family invites keyed by the digest of their code
type InvitationRepository struct {
	db database.Querier
}

func NewInvitationRepository(db database.Querier) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// CreateInvitation stores a new invite
func (r *InvitationRepository) CreateInvitation(ctx context.Context, invite *models.FamilyInvite) error {
	query := `INSERT INTO family_invites (id, family_id, email, role, created_by, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	invite.CreatedAt = dbTime(invite.CreatedAt)
	invite.ExpiresAt = dbTime(invite.ExpiresAt)
	_, err := r.db.ExecContext(ctx, query, invite.CodeHash, invite.FamilyID, invite.Email, invite.Role,
		invite.CreatedBy, invite.CreatedAt, invite.ExpiresAt)
	if err != nil {
		return wrapInsertError(r.db, "family invite", err)
	}
	return nil
}

// GetInvitationByHash retrieves an invite and the name of its family
func (r *InvitationRepository) GetInvitationByHash(ctx context.Context, codeHash string) (*models.FamilyInvite, error) {
	query := `
		SELECT i.id, i.family_id, i.email, i.role, i.created_by, i.created_at, i.expires_at, f.name
		FROM family_invites i
		JOIN families f ON f.id = i.family_id
		WHERE i.id = ?
	`
	var inv models.FamilyInvite
	err := r.db.QueryRowContext(ctx, query, codeHash).Scan(
		&inv.CodeHash,
		&inv.FamilyID,
		&inv.Email,
		&inv.Role,
		&inv.CreatedBy,
		&inv.CreatedAt,
		&inv.ExpiresAt,
		&inv.FamilyName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return &inv, nil
}

// DeleteInvitation removes a used invite
func (r *InvitationRepository) DeleteInvitation(ctx context.Context, codeHash string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM family_invites WHERE id = ?", codeHash); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	return nil
}

// DeleteExpiredInvitations removes invites that expired before now and reports how many went
func (r *InvitationRepository) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM family_invites WHERE expires_at < ?", dbTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitations: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted invitations: %w", err)
	}
	return n, nil
}
