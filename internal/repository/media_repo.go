package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kidoova/internal/database"
	"kidoova/internal/models"
)

// MediaRepository records uploaded photos
type MediaRepository struct {
	db database.Querier
}

func NewMediaRepository(db database.Querier) *MediaRepository {
	return &MediaRepository{db: db}
}

// CreateMedia records an upload. ID and CreatedAt must be set.
func (r *MediaRepository) CreateMedia(ctx context.Context, media *models.Media) error {
	media.CreatedAt = dbTime(media.CreatedAt)
	query := `INSERT INTO media (id, user_id, child_id, object_key, filename, file_type, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, media.ID, media.UserID, media.ChildID, media.Key,
		media.Filename, media.FileType, media.Size, media.CreatedAt)
	if err != nil {
		return wrapInsertError(r.db, "media", err)
	}
	return nil
}

// ListChildMedia returns a child's uploads, newest first
func (r *MediaRepository) ListChildMedia(ctx context.Context, childID string) ([]models.Media, error) {
	query := `
		SELECT id, user_id, child_id, object_key, filename, file_type, size, created_at
		FROM media
		WHERE child_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer rows.Close()

	items := []models.Media{}
	for rows.Next() {
		var m models.Media
		var child sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &child, &m.Key, &m.Filename, &m.FileType, &m.Size, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		m.ChildID = nullStringPtr(child)
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate media: %w", err)
	}
	return items, nil
}
