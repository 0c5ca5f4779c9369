package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"kidoova/internal/database"
	"kidoova/internal/logger"
	"kidoova/internal/models"
	"kidoova/internal/repository"
	"kidoova/internal/security"
	"kidoova/internal/storage"
	"kidoova/internal/validation"
)

// Presigner hands out direct upload URLs
type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (*storage.PresignedUpload, error)
}

// MediaService handles photo uploads attached to children
type MediaService struct {
	media     *repository.MediaRepository
	children  *ChildService
	presigner Presigner
	logger    *logger.Logger
	now       func() time.Time
}

// NewMediaService creates a media service. A nil presigner disables uploads.
func NewMediaService(db database.Querier, presigner Presigner, log *logger.Logger) *MediaService {
	return &MediaService{
		media:     repository.NewMediaRepository(db),
		children:  NewChildService(db, log),
		presigner: presigner,
		logger:    log.With("component", "media"),
		now:       time.Now,
	}
}

// MediaRequest records a finished upload
type MediaRequest struct {
	ChildID  *string `json:"child_id"`
	Key      string  `json:"key"`
	Filename string  `json:"filename"`
	FileType string  `json:"file_type"`
	Size     int64   `json:"size"`
}

// UploadPrefix is where a user's uploads live in the bucket
func UploadPrefix(userID string) string {
	return "uploads/" + userID + "/"
}

// UploadURL presigns an upload of fileType into the user's upload prefix
func (s *MediaService) UploadURL(ctx context.Context, userID, fileType string) (*storage.PresignedUpload, error) {
	if s.presigner == nil {
		return nil, ErrMediaDisabled
	}
	ext, err := validation.FileExtension(fileType)
	if err != nil {
		return nil, err
	}
	name, err := security.GenerateObjectName()
	if err != nil {
		return nil, err
	}

	key := UploadPrefix(userID) + name + "." + ext
	return s.presigner.PresignUpload(ctx, key, strings.ToLower(strings.TrimSpace(fileType)))
}

// Record stores metadata for an upload the user made
func (s *MediaService) Record(ctx context.Context, userID string, req MediaRequest) (*models.Media, error) {
	if _, err := validation.FileExtension(req.FileType); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(req.Key)
	if !strings.HasPrefix(key, UploadPrefix(userID)) || path.Clean(key) != key {
		return nil, validation.ValidationError{Field: "key", Message: "key is not one of your uploads"}
	}
	if req.Size < 0 {
		return nil, validation.ValidationError{Field: "size", Message: "size cannot be negative"}
	}

	childID := trimmedOrNil(req.ChildID)
	if childID != nil {
		if _, err := s.children.GetChild(ctx, userID, *childID); err != nil {
			return nil, err
		}
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = path.Base(key)
	}
	media := &models.Media{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChildID:   childID,
		Key:       key,
		Filename:  filename,
		FileType:  strings.ToLower(strings.TrimSpace(req.FileType)),
		Size:      req.Size,
		CreatedAt: s.now(),
	}
	if err := s.media.CreateMedia(ctx, media); err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}
	return media, nil
}

// ListChildMedia returns a child's uploads, newest first
func (s *MediaService) ListChildMedia(ctx context.Context, userID, childID string) ([]models.Media, error) {
	if _, err := s.children.GetChild(ctx, userID, childID); err != nil {
		return nil, err
	}
	return s.media.ListChildMedia(ctx, childID)
}
