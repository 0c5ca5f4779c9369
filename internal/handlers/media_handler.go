package handlers

import (
	"net/http"

	"kidoova/internal/logger"
	"kidoova/internal/service"
)

// MediaHandler handles photo uploads
type MediaHandler struct {
	mediaService *service.MediaService
	logger       *logger.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *service.MediaService, log *logger.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		logger:       log.With("component", "media_handler"),
	}
}

type uploadURLRequest struct {
	FileType string `json:"file_type"`
}

// UploadURL presigns a direct upload to the bucket
func (h *MediaHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	upload, err := h.mediaService.UploadURL(r.Context(), userID(r), req.FileType)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to create upload URL", err)
		return
	}
	respondJSON(w, http.StatusOK, upload)
}

// Record stores metadata for a finished upload
func (h *MediaHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req service.MediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return
	}

	media, err := h.mediaService.Record(r.Context(), userID(r), req)
	if err != nil {
		respondWithServiceError(w, h.logger, "Failed to record upload", err)
		return
	}
	respondJSON(w, http.StatusCreated, media)
}
