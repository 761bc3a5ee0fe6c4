// Package service holds the business logic between the HTTP handlers and
// the storage/repository layers.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mediavault/internal/cache"
	"mediavault/internal/models"
	"mediavault/internal/repository"
	"mediavault/internal/storage"
	"mediavault/internal/token"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// UploadMediaInput carries one multipart upload into the service layer.
type UploadMediaInput struct {
	Title    string
	Type     string
	Filename string
	Size     int64
	Content  io.Reader
}

// StreamURLResult is the issued playback grant for one asset.
type StreamURLResult struct {
	StreamURL        string `json:"stream_url"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// MediaService manages asset metadata and the blob bytes behind it.
type MediaService struct {
	repo           repository.MediaRepository
	blobs          storage.BlobStore
	tokens         *token.Service
	rdb            *redis.Client
	maxUploadBytes int64
}

// NewMediaService returns a MediaService.
func NewMediaService(repo repository.MediaRepository, blobs storage.BlobStore, tokens *token.Service, rdb *redis.Client, maxUploadBytes int64) *MediaService {
	return &MediaService{
		repo:           repo,
		blobs:          blobs,
		tokens:         tokens,
		rdb:            rdb,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload validates the input, stores the bytes, then records the metadata
// row. If the metadata write fails the stored blob is removed so no
// orphaned bytes survive a failed upload.
func (s *MediaService) Upload(ctx context.Context, input UploadMediaInput) (*models.MediaAsset, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if !models.IsValidMediaType(input.Type) {
		return nil, models.NewValidationError(fmt.Sprintf("type must be %q or %q", models.MediaTypeVideo, models.MediaTypeAudio))
	}
	if input.Content == nil || input.Size <= 0 {
		return nil, models.NewValidationError("media file is required")
	}
	if s.maxUploadBytes > 0 && input.Size > s.maxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("file exceeds maximum upload size of %d bytes", s.maxUploadBytes))
	}

	locator, err := s.blobs.Put(ctx, input.Content, input.Size, input.Filename)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("store media bytes: %w", err))
	}

	media := &models.MediaAsset{
		ID:      uuid.NewString(),
		Title:   title,
		Type:    input.Type,
		Locator: locator,
	}
	if err := s.repo.Create(ctx, media); err != nil {
		if rmErr := s.blobs.Remove(ctx, locator); rmErr != nil {
			slog.Warn("failed to remove blob after metadata write failure",
				"locator", locator, "error", rmErr)
		}
		return nil, err
	}

	// A fresh asset has no views; drop any stale snapshot under its key.
	if err := cache.Invalidate(ctx, s.rdb, cache.AnalyticsKey(media.ID)); err != nil {
		slog.Warn("analytics cache invalidation failed after upload",
			"media_id", media.ID, "error", err)
	}

	return media, nil
}

// GetByID returns the asset or a not-found error.
func (s *MediaService) GetByID(ctx context.Context, id string) (*models.MediaAsset, error) {
	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return nil, models.NewNotFoundError("media", id)
	}
	return media, nil
}

// List returns stored assets newest first.
func (s *MediaService) List(ctx context.Context, limit, offset int) ([]models.MediaAsset, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// StreamURL issues a short-lived stream token for the asset and returns the
// ready-to-use playback URL. baseURL is the request's scheme and host.
func (s *MediaService) StreamURL(ctx context.Context, mediaID, baseURL string) (*StreamURLResult, error) {
	media, err := s.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	signed, expiresIn, err := s.tokens.IssueStream(media.ID)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("issue stream token: %w", err))
	}

	return &StreamURLResult{
		StreamURL:        fmt.Sprintf("%s/api/media/%s/stream?token=%s", strings.TrimRight(baseURL, "/"), media.ID, signed),
		ExpiresInSeconds: expiresIn,
	}, nil
}
