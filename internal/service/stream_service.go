package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mediavault/internal/byterange"
	"mediavault/internal/models"
	"mediavault/internal/observability"
	"mediavault/internal/repository"
	"mediavault/internal/storage"
	"mediavault/internal/token"

	"go.opentelemetry.io/otel/attribute"
)

// RangeNotSatisfiableError reports a Range header pointing past the end of
// the asset. Total lets the handler emit a "bytes */N" Content-Range.
type RangeNotSatisfiableError struct {
	Total int64
}

func (e *RangeNotSatisfiableError) Error() string {
	return fmt.Sprintf("requested range not satisfiable for %d bytes", e.Total)
}

// StreamResult is a fully resolved byte delivery: the response plan plus an
// open reader over exactly the planned window. The caller owns Body.
type StreamResult struct {
	Plan byterange.Plan
	Body io.ReadCloser
}

// StreamService authorizes and plans media byte delivery.
type StreamService struct {
	media     repository.MediaRepository
	blobs     storage.BlobStore
	tokens    *token.Service
	analytics *AnalyticsService
}

// NewStreamService returns a StreamService.
func NewStreamService(media repository.MediaRepository, blobs storage.BlobStore, tokens *token.Service, analytics *AnalyticsService) *StreamService {
	return &StreamService{
		media:     media,
		blobs:     blobs,
		tokens:    tokens,
		analytics: analytics,
	}
}

// Serve authorizes the stream token against the asset, resolves the
// requested byte window, records exactly one view event, and opens the
// window for delivery. Authorization is checked before any asset state is
// revealed: a bad token on a nonexistent asset reads as unauthorized, not
// as not-found. A 416 outcome records no view.
func (s *StreamService) Serve(ctx context.Context, mediaID, rawToken, rangeHeader, viewerIP string) (*StreamResult, error) {
	span, ctx := observability.NewSpan(ctx, "stream.serve")
	defer span.End()
	span.AddAttributes(
		attribute.String("media.id", mediaID),
		attribute.Bool("range.requested", rangeHeader != ""),
	)

	if rawToken == "" {
		return nil, models.NewUnauthorizedError("stream token is required")
	}
	claims, err := s.tokens.VerifyStream(rawToken)
	if err != nil {
		return nil, models.NewUnauthorizedError("invalid or expired stream token")
	}
	if claims.MediaID != mediaID {
		return nil, models.NewForbiddenError("token not valid for this media")
	}

	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return nil, models.NewNotFoundError("media", mediaID)
	}

	// Metadata can outlive the bytes if the store and the DB drift.
	exists, err := s.blobs.Exists(ctx, media.Locator)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("stat media blob: %w", err))
	}
	if !exists {
		return nil, models.NewNotFoundError("media", mediaID)
	}
	total, err := s.blobs.Size(ctx, media.Locator)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("stat media blob: %w", err))
	}

	plan, err := byterange.Resolve(total, rangeHeader, media.ContentType())
	if err != nil {
		if errors.Is(err, byterange.ErrUnsatisfiable) {
			return nil, &RangeNotSatisfiableError{Total: total}
		}
		return nil, models.NewInternalError(err)
	}

	// One authorized delivery is one view, whether full or partial. The
	// ledger is the system of record, so a failed append fails the stream
	// before any bytes are opened.
	if err := s.analytics.Record(ctx, mediaID, viewerIP, ViewSourceStream); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("record view: %w", err))
	}

	body, err := s.blobs.OpenRange(ctx, media.Locator, plan.Start, plan.End)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("open media window: %w", err))
	}

	return &StreamResult{Plan: plan, Body: body}, nil
}
