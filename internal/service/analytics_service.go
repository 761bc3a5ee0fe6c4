package service

import (
	"context"
	"log/slog"
	"time"

	"mediavault/internal/cache"
	"mediavault/internal/models"
	"mediavault/internal/observability"
	"mediavault/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// View event sources, used as metric labels.
const (
	ViewSourceStream   = "stream"
	ViewSourceEndpoint = "endpoint"
)

// AnalyticsService owns the view ledger and the cached snapshots derived
// from it. The ledger is the system of record; the cache only ever holds
// recomputable snapshots, so every cache failure degrades to a recompute.
type AnalyticsService struct {
	views    repository.ViewLogRepository
	media    repository.MediaRepository
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewAnalyticsService returns an AnalyticsService.
func NewAnalyticsService(views repository.ViewLogRepository, media repository.MediaRepository, rdb *redis.Client, cacheTTL time.Duration) *AnalyticsService {
	return &AnalyticsService{
		views:    views,
		media:    media,
		rdb:      rdb,
		cacheTTL: cacheTTL,
	}
}

// Record appends one view event and then invalidates the asset's cached
// snapshot. The invalidation runs synchronously after the ledger write so a
// subsequent read cannot serve a snapshot that predates this event. A
// failed ledger write never invalidates and is returned to the caller; a
// failed invalidation after a successful write is logged and swallowed so
// the view itself is not lost.
func (s *AnalyticsService) Record(ctx context.Context, mediaID, viewerIP, source string) error {
	event := &models.MediaViewLog{
		MediaID:  mediaID,
		ViewedBy: viewerIP,
	}
	if err := s.views.Append(ctx, event); err != nil {
		return err
	}
	observability.ViewsRecorded.WithLabelValues(source).Inc()

	if err := cache.Invalidate(ctx, s.rdb, cache.AnalyticsKey(mediaID)); err != nil {
		slog.Warn("analytics cache invalidation failed",
			"media_id", mediaID, "error", err)
	}
	return nil
}

// RecordForMedia verifies the asset exists before recording. This is the
// explicit view endpoint's path; the streaming path skips the extra lookup
// because it has already resolved the asset.
func (s *AnalyticsService) RecordForMedia(ctx context.Context, mediaID, viewerIP string) error {
	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if media == nil {
		return models.NewNotFoundError("media", mediaID)
	}
	return s.Record(ctx, mediaID, viewerIP, ViewSourceEndpoint)
}

// Get returns the analytics snapshot for the asset, serving from cache when
// a fresh snapshot exists and recomputing from the ledger otherwise. Any
// cache error on either side reads as a miss; the ledger answer is always
// returned to the caller even when it could not be cached.
func (s *AnalyticsService) Get(ctx context.Context, mediaID string) (*models.AnalyticsSnapshot, error) {
	span, ctx := observability.NewSpan(ctx, "analytics.snapshot")
	defer span.End()
	span.AddAttributes(attribute.String("media.id", mediaID))

	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return nil, models.NewNotFoundError("media", mediaID)
	}

	key := cache.AnalyticsKey(mediaID)
	var snapshot models.AnalyticsSnapshot
	hit, err := cache.GetJSON(ctx, s.rdb, key, &snapshot)
	if err != nil {
		slog.Warn("analytics cache read failed", "media_id", mediaID, "error", err)
	}
	if hit {
		observability.AnalyticsCacheHits.Inc()
		span.AddAttributes(attribute.Bool("cache.hit", true))
		return &snapshot, nil
	}
	observability.AnalyticsCacheMisses.Inc()
	span.AddAttributes(attribute.Bool("cache.hit", false))

	events, err := s.views.ListByMedia(ctx, mediaID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	snapshot = aggregate(events)

	if err := cache.SetJSON(ctx, s.rdb, key, &snapshot, s.cacheTTL); err != nil {
		slog.Warn("analytics cache write failed", "media_id", mediaID, "error", err)
	}
	return &snapshot, nil
}

// aggregate folds the ledger rows into a snapshot in a single pass. Day
// buckets are keyed by the event's UTC calendar date.
func aggregate(events []models.MediaViewLog) models.AnalyticsSnapshot {
	snapshot := models.AnalyticsSnapshot{
		ViewsPerDay: make(map[string]int64),
	}
	uniqueIPs := make(map[string]struct{})
	for _, e := range events {
		snapshot.TotalViews++
		uniqueIPs[e.ViewedBy] = struct{}{}
		day := e.CreatedAt.UTC().Format("2006-01-02")
		snapshot.ViewsPerDay[day]++
	}
	snapshot.UniqueIPs = int64(len(uniqueIPs))
	return snapshot
}
