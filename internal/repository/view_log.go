package repository

import (
	"context"

	"mediavault/internal/models"
	"mediavault/internal/observability"

	"gorm.io/gorm"
)

// ViewLogRepository is the system of record for view events. Rows are
// append-only; there are no update or delete operations.
type ViewLogRepository interface {
	Append(ctx context.Context, event *models.MediaViewLog) error
	ListByMedia(ctx context.Context, mediaID string) ([]models.MediaViewLog, error)
}

type viewLogRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewViewLogRepository returns a new ViewLogRepository implementation.
func NewViewLogRepository(db *gorm.DB) ViewLogRepository {
	return &viewLogRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *viewLogRepository) Append(ctx context.Context, event *models.MediaViewLog) error {
	defer r.metrics.TrackQuery("append", "media_view_logs")()
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *viewLogRepository) ListByMedia(ctx context.Context, mediaID string) ([]models.MediaViewLog, error) {
	defer r.metrics.TrackQuery("list_by_media", "media_view_logs")()
	var events []models.MediaViewLog
	err := r.db.WithContext(ctx).
		Where("media_id = ?", mediaID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}
