// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"mediavault/internal/models"
	"mediavault/internal/observability"

	"gorm.io/gorm"
)

// MediaRepository defines persistence operations for media asset metadata.
type MediaRepository interface {
	Create(ctx context.Context, media *models.MediaAsset) error
	// GetByID returns (nil, nil) when the asset does not exist.
	GetByID(ctx context.Context, id string) (*models.MediaAsset, error)
	List(ctx context.Context, limit, offset int) ([]models.MediaAsset, error)
}

type mediaRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewMediaRepository returns a new MediaRepository implementation.
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *mediaRepository) Create(ctx context.Context, media *models.MediaAsset) error {
	defer r.metrics.TrackQuery("create", "media_assets")()
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mediaRepository) GetByID(ctx context.Context, id string) (*models.MediaAsset, error) {
	defer r.metrics.TrackQuery("get_by_id", "media_assets")()
	var media models.MediaAsset
	err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &media, nil
}

func (r *mediaRepository) List(ctx context.Context, limit, offset int) ([]models.MediaAsset, error) {
	defer r.metrics.TrackQuery("list", "media_assets")()
	var assets []models.MediaAsset
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&assets).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return assets, nil
}
