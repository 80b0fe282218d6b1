package repository

import (
	"context"
	"time"

	"anoa.com/realorai/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaRepository interface {
	Create(ctx context.Context, asset *entity.MediaAsset) error
	AttachToContent(ctx context.Context, assetID uint, contentID uuid.UUID) error
	// FindOrphans returns assets created before cutoff that never got a content.
	FindOrphans(ctx context.Context, cutoff time.Time, limit int) ([]entity.MediaAsset, error)
	Delete(ctx context.Context, id uint) error
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, asset *entity.MediaAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *mediaRepository) AttachToContent(ctx context.Context, assetID uint, contentID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.MediaAsset{}).
		Where("id = ?", assetID).
		Update("content_id", contentID).Error
}

func (r *mediaRepository) FindOrphans(ctx context.Context, cutoff time.Time, limit int) ([]entity.MediaAsset, error) {
	var assets []entity.MediaAsset
	err := r.db.WithContext(ctx).
		Where("content_id IS NULL AND created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&assets).Error
	return assets, err
}

func (r *mediaRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.MediaAsset{}, id).Error
}
