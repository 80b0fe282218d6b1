package repository

import (
	"context"

	"anoa.com/realorai/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	FindAll(ctx context.Context, status string, limit, offset int) ([]entity.Report, int64, error)
	Save(ctx context.Context, report *entity.Report) error
	CountPending(ctx context.Context) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Omit("Reporter", "Content").Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	var report entity.Report
	if err := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Content").
		Where("id = ?", id).
		First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindAll(ctx context.Context, status string, limit, offset int) ([]entity.Report, int64, error) {
	var reports []entity.Report
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Reporter").
		Preload("Content").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) Save(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Omit("Reporter", "Content").Save(report).Error
}

func (r *reportRepository) CountPending(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Report{}).
		Where("status = ?", entity.ReportPending).
		Count(&total).Error
	return total, err
}
