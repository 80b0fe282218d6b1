package repository

import (
	"context"
	"strings"

	"anoa.com/realorai/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	FindBySlug(ctx context.Context, slug string) (*entity.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	// ListWithUsage returns categories matching search, each with its count of
	// approved, active content.
	ListWithUsage(ctx context.Context, search string) ([]entity.CategoryUsage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// CountContent counts every content row in slug, whatever its status.
	CountContent(ctx context.Context, slug string) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Model(category).
		Select("name", "description", "sort_order").
		Updates(category).Error
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListWithUsage(ctx context.Context, search string) ([]entity.CategoryUsage, error) {
	live := r.db.Model(&entity.Content{}).
		Select("category, COUNT(*) AS total").
		Where("status = ? AND is_active = ?", entity.StatusApproved, true).
		Group("category")

	query := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.*, COALESCE(live.total, 0) AS content_count").
		Joins("LEFT JOIN (?) AS live ON live.category = categories.slug", live)

	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(categories.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var rows []entity.CategoryUsage
	err := query.Order("categories.sort_order ASC").Order("categories.name ASC").Scan(&rows).Error
	return rows, err
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id).Error
}

func (r *categoryRepository) CountContent(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Content{}).Where("category = ?", slug).Count(&count).Error
	return count, err
}
