package category

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/internal/modules/category/dto"
	"anoa.com/realorai/internal/modules/category/repository"
	"anoa.com/realorai/pkg/apperror"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error)
	// DeleteCategory refuses while any content still points at the category.
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	// Exists reports whether slug names a known category.
	Exists(ctx context.Context, slug string) (bool, error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

// Slugify lowercases name and joins its words with dashes.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	slug := Slugify(req.Name)
	if slug == "" {
		return nil, apperror.Validation("name is required")
	}

	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, apperror.New(http.StatusConflict, fmt.Sprintf("category %q already exists", slug), apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &entity.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		SortOrder:   req.SortOrder,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, fmt.Sprintf("category %q already exists", slug), apperror.ErrConflict)
		}
		return nil, err
	}

	res := toResponse(entity.CategoryUsage{Category: *category})
	return &res, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.Validation("name is required")
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	count, err := s.repo.CountContent(ctx, category.Slug)
	if err != nil {
		return nil, err
	}
	res := toResponse(entity.CategoryUsage{Category: *category, ContentCount: count})
	return &res, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter dto.CategoryFilter) ([]dto.CategoryResponse, error) {
	rows, err := s.repo.ListWithUsage(ctx, filter.Search)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, toResponse(row))
	}
	return responses, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountContent(ctx, category.Slug)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.New(http.StatusConflict, fmt.Sprintf("category is still used by %d content items", count), apperror.ErrConflict)
	}

	return s.repo.Delete(ctx, id)
}

func (s *categoryService) Exists(ctx context.Context, slug string) (bool, error) {
	_, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *categoryService) find(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return category, nil
}

func toResponse(row entity.CategoryUsage) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:           row.ID,
		Name:         row.Name,
		Slug:         row.Slug,
		Description:  row.Description,
		SortOrder:    row.SortOrder,
		ContentCount: row.ContentCount,
		UpdatedAt:    row.UpdatedAt,
	}
}
