package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"max=300"`
	SortOrder   int    `json:"sort_order" binding:"min=0"`
}

// UpdateCategoryRequest changes display fields only; the slug is fixed.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=50"`
	Description *string `json:"description" binding:"omitempty,max=300"`
	SortOrder   *int    `json:"sort_order" binding:"omitempty,min=0"`
}

type CategoryFilter struct {
	Search string `form:"search"`
}

type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	SortOrder    int       `json:"sort_order"`
	ContentCount int64     `json:"content_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}
