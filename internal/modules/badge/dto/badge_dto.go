package dto

import (
	"time"

	"anoa.com/realorai/internal/entity"
	"github.com/google/uuid"
)

type CreateBadgeInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	IconURL     string `json:"icon_url" binding:"omitempty,url"`
	Category    string `json:"category" binding:"omitempty,oneof=voting accuracy streak upload points"`
	Metric      string `json:"metric" binding:"required"`
	Operator    string `json:"operator"`
	Value       int    `json:"value" binding:"min=0"`
	PointReward int    `json:"point_reward" binding:"min=0"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateBadgeInput struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IconURL     *string `json:"icon_url"`
	Category    *string `json:"category" binding:"omitempty,oneof=voting accuracy streak upload points"`
	Metric      *string `json:"metric"`
	Operator    *string `json:"operator"`
	Value       *int    `json:"value" binding:"omitempty,min=0"`
	PointReward *int    `json:"point_reward" binding:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}

type EarnedBadge struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url,omitempty"`
	Category    string    `json:"category"`
	PointReward int       `json:"point_reward"`
	EarnedAt    time.Time `json:"earned_at"`
}

func NewEarnedBadges(userBadges []entity.UserBadge) []EarnedBadge {
	out := make([]EarnedBadge, 0, len(userBadges))
	for _, ub := range userBadges {
		out = append(out, EarnedBadge{
			ID:          ub.Badge.ID,
			Name:        ub.Badge.Name,
			Description: ub.Badge.Description,
			IconURL:     ub.Badge.IconURL,
			Category:    ub.Badge.Category,
			PointReward: ub.Badge.PointReward,
			EarnedAt:    ub.EarnedAt,
		})
	}
	return out
}
