package dto

import (
	userDto "anoa.com/realorai/internal/modules/user/dto"
	commonDto "anoa.com/realorai/pkg/dto"
	"github.com/google/uuid"
)

type SetPointsInput struct {
	Points *int `json:"points" binding:"required,min=0"`
}

type SetActiveInput struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type SetRoleInput struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

type SetStatusInput struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

type UserListQuery struct {
	commonDto.PaginationQuery
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=admin user"`
	IsActive *bool  `form:"is_active"`
}

type UserListResponse struct {
	Users []*userDto.UserResponse  `json:"users"`
	Meta  commonDto.PaginationMeta `json:"meta"`
}

type RevealResponse struct {
	ContentID       uuid.UUID `json:"content_id"`
	IsAI            bool      `json:"is_ai"`
	AIPercentage    int       `json:"ai_percentage"`
	RealPercentage  int       `json:"real_percentage"`
	TotalVotes      int       `json:"total_votes"`
	CorrectVoters   int       `json:"correct_voters"`
	IncorrectVoters int       `json:"incorrect_voters"`
	PointsAwarded   int       `json:"points_awarded"`
}
