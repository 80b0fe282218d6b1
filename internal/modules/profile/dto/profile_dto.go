package dto

import (
	"time"

	badgeDto "anoa.com/realorai/internal/modules/badge/dto"
	userDto "anoa.com/realorai/internal/modules/user/dto"
	commonDto "anoa.com/realorai/pkg/dto"
	"github.com/google/uuid"
)

// UpdateProfileInput represents the input for updating user profile
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name" form:"display_name" binding:"omitempty,max=50"`
	Bio         *string `json:"bio" form:"bio" binding:"omitempty,max=300"`
	Password    *string `json:"password" form:"password" binding:"omitempty,min=6,max=72"`
}

// ProfileResponse is returned when updating profile or getting current user profile
type ProfileResponse struct {
	User               *userDto.UserResponse        `json:"user"`
	Badges             []badgeDto.EarnedBadge       `json:"badges"`
	GamificationStatus commonDto.GamificationStatus `json:"gamification_status"`
}

type PublicStats struct {
	TotalVotes            int `json:"total_votes"`
	CorrectVotes          int `json:"correct_votes"`
	Accuracy              int `json:"accuracy"`
	Points                int `json:"points"`
	MaxConsecutiveCorrect int `json:"max_consecutive_correct"`
	UploadCount           int `json:"upload_count"`
}

// PublicProfileResponse is returned when viewing another user's public profile
type PublicProfileResponse struct {
	ID                 uuid.UUID                    `json:"id"`
	Username           string                       `json:"username"`
	DisplayName        string                       `json:"display_name,omitempty"`
	Role               string                       `json:"role"`
	AvatarURL          *string                      `json:"avatar_url,omitempty"`
	Bio                *string                      `json:"bio,omitempty"`
	CreatedAt          time.Time                    `json:"created_at"`
	Stats              PublicStats                  `json:"stats"`
	Badges             []badgeDto.EarnedBadge       `json:"badges"`
	Followers          int64                        `json:"followers"`
	Following          int64                        `json:"following"`
	IsFollowing        *bool                        `json:"is_following,omitempty"`
	GamificationStatus commonDto.GamificationStatus `json:"gamification_status"`
}
