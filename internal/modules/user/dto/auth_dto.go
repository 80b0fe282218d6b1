package dto

import (
	"time"

	"anoa.com/realorai/internal/entity"
	"github.com/google/uuid"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=30,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserStats struct {
	TotalVotes            int `json:"total_votes"`
	CorrectVotes          int `json:"correct_votes"`
	Accuracy              int `json:"accuracy"`
	Points                int `json:"points"`
	ConsecutiveCorrect    int `json:"consecutive_correct"`
	MaxConsecutiveCorrect int `json:"max_consecutive_correct"`
	UploadCount           int `json:"upload_count"`
}

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	AuthProvider string    `json:"auth_provider"`
	IsActive     bool      `json:"is_active"`
	Stats        UserStats `json:"stats"`
	CreatedAt    time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresAt int64         `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

func StatsOf(u *entity.User) UserStats {
	return UserStats{
		TotalVotes:            u.TotalVotes,
		CorrectVotes:          u.CorrectVotes,
		Accuracy:              u.Accuracy(),
		Points:                u.Points,
		ConsecutiveCorrect:    u.ConsecutiveCorrect,
		MaxConsecutiveCorrect: u.MaxConsecutiveCorrect,
		UploadCount:           u.UploadCount,
	}
}

func NewUserResponse(u *entity.User) *UserResponse {
	res := &UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role.Name,
		AvatarURL:    u.AvatarURL,
		AuthProvider: u.AuthProvider,
		IsActive:     u.IsActive,
		Stats:        StatsOf(u),
		CreatedAt:    u.CreatedAt,
	}
	if u.Profile != nil {
		res.DisplayName = u.Profile.DisplayName
		res.Bio = u.Profile.Bio
	}
	return res
}

// PublicUser is what other users may see.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Points    int       `json:"points"`
}

func NewPublicUser(u *entity.User) PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL, Points: u.Points}
}
