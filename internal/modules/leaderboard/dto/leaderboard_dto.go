package dto

import (
	commonDto "anoa.com/realorai/pkg/dto"
	"github.com/google/uuid"
)

// LeaderboardEntry is one row of the public points board.
// Position is 1-based.
type LeaderboardEntry struct {
	UserID             uuid.UUID                    `json:"user_id"`
	Username           string                       `json:"username"`
	AvatarURL          *string                      `json:"avatar_url,omitempty"`
	Position           int                          `json:"position"`
	Points             int                          `json:"points"` // points in the requested timeframe
	Accuracy           int                          `json:"accuracy"`
	GamificationStatus commonDto.GamificationStatus `json:"gamification_status"`
}

// RankingEntry is one row of the accuracy ranking shown to admins.
type RankingEntry struct {
	Position     int       `json:"position"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Accuracy     int       `json:"accuracy"`
	CorrectVotes int       `json:"correct_votes"`
	TotalVotes   int       `json:"total_votes"`
	Points       int       `json:"points"`
}

type LeaderboardQuery struct {
	Timeframe string `form:"timeframe" binding:"omitempty,oneof=all_time weekly monthly"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=50"`
}
