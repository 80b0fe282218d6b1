package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCorrectVote = "correct_vote"
	ActionBadgeReward = "badge_reward"
	ActionAdminAdjust = "admin_adjust"
)

// PointLog records every point change so weekly and monthly boards can be
// summed without touching the running total on User.
type PointLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index:idx_user_date,priority:1;not null" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"-"`
	ActionType     string    `gorm:"size:50;not null" json:"action_type"`
	Points         int       `gorm:"not null" json:"points"`
	ReferenceID    string    `gorm:"size:36" json:"reference_id"`
	ReferenceTable string    `gorm:"size:50" json:"reference_table"` // 'contents', 'badges', 'users'
	CreatedAt      time.Time `gorm:"index:idx_user_date,priority:2;index:idx_date" json:"created_at"`
}
