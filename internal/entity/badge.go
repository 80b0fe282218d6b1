package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BadgeMetric string

const (
	MetricTotalVotes   BadgeMetric = "total_votes"
	MetricCorrectVotes BadgeMetric = "correct_votes"
	MetricAccuracy     BadgeMetric = "accuracy"
	MetricMaxStreak    BadgeMetric = "max_streak"
	MetricUploads      BadgeMetric = "uploads"
	MetricPoints       BadgeMetric = "points"
)

type BadgeOperator string

const (
	OpGTE BadgeOperator = "gte"
	OpLTE BadgeOperator = "lte"
	OpEQ  BadgeOperator = "eq"
)

type BadgeCondition struct {
	Metric   BadgeMetric   `gorm:"size:30;not null" json:"metric"`
	Operator BadgeOperator `gorm:"size:5;not null;default:'gte'" json:"operator"`
	Value    int           `gorm:"not null" json:"value"`
}

type Badge struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	IconURL     string         `gorm:"type:text" json:"icon_url"`
	Category    string         `gorm:"size:30;not null;default:'voting'" json:"category"` // voting, accuracy, streak, upload
	Condition   BadgeCondition `gorm:"embedded;embeddedPrefix:condition_" json:"condition"`
	PointReward int            `gorm:"not null;default:0" json:"point_reward"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"-"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badge,priority:1" json:"user_id"`
	BadgeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badge,priority:2" json:"badge_id"`
	Badge    Badge     `gorm:"foreignKey:BadgeID;constraint:OnDelete:CASCADE" json:"badge"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}
