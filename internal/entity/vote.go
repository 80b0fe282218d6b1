package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteChoice string

const (
	ChoiceAI   VoteChoice = "ai"
	ChoiceReal VoteChoice = "real"
)

func (c VoteChoice) Valid() bool {
	return c == ChoiceAI || c == ChoiceReal
}

type VoteState string

const (
	VotePending VoteState = "pending"
	VoteScored  VoteState = "scored"
)

var ErrVoteAlreadyScored = errors.New("vote already scored")

type Vote struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_votes_content_user,priority:1" json:"content_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_votes_content_user,priority:2;index" json:"user_id"`
	Choice       VoteChoice `gorm:"size:10;not null" json:"choice"`
	State        VoteState  `gorm:"size:10;not null;default:'pending';index" json:"state"`
	IsCorrect    *bool      `json:"is_correct,omitempty"`
	PointsEarned int        `gorm:"not null;default:0" json:"points_earned"`
	ScoredAt     *time.Time `json:"scored_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Content *Content `gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE" json:"content,omitempty"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID, err = uuid.NewV7()
	}
	return
}

// Score moves a pending vote to scored. A vote is scored exactly once.
func (v *Vote) Score(truth VoteChoice, reward int, at time.Time) error {
	if v.State == VoteScored {
		return ErrVoteAlreadyScored
	}
	correct := v.Choice == truth
	v.IsCorrect = &correct
	v.PointsEarned = 0
	if correct {
		v.PointsEarned = reward
	}
	v.State = VoteScored
	v.ScoredAt = &at
	return nil
}
