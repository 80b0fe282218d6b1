package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MediaImage = "image"
	MediaVideo = "video"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Content struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UploaderID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"uploader_id"`
	Uploader          User                        `gorm:"foreignKey:UploaderID" json:"-"`
	Title             string                      `gorm:"size:120;not null" json:"title"`
	Description       string                      `gorm:"type:text" json:"description"`
	MediaURL          string                      `gorm:"type:text;not null" json:"media_url"`
	MediaType         string                      `gorm:"size:10;not null" json:"media_type"`
	Category          string                      `gorm:"size:50;index" json:"category"`
	Difficulty        string                      `gorm:"size:10;not null;default:'medium'" json:"difficulty"`
	IsAI              bool                        `gorm:"column:is_ai;not null" json:"is_ai"`
	Status            string                      `gorm:"size:20;not null;default:'pending';index" json:"status"`
	IsRequestedReview bool                        `gorm:"not null;default:false" json:"is_requested_review"`
	AIVotes           int                         `gorm:"column:ai_votes;not null;default:0" json:"ai_votes"`
	RealVotes         int                         `gorm:"column:real_votes;not null;default:0" json:"real_votes"`
	TotalVotes        int                         `gorm:"column:total_votes;not null;default:0" json:"total_votes"`
	IsRevealed        bool                        `gorm:"not null;default:false" json:"is_revealed"`
	RevealedAt        *time.Time                  `json:"revealed_at,omitempty"`
	Tags              datatypes.JSONSlice[string] `json:"tags"`
	IsRecycled        bool                        `gorm:"not null;default:false" json:"is_recycled"`
	RecycleAt         *time.Time                  `json:"recycle_at,omitempty"`
	RecycleCount      int                         `gorm:"not null;default:0" json:"recycle_count"`
	Views             int64                       `gorm:"not null;default:0" json:"views"`
	IsActive          bool                        `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt         time.Time                   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Content) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// GroundTruth is the choice a voter had to make to be correct.
func (c *Content) GroundTruth() VoteChoice {
	if c.IsAI {
		return ChoiceAI
	}
	return ChoiceReal
}

// AcceptsVotes reports whether the content is open for new votes.
func (c *Content) AcceptsVotes() bool {
	return c.IsActive && c.Status == StatusApproved && !c.IsRevealed
}

// AIPercentage is the share of votes that said "ai", as a whole percent.
func (c *Content) AIPercentage() int {
	return percentage(c.AIVotes, c.TotalVotes)
}

func (c *Content) RealPercentage() int {
	if c.TotalVotes == 0 {
		return 0
	}
	return 100 - c.AIPercentage()
}

func percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// MediaAsset tracks every stored upload so files whose content record never
// materialised can be swept.
type MediaAsset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	ContentID *uuid.UUID `gorm:"type:uuid;index" json:"content_id,omitempty"`
	FileURL   string     `gorm:"type:text;not null" json:"file_url"`
	FileType  string     `gorm:"size:100" json:"file_type"`
	Size      int64      `json:"size"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
