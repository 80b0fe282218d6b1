package dto

import (
	"time"

	"anoa.com/realorai/internal/entity"
	commonDto "anoa.com/realorai/pkg/dto"
	"github.com/google/uuid"
)

// CreateContentInput is the multipart form of an upload. Tags and the media
// file are read separately by the handler.
type CreateContentInput struct {
	Title             string `form:"title" binding:"required,max=120"`
	Description       string `form:"description" binding:"max=2000"`
	IsAI              *bool  `form:"is_ai" binding:"required"`
	IsRequestedReview bool   `form:"is_requested_review"`
	Category          string `form:"category" binding:"omitempty,max=50"`
	Difficulty        string `form:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Tags              any    `form:"-"`
}

type UpdateContentInput struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=120"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsAI        *bool   `json:"is_ai"`
	Category    *string `json:"category" binding:"omitempty,max=50"`
	Difficulty  *string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Tags        any     `json:"tags"`
}

type ContentListQuery struct {
	commonDto.PaginationQuery
	Category   string `form:"category"`
	Difficulty string `form:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	MediaType  string `form:"media_type" binding:"omitempty,oneof=image video"`
	Recycled   *bool  `form:"recycled"`
	Revealed   *bool  `form:"revealed"`
	Sort       string `form:"sort" binding:"omitempty,oneof=newest popular"`
}

type SearchQuery struct {
	commonDto.PaginationQuery
	Query      string `form:"q" binding:"required"`
	Category   string `form:"category"`
	Difficulty string `form:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	MediaType  string `form:"media_type" binding:"omitempty,oneof=image video"`
}

// Viewer is whoever is asking; nil for anonymous requests.
type Viewer struct {
	ID      uuid.UUID
	IsAdmin bool
}

func (v *Viewer) CanSeeAnswer(c *entity.Content) bool {
	if c.IsRevealed {
		return true
	}
	return v != nil && (v.IsAdmin || v.ID == c.UploaderID)
}

type TallyResponse struct {
	AIVotes        int `json:"ai_votes"`
	RealVotes      int `json:"real_votes"`
	TotalVotes     int `json:"total_votes"`
	AIPercentage   int `json:"ai_percentage"`
	RealPercentage int `json:"real_percentage"`
}

func NewTallyResponse(c *entity.Content) TallyResponse {
	return TallyResponse{
		AIVotes:        c.AIVotes,
		RealVotes:      c.RealVotes,
		TotalVotes:     c.TotalVotes,
		AIPercentage:   c.AIPercentage(),
		RealPercentage: c.RealPercentage(),
	}
}

type ContentResponse struct {
	ID                uuid.UUID                `json:"id"`
	Title             string                   `json:"title"`
	Description       string                   `json:"description"`
	MediaURL          string                   `json:"media_url"`
	MediaType         string                   `json:"media_type"`
	Category          string                   `json:"category"`
	Difficulty        string                   `json:"difficulty"`
	Tags              []string                 `json:"tags"`
	Status            string                   `json:"status"`
	IsRequestedReview bool                     `json:"is_requested_review"`
	IsAI              *bool                    `json:"is_ai"`
	IsRevealed        bool                     `json:"is_revealed"`
	RevealedAt        *time.Time               `json:"revealed_at,omitempty"`
	IsRecycled        bool                     `json:"is_recycled"`
	RecycleCount      int                      `json:"recycle_count"`
	Views             int64                    `json:"views"`
	Tally             TallyResponse            `json:"tally"`
	MyVote            *entity.VoteChoice       `json:"my_vote,omitempty"`
	Uploader          commonDto.AuthorResponse `json:"uploader"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// NewContentResponse hides the ground truth from viewers who may not see it yet.
func NewContentResponse(c *entity.Content, viewer *Viewer) ContentResponse {
	tags := []string(c.Tags)
	if tags == nil {
		tags = []string{}
	}

	res := ContentResponse{
		ID:                c.ID,
		Title:             c.Title,
		Description:       c.Description,
		MediaURL:          c.MediaURL,
		MediaType:         c.MediaType,
		Category:          c.Category,
		Difficulty:        c.Difficulty,
		Tags:              tags,
		Status:            c.Status,
		IsRequestedReview: c.IsRequestedReview,
		IsRevealed:        c.IsRevealed,
		RevealedAt:        c.RevealedAt,
		IsRecycled:        c.IsRecycled,
		RecycleCount:      c.RecycleCount,
		Views:             c.Views,
		Tally:             NewTallyResponse(c),
		Uploader: commonDto.AuthorResponse{
			ID:        c.UploaderID.String(),
			Username:  c.Uploader.Username,
			AvatarURL: c.Uploader.AvatarURL,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if viewer.CanSeeAnswer(c) {
		isAI := c.IsAI
		res.IsAI = &isAI
	}
	return res
}

type ContentListResponse struct {
	Contents []ContentResponse        `json:"contents"`
	Meta     commonDto.PaginationMeta `json:"meta"`
}
