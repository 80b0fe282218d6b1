package dto

import (
	"time"

	"anoa.com/realorai/internal/entity"
	contentDto "anoa.com/realorai/internal/modules/content/dto"
	commonDto "anoa.com/realorai/pkg/dto"
	"github.com/google/uuid"
)

type SubmitVoteInput struct {
	ContentID uuid.UUID         `json:"content_id" binding:"required"`
	Vote      entity.VoteChoice `json:"vote" binding:"required,oneof=ai real"`
}

type VotedContent struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	MediaURL   string    `json:"media_url"`
	MediaType  string    `json:"media_type"`
	IsRevealed bool      `json:"is_revealed"`
	IsAI       *bool     `json:"is_ai"`
}

type VoteResponse struct {
	ID           uuid.UUID         `json:"id"`
	ContentID    uuid.UUID         `json:"content_id"`
	Vote         entity.VoteChoice `json:"vote"`
	State        entity.VoteState  `json:"state"`
	IsCorrect    *bool             `json:"is_correct"`
	PointsEarned int               `json:"points_earned"`
	ScoredAt     *time.Time        `json:"scored_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Content      *VotedContent     `json:"content,omitempty"`
}

func NewVoteResponse(v *entity.Vote) VoteResponse {
	res := VoteResponse{
		ID:           v.ID,
		ContentID:    v.ContentID,
		Vote:         v.Choice,
		State:        v.State,
		IsCorrect:    v.IsCorrect,
		PointsEarned: v.PointsEarned,
		ScoredAt:     v.ScoredAt,
		CreatedAt:    v.CreatedAt,
	}
	if c := v.Content; c != nil {
		res.Content = &VotedContent{
			ID:         c.ID,
			Title:      c.Title,
			MediaURL:   c.MediaURL,
			MediaType:  c.MediaType,
			IsRevealed: c.IsRevealed,
		}
		if c.IsRevealed {
			isAI := c.IsAI
			res.Content.IsAI = &isAI
		}
	}
	return res
}

type SubmitVoteResponse struct {
	Vote  VoteResponse             `json:"vote"`
	Tally contentDto.TallyResponse `json:"tally"`
}

type VoteHistoryResponse struct {
	Votes []VoteResponse           `json:"votes"`
	Meta  commonDto.PaginationMeta `json:"meta"`
}
