package dto

import (
	"time"

	"anoa.com/realorai/internal/entity"
	commonDto "anoa.com/realorai/pkg/dto"
	"github.com/google/uuid"
)

type CreateCommentInput struct {
	Body string `json:"body" binding:"required,max=2000"`
}

type CommentResponse struct {
	ID        uuid.UUID                `json:"id"`
	ContentID uuid.UUID                `json:"content_id"`
	Body      string                   `json:"body"`
	LikeCount int                      `json:"like_count"`
	Liked     bool                     `json:"liked"`
	Author    commonDto.AuthorResponse `json:"author"`
	CreatedAt time.Time                `json:"created_at"`
}

func NewCommentResponse(c *entity.Comment, liked bool) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		ContentID: c.ContentID,
		Body:      c.Body,
		LikeCount: c.LikeCount,
		Liked:     liked,
		Author: commonDto.AuthorResponse{
			ID:        c.UserID.String(),
			Username:  c.User.Username,
			AvatarURL: c.User.AvatarURL,
		},
		CreatedAt: c.CreatedAt,
	}
}

type CommentListResponse struct {
	Comments []CommentResponse       `json:"comments"`
	Meta     commonDto.PaginationMeta `json:"meta"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
