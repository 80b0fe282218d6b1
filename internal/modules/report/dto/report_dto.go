package dto

import (
	"time"

	"anoa.com/realorai/internal/entity"
	commonDto "anoa.com/realorai/pkg/dto"
	"github.com/google/uuid"
)

type CreateReportInput struct {
	ContentID   uuid.UUID `json:"content_id" binding:"required"`
	Reason      string    `json:"reason" binding:"required,oneof=spam inappropriate wrong_answer copyright other"`
	Description string    `json:"description" binding:"max=1000"`
}

type ReportListQuery struct {
	commonDto.PaginationQuery
	Status string `form:"status" binding:"omitempty,oneof=pending resolved dismissed"`
}

type ResolveReportInput struct {
	Status         string `json:"status" binding:"required,oneof=resolved dismissed"`
	Note           string `json:"note" binding:"max=1000"`
	DisableContent bool   `json:"disable_content"`
}

type ReportResponse struct {
	ID             uuid.UUID                 `json:"id"`
	ContentID      uuid.UUID                 `json:"content_id"`
	ContentTitle   string                    `json:"content_title,omitempty"`
	Reason         string                    `json:"reason"`
	Description    string                    `json:"description"`
	Status         string                    `json:"status"`
	Reporter       *commonDto.AuthorResponse `json:"reporter,omitempty"`
	ResolvedBy     *uuid.UUID                `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time                `json:"resolved_at,omitempty"`
	ResolutionNote string                    `json:"resolution_note,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

func NewReportResponse(r *entity.Report) ReportResponse {
	res := ReportResponse{
		ID:             r.ID,
		ContentID:      r.ContentID,
		Reason:         r.Reason,
		Description:    r.Details,
		Status:         r.Status,
		ResolvedBy:     r.ResolvedBy,
		ResolvedAt:     r.ResolvedAt,
		ResolutionNote: r.ResolutionNote,
		CreatedAt:      r.CreatedAt,
	}
	if r.Content != nil {
		res.ContentTitle = r.Content.Title
	}
	if r.Reporter != nil {
		res.Reporter = &commonDto.AuthorResponse{
			ID:        r.Reporter.ID.String(),
			Username:  r.Reporter.Username,
			AvatarURL: r.Reporter.AvatarURL,
		}
	}
	return res
}

type ReportListResponse struct {
	Reports []ReportResponse         `json:"reports"`
	Meta    commonDto.PaginationMeta `json:"meta"`
}
