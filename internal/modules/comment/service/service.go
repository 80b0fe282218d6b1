package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/internal/modules/comment/dto"
	"anoa.com/realorai/internal/modules/comment/repository"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	notifService "anoa.com/realorai/internal/modules/notification/service"
	"anoa.com/realorai/pkg/apperror"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/logger"
	"anoa.com/realorai/pkg/ratelimiter"
	"anoa.com/realorai/pkg/sanitize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	MaxCommentLength = 500
	actionComment    = "comment"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID, contentID uuid.UUID, input dto.CreateCommentInput) (*dto.CommentResponse, error)
	GetComments(ctx context.Context, contentID uuid.UUID, viewerID *uuid.UUID, query commonDto.PaginationQuery) (*dto.CommentListResponse, error)
	DeleteComment(ctx context.Context, id uuid.UUID, user *entity.User) error
	ToggleLike(ctx context.Context, userID, commentID uuid.UUID) (*dto.LikeResponse, error)
}

type commentService struct {
	repo         repository.CommentRepository
	contentRepo  contentRepo.ContentRepository
	notification notifService.NotificationService
	cooldown     *ratelimiter.Cooldown
	window       time.Duration
}

func NewCommentService(
	repo repository.CommentRepository,
	contentRepo contentRepo.ContentRepository,
	notification notifService.NotificationService,
	cooldown *ratelimiter.Cooldown,
	window time.Duration,
) CommentService {
	return &commentService{
		repo:         repo,
		contentRepo:  contentRepo,
		notification: notification,
		cooldown:     cooldown,
		window:       window,
	}
}

func (s *commentService) activeContent(ctx context.Context, id uuid.UUID) (*entity.Content, error) {
	content, err := s.contentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("content: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !content.IsActive || content.Status != entity.StatusApproved {
		return nil, fmt.Errorf("content: %w", apperror.ErrNotFound)
	}
	return content, nil
}

func (s *commentService) CreateComment(ctx context.Context, userID, contentID uuid.UUID, input dto.CreateCommentInput) (*dto.CommentResponse, error) {
	body := sanitize.PlainText(input.Body)
	if body == "" {
		return nil, apperror.Validation("comment must not be empty")
	}
	if utf8.RuneCountInString(body) > MaxCommentLength {
		return nil, apperror.Validation(fmt.Sprintf("comment must be at most %d characters", MaxCommentLength))
	}

	content, err := s.activeContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	release, err := s.cooldown.Acquire(ctx, userID, actionComment, s.window)
	if err != nil {
		var rlErr *ratelimiter.RateLimitError
		if errors.As(err, &rlErr) {
			return nil, err
		}
		logger.Log.Warn("comment cooldown unavailable, allowing request", zap.Error(err))
		release = func() {}
	}

	comment := &entity.Comment{
		ContentID: contentID,
		UserID:    userID,
		Body:      body,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		release()
		return nil, err
	}

	if s.notification != nil && content.UploaderID != userID {
		s.notification.NotifyAsync(&entity.Notification{
			UserID:     content.UploaderID,
			ActorID:    &userID,
			EntityID:   &content.ID,
			EntityType: "content",
			Type:       entity.NotifyNewComment,
			Message:    fmt.Sprintf("New comment on %q", content.Title),
		})
	}

	created, err := s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	res := dto.NewCommentResponse(created, false)
	return &res, nil
}

func (s *commentService) GetComments(ctx context.Context, contentID uuid.UUID, viewerID *uuid.UUID, query commonDto.PaginationQuery) (*dto.CommentListResponse, error) {
	if _, err := s.activeContent(ctx, contentID); err != nil {
		return nil, err
	}

	page, limit := query.Normalize(20, 100)
	comments, total, err := s.repo.FindByContent(ctx, contentID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	liked := map[uuid.UUID]bool{}
	if viewerID != nil && len(comments) > 0 {
		ids := make([]uuid.UUID, len(comments))
		for i := range comments {
			ids[i] = comments[i].ID
		}
		if liked, err = s.repo.LikedBy(ctx, *viewerID, ids); err != nil {
			return nil, err
		}
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, dto.NewCommentResponse(&comments[i], liked[comments[i].ID]))
	}

	return &dto.CommentListResponse{
		Comments: responses,
		Meta:     commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *commentService) DeleteComment(ctx context.Context, id uuid.UUID, user *entity.User) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment: %w", apperror.ErrNotFound)
		}
		return err
	}
	if user == nil || (comment.UserID != user.ID && !user.IsAdmin()) {
		return apperror.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("comment: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *commentService) ToggleLike(ctx context.Context, userID, commentID uuid.UUID) (*dto.LikeResponse, error) {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	liked, count, err := s.repo.ToggleLike(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}

	if liked && s.notification != nil && comment.UserID != userID {
		s.notification.NotifyAsync(&entity.Notification{
			UserID:     comment.UserID,
			ActorID:    &userID,
			EntityID:   &comment.ContentID,
			EntityType: "comment",
			Type:       entity.NotifyCommentLiked,
			Message:    "Someone liked your comment",
		})
	}

	return &dto.LikeResponse{Liked: liked, LikeCount: count}, nil
}
