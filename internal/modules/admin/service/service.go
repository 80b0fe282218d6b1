package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/internal/modules/admin/dto"
	badgeService "anoa.com/realorai/internal/modules/badge/service"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	contentService "anoa.com/realorai/internal/modules/content/service"
	leaderboardDto "anoa.com/realorai/internal/modules/leaderboard/dto"
	leaderboardService "anoa.com/realorai/internal/modules/leaderboard/service"
	notifService "anoa.com/realorai/internal/modules/notification/service"
	userDto "anoa.com/realorai/internal/modules/user/dto"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	"anoa.com/realorai/pkg/apperror"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rankingSize = 10

type AdminService interface {
	// RevealAnswer closes voting on the content and scores every pending vote.
	RevealAnswer(ctx context.Context, contentID uuid.UUID) (*dto.RevealResponse, error)
	// SetUserPoints sets the user's total to an absolute value.
	SetUserPoints(ctx context.Context, userID uuid.UUID, points int) (*userDto.UserResponse, error)
	GetRanking(ctx context.Context) ([]leaderboardDto.RankingEntry, error)
	ListUsers(ctx context.Context, query dto.UserListQuery) (*dto.UserListResponse, error)
	SetUserActive(ctx context.Context, adminID, userID uuid.UUID, active bool) (*userDto.UserResponse, error)
	SetUserRole(ctx context.Context, adminID, userID uuid.UUID, role string) (*userDto.UserResponse, error)
}

type adminService struct {
	contentRepo  contentRepo.ContentRepository
	contents     contentService.ContentService
	userRepo     userRepo.UserRepository
	leaderboard  leaderboardService.LeaderboardService
	badges       badgeService.BadgeService
	notification notifService.NotificationService
	reward       int
	now          func() time.Time
}

func NewAdminService(
	contentRepo contentRepo.ContentRepository,
	contents contentService.ContentService,
	userRepo userRepo.UserRepository,
	leaderboard leaderboardService.LeaderboardService,
	badges badgeService.BadgeService,
	notification notifService.NotificationService,
	reward int,
) AdminService {
	return &adminService{
		contentRepo:  contentRepo,
		contents:     contents,
		userRepo:     userRepo,
		leaderboard:  leaderboard,
		badges:       badges,
		notification: notification,
		reward:       reward,
		now:          time.Now,
	}
}

func (s *adminService) RevealAnswer(ctx context.Context, contentID uuid.UUID) (*dto.RevealResponse, error) {
	result, err := s.contentRepo.Reveal(ctx, contentID, s.reward, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("content: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	content := result.Content

	log := logger.Log.With(zap.String("content_id", contentID.String()))
	log.Info("answer revealed",
		zap.Bool("is_ai", content.IsAI),
		zap.Int("correct", len(result.CorrectVoters)),
		zap.Int("incorrect", len(result.IncorrectVoters)),
	)

	if s.leaderboard != nil && s.reward > 0 && len(result.CorrectVoters) > 0 {
		logs := make([]entity.PointLog, 0, len(result.CorrectVoters))
		for _, id := range result.CorrectVoters {
			logs = append(logs, entity.PointLog{
				UserID:         id,
				ActionType:     entity.ActionCorrectVote,
				Points:         s.reward,
				ReferenceID:    contentID.String(),
				ReferenceTable: "contents",
			})
		}
		s.leaderboard.RecordPoints(ctx, logs)
	}

	if s.badges != nil {
		for _, id := range result.CorrectVoters {
			s.badges.EvaluateBadges(ctx, id)
		}
		for _, id := range result.IncorrectVoters {
			s.badges.EvaluateBadges(ctx, id)
		}
	}

	s.notifyReveal(content, result)
	if s.contents != nil {
		s.contents.Reindex(ctx, contentID)
	}

	return &dto.RevealResponse{
		ContentID:       content.ID,
		IsAI:            content.IsAI,
		AIPercentage:    content.AIPercentage(),
		RealPercentage:  content.RealPercentage(),
		TotalVotes:      content.TotalVotes,
		CorrectVoters:   len(result.CorrectVoters),
		IncorrectVoters: len(result.IncorrectVoters),
		PointsAwarded:   len(result.CorrectVoters) * s.reward,
	}, nil
}

func (s *adminService) notifyReveal(content *entity.Content, result *contentRepo.RevealResult) {
	if s.notification == nil {
		return
	}

	answer := "real"
	if content.IsAI {
		answer = "AI generated"
	}

	s.notification.NotifyAsync(&entity.Notification{
		UserID:     content.UploaderID,
		EntityID:   &content.ID,
		EntityType: "content",
		Type:       entity.NotifyContentRevealed,
		Message:    fmt.Sprintf("The answer to %q was revealed: %d%% of voters said AI", content.Title, content.AIPercentage()),
	})

	for _, id := range result.CorrectVoters {
		s.notification.NotifyAsync(&entity.Notification{
			UserID:     id,
			EntityID:   &content.ID,
			EntityType: "content",
			Type:       entity.NotifyVoteScored,
			Message:    fmt.Sprintf("You were right, %q is %s. +%d points", content.Title, answer, s.reward),
		})
	}
	for _, id := range result.IncorrectVoters {
		s.notification.NotifyAsync(&entity.Notification{
			UserID:     id,
			EntityID:   &content.ID,
			EntityType: "content",
			Type:       entity.NotifyVoteScored,
			Message:    fmt.Sprintf("Not this time, %q is %s", content.Title, answer),
		})
	}
}

func (s *adminService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if user.AnonymizedAt != nil {
		return nil, fmt.Errorf("user: %w", apperror.ErrNotFound)
	}
	return user, nil
}

func (s *adminService) SetUserPoints(ctx context.Context, userID uuid.UUID, points int) (*userDto.UserResponse, error) {
	if points < 0 {
		return nil, apperror.Validation("points must not be negative")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	delta := points - user.Points
	if delta != 0 {
		if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{"points": points}); err != nil {
			return nil, err
		}
		if s.leaderboard != nil {
			s.leaderboard.RecordPoints(ctx, []entity.PointLog{{
				UserID:         userID,
				ActionType:     entity.ActionAdminAdjust,
				Points:         delta,
				ReferenceID:    userID.String(),
				ReferenceTable: "users",
			}})
		}
		if s.badges != nil {
			s.badges.EvaluateBadges(ctx, userID)
		}
	}

	updated, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return userDto.NewUserResponse(updated), nil
}

func (s *adminService) GetRanking(ctx context.Context) ([]leaderboardDto.RankingEntry, error) {
	return s.leaderboard.GetRanking(ctx, rankingSize)
}

func (s *adminService) ListUsers(ctx context.Context, query dto.UserListQuery) (*dto.UserListResponse, error) {
	page, limit := query.Normalize(20, 100)

	users, total, err := s.userRepo.FindAll(ctx, userRepo.UserFilter{
		Search:   query.Search,
		Role:     query.Role,
		IsActive: query.IsActive,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]*userDto.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, userDto.NewUserResponse(u))
	}

	return &dto.UserListResponse{
		Users: responses,
		Meta:  commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *adminService) SetUserActive(ctx context.Context, adminID, userID uuid.UUID, active bool) (*userDto.UserResponse, error) {
	if adminID == userID && !active {
		return nil, apperror.New(http.StatusBadRequest, "you cannot deactivate your own account", apperror.ErrInvalidInput)
	}

	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{"is_active": active}); err != nil {
		return nil, err
	}

	updated, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return userDto.NewUserResponse(updated), nil
}

func (s *adminService) SetUserRole(ctx context.Context, adminID, userID uuid.UUID, role string) (*userDto.UserResponse, error) {
	if adminID == userID && role != entity.RoleAdmin {
		return nil, apperror.New(http.StatusBadRequest, "you cannot remove your own admin role", apperror.ErrInvalidInput)
	}

	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}
	r, err := s.userRepo.FindRoleByName(ctx, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation(fmt.Sprintf("unknown role %q", role))
		}
		return nil, err
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{"role_id": r.ID}); err != nil {
		return nil, err
	}

	updated, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return userDto.NewUserResponse(updated), nil
}
