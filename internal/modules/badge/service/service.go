package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/internal/modules/badge/dto"
	"anoa.com/realorai/internal/modules/badge/repository"
	leaderboardService "anoa.com/realorai/internal/modules/leaderboard/service"
	notifService "anoa.com/realorai/internal/modules/notification/service"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	"anoa.com/realorai/pkg/apperror"
	"anoa.com/realorai/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BadgeService interface {
	// EvaluateBadges grants every active badge whose condition the user now
	// meets. Errors are logged and reported as no new badges.
	EvaluateBadges(ctx context.Context, userID uuid.UUID) []entity.Badge
	ListBadges(ctx context.Context, includeInactive bool) ([]entity.Badge, error)
	GetUserBadges(ctx context.Context, userID uuid.UUID) ([]dto.EarnedBadge, error)
	CreateBadge(ctx context.Context, input dto.CreateBadgeInput) (*entity.Badge, error)
	UpdateBadge(ctx context.Context, id uuid.UUID, input dto.UpdateBadgeInput) (*entity.Badge, error)
}

type badgeService struct {
	repo         repository.BadgeRepository
	userRepo     userRepo.UserRepository
	leaderboard  leaderboardService.LeaderboardService
	notification notifService.NotificationService
	now          func() time.Time
}

func NewBadgeService(
	repo repository.BadgeRepository,
	userRepo userRepo.UserRepository,
	leaderboard leaderboardService.LeaderboardService,
	notification notifService.NotificationService,
) BadgeService {
	return &badgeService{
		repo:         repo,
		userRepo:     userRepo,
		leaderboard:  leaderboard,
		notification: notification,
		now:          time.Now,
	}
}

func (s *badgeService) EvaluateBadges(ctx context.Context, userID uuid.UUID) []entity.Badge {
	log := logger.Log.With(zap.String("user_id", userID.String()))

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Warn("badge evaluation skipped: user lookup failed", zap.Error(err))
		return nil
	}
	if user.AnonymizedAt != nil {
		return nil
	}

	candidates, err := s.repo.FindUnownedActive(ctx, userID)
	if err != nil {
		log.Warn("badge evaluation skipped: badge lookup failed", zap.Error(err))
		return nil
	}

	stats := StatsOf(user)
	var qualifying []entity.Badge
	for _, badge := range candidates {
		ok, err := Evaluate(badge.Condition, stats)
		if err != nil {
			log.Warn("badge has an invalid condition", zap.String("badge", badge.Name), zap.Error(err))
			continue
		}
		if ok {
			qualifying = append(qualifying, badge)
		}
	}
	if len(qualifying) == 0 {
		return nil
	}

	now := s.now()
	granted, err := s.repo.GrantBadges(ctx, userID, qualifying, now)
	if err != nil {
		log.Error("failed to grant badges", zap.Error(err))
		return nil
	}

	var logs []entity.PointLog
	for _, badge := range granted {
		log.Info("badge granted", zap.String("badge", badge.Name), zap.Int("reward", badge.PointReward))

		if badge.PointReward > 0 {
			logs = append(logs, entity.PointLog{
				UserID:         userID,
				ActionType:     entity.ActionBadgeReward,
				Points:         badge.PointReward,
				ReferenceID:    badge.ID.String(),
				ReferenceTable: "badges",
				CreatedAt:      now,
			})
		}

		if s.notification != nil {
			badgeID := badge.ID
			s.notification.NotifyAsync(&entity.Notification{
				UserID:     userID,
				EntityID:   &badgeID,
				EntityType: "badge",
				Type:       entity.NotifyBadgeEarned,
				Message:    fmt.Sprintf("You earned the %q badge", badge.Name),
			})
		}
	}

	if s.leaderboard != nil {
		s.leaderboard.RecordPoints(ctx, logs)
	}

	return granted
}

func (s *badgeService) ListBadges(ctx context.Context, includeInactive bool) ([]entity.Badge, error) {
	return s.repo.FindAll(ctx, !includeInactive)
}

func (s *badgeService) GetUserBadges(ctx context.Context, userID uuid.UUID) ([]dto.EarnedBadge, error) {
	userBadges, err := s.repo.FindUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewEarnedBadges(userBadges), nil
}

func (s *badgeService) CreateBadge(ctx context.Context, input dto.CreateBadgeInput) (*entity.Badge, error) {
	operator := input.Operator
	if operator == "" {
		operator = string(entity.OpGTE)
	}
	category := input.Category
	if category == "" {
		category = "voting"
	}

	badge := &entity.Badge{
		Name:        input.Name,
		Description: input.Description,
		IconURL:     input.IconURL,
		Category:    category,
		Condition: entity.BadgeCondition{
			Metric:   entity.BadgeMetric(input.Metric),
			Operator: entity.BadgeOperator(operator),
			Value:    input.Value,
		},
		PointReward: input.PointReward,
		IsActive:    input.IsActive == nil || *input.IsActive,
	}
	if err := ValidateCondition(badge.Condition); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, badge); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "badge name already exists", apperror.ErrConflict)
		}
		return nil, err
	}
	if !badge.IsActive {
		// the column default would otherwise win on insert
		if err := s.repo.Save(ctx, badge); err != nil {
			return nil, err
		}
	}
	return badge, nil
}

func (s *badgeService) UpdateBadge(ctx context.Context, id uuid.UUID, input dto.UpdateBadgeInput) (*entity.Badge, error) {
	badge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("badge: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if input.Name != nil {
		badge.Name = *input.Name
	}
	if input.Description != nil {
		badge.Description = *input.Description
	}
	if input.IconURL != nil {
		badge.IconURL = *input.IconURL
	}
	if input.Category != nil {
		badge.Category = *input.Category
	}
	if input.Metric != nil {
		badge.Condition.Metric = entity.BadgeMetric(*input.Metric)
	}
	if input.Operator != nil {
		badge.Condition.Operator = entity.BadgeOperator(*input.Operator)
	}
	if input.Value != nil {
		badge.Condition.Value = *input.Value
	}
	if input.PointReward != nil {
		badge.PointReward = *input.PointReward
	}
	if input.IsActive != nil {
		badge.IsActive = *input.IsActive
	}

	if err := ValidateCondition(badge.Condition); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, badge); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "badge name already exists", apperror.ErrConflict)
		}
		return nil, err
	}
	return badge, nil
}
