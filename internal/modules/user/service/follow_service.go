package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/realorai/internal/entity"
	notifService "anoa.com/realorai/internal/modules/notification/service"
	"anoa.com/realorai/internal/modules/user/dto"
	"anoa.com/realorai/internal/modules/user/repository"
	"anoa.com/realorai/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowService interface {
	Follow(ctx context.Context, followerID, followingID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	Followers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.PublicUser, int64, error)
	Following(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.PublicUser, int64, error)
}

type followService struct {
	repo         repository.FollowRepository
	userRepo     repository.UserRepository
	notification notifService.NotificationService
}

func NewFollowService(repo repository.FollowRepository, userRepo repository.UserRepository, notification notifService.NotificationService) FollowService {
	return &followService{repo: repo, userRepo: userRepo, notification: notification}
}

func (s *followService) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if followerID == followingID {
		return apperror.Validation("you cannot follow yourself")
	}

	target, err := s.activeUser(ctx, followingID)
	if err != nil {
		return err
	}

	created, err := s.repo.Follow(ctx, followerID, target.ID)
	if err != nil {
		return err
	}

	if created && s.notification != nil {
		actor := followerID
		s.notification.NotifyAsync(&entity.Notification{
			UserID:     target.ID,
			ActorID:    &actor,
			EntityID:   &actor,
			EntityType: "user",
			Type:       entity.NotifyNewFollower,
			Message:    "You have a new follower",
		})
	}
	return nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	removed, err := s.repo.Unfollow(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("follow: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *followService) Followers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.PublicUser, int64, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	users, total, err := s.repo.Followers(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return toPublic(users), total, nil
}

func (s *followService) Following(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.PublicUser, int64, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	users, total, err := s.repo.Following(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return toPublic(users), total, nil
}

func (s *followService) activeUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user: %w", apperror.ErrNotFound)
	}
	return user, nil
}

func toPublic(users []entity.User) []dto.PublicUser {
	out := make([]dto.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, dto.NewPublicUser(&users[i]))
	}
	return out
}
