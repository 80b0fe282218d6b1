package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/realorai/internal/entity"
	notifRepo "anoa.com/realorai/internal/modules/notification/repository"
	"anoa.com/realorai/pkg/apperror"
	"anoa.com/realorai/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	// NotifyAsync stores and publishes in the background; failures are only logged.
	NotifyAsync(notification *entity.Notification)
	GetNotifications(ctx context.Context, userID uuid.UUID, filter notifRepo.ListFilter) ([]entity.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	// Prune deletes notifications read longer than the retention period ago.
	Prune(ctx context.Context) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	retention   time.Duration
	now         func() time.Time
}

// NewNotificationService builds the service. A zero retention keeps read
// notifications forever.
func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, retention time.Duration) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		retention:   retention,
		now:         time.Now,
	}
}

// Channel is the redis pub/sub channel a user's websocket listens on.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
				logger.Log.Warn("failed to publish notification",
					zap.String("user_id", notification.UserID.String()),
					zap.Error(err),
				)
			}
		}
	}

	return nil
}

func (s *notificationService) NotifyAsync(notification *entity.Notification) {
	go func() {
		if err := s.CreateNotification(context.Background(), notification); err != nil {
			logger.Log.Error("failed to create notification",
				zap.String("user_id", notification.UserID.String()),
				zap.String("type", notification.Type),
				zap.Error(err),
			)
		}
	}()
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, filter notifRepo.ListFilter) ([]entity.Notification, int64, error) {
	return s.repo.List(ctx, userID, filter)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, userID, id, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification %s: %w", id, apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now())
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) Prune(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	n, err := s.repo.DeleteReadBefore(ctx, s.now().Add(-s.retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Info("pruned read notifications", zap.Int64("count", n))
	}
	return n, nil
}
