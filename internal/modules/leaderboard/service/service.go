package service

import (
	"context"
	"fmt"
	"time"

	"anoa.com/realorai/internal/entity"
	leaderboardDto "anoa.com/realorai/internal/modules/leaderboard/dto"
	leaderboardRepo "anoa.com/realorai/internal/modules/leaderboard/repository"
	notifService "anoa.com/realorai/internal/modules/notification/service"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LeaderboardService interface {
	// RecordPoints logs point changes that were already applied to the users'
	// running totals and announces rank-ups. Failures are logged, not returned.
	RecordPoints(ctx context.Context, logs []entity.PointLog)
	GetLeaderboard(ctx context.Context, limit int, timeframe string) ([]leaderboardDto.LeaderboardEntry, error)
	GetRanking(ctx context.Context, limit int) ([]leaderboardDto.RankingEntry, error)
	GetStatus(ctx context.Context, user *entity.User) commonDto.GamificationStatus
}

type leaderboardService struct {
	repo                leaderboardRepo.LeaderboardRepository
	notificationService notifService.NotificationService
	now                 func() time.Time
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, notificationService notifService.NotificationService) LeaderboardService {
	return &leaderboardService{
		repo:                repo,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

func (s *leaderboardService) RecordPoints(ctx context.Context, logs []entity.PointLog) {
	if len(logs) == 0 {
		return
	}

	if err := s.repo.CreatePointLogs(ctx, logs); err != nil {
		logger.Log.Error("failed to create point logs", zap.Int("count", len(logs)), zap.Error(err))
		return
	}

	if s.notificationService == nil {
		return
	}

	gained := make(map[uuid.UUID]int)
	ids := make([]uuid.UUID, 0, len(logs))
	for _, l := range logs {
		if _, seen := gained[l.UserID]; !seen {
			ids = append(ids, l.UserID)
		}
		gained[l.UserID] += l.Points
	}

	current, err := s.repo.GetPointsByUserIDs(ctx, ids)
	if err != nil {
		logger.Log.Warn("failed to load points for rank check", zap.Error(err))
		return
	}

	for _, id := range ids {
		now, ok := current[id]
		if !ok || gained[id] <= 0 {
			continue
		}
		previousRank, newRank := RankName(now-gained[id]), RankName(now)
		if previousRank != newRank {
			s.sendRankUpNotification(id, previousRank, newRank, now)
		}
	}
}

func (s *leaderboardService) sendRankUpNotification(userID uuid.UUID, previousRank, newRank string, points int) {
	self := userID
	s.notificationService.NotifyAsync(&entity.Notification{
		UserID:     userID,
		EntityID:   &self,
		EntityType: "user",
		Type:       "rank_up",
		Message:    fmt.Sprintf("You ranked up from %s to %s with %d points!", previousRank, newRank, points),
	})
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int, timeframe string) ([]leaderboardDto.LeaderboardEntry, error) {
	scores, err := s.repo.GetTopUsers(ctx, limit, timeframe)
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboardDto.LeaderboardEntry, 0, len(scores))
	for i, score := range scores {
		entries = append(entries, leaderboardDto.LeaderboardEntry{
			UserID:    score.User.ID,
			Username:  score.User.Username,
			AvatarURL: score.User.AvatarURL,
			Position:  i + 1,
			Points:    score.PeriodPoints,
			Accuracy:  score.User.Accuracy(),
			// rank is always based on all-time points
			GamificationStatus: GetGamificationStatusWithWeekly(score.User.Points, score.WeeklyPoints),
		})
	}

	return entries, nil
}

func (s *leaderboardService) GetRanking(ctx context.Context, limit int) ([]leaderboardDto.RankingEntry, error) {
	users, err := s.repo.GetRanking(ctx, limit)
	if err != nil {
		return nil, err
	}

	ranking := make([]leaderboardDto.RankingEntry, 0, len(users))
	for i, u := range users {
		ranking = append(ranking, leaderboardDto.RankingEntry{
			Position:     i + 1,
			UserID:       u.ID,
			Username:     u.Username,
			AvatarURL:    u.AvatarURL,
			Accuracy:     u.Accuracy(),
			CorrectVotes: u.CorrectVotes,
			TotalVotes:   u.TotalVotes,
			Points:       u.Points,
		})
	}
	return ranking, nil
}

func (s *leaderboardService) GetStatus(ctx context.Context, user *entity.User) commonDto.GamificationStatus {
	weekly, err := s.repo.GetPointsSince(ctx, user.ID, s.now().AddDate(0, 0, -7))
	if err != nil {
		logger.Log.Warn("failed to load weekly points", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return GetGamificationStatusWithWeekly(user.Points, weekly)
}
