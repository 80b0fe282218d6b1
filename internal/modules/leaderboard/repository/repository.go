package repository

import (
	"context"
	"time"

	"anoa.com/realorai/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TimeframeAllTime = "all_time"
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"
)

// UserScore pairs a user with the points earned in the requested timeframe
// and over the last seven days.
type UserScore struct {
	User         entity.User
	PeriodPoints int
	WeeklyPoints int
}

type LeaderboardRepository interface {
	CreatePointLogs(ctx context.Context, logs []entity.PointLog) error
	GetTopUsers(ctx context.Context, limit int, timeframe string) ([]UserScore, error)
	GetPointsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	GetRanking(ctx context.Context, limit int) ([]entity.User, error)
	GetPointsByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type leaderboardRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db, now: time.Now}
}

func (r *leaderboardRepository) CreatePointLogs(ctx context.Context, logs []entity.PointLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("User").Create(&logs).Error
}

type periodScore struct {
	UserID uuid.UUID
	Score  int
}

func (r *leaderboardRepository) sumSince(ctx context.Context, since time.Time, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []periodScore
	query := r.db.WithContext(ctx).Model(&entity.PointLog{}).
		Select("user_id, SUM(points) as score").
		Where("created_at >= ?", since)
	if userIDs != nil {
		query = query.Where("user_id IN ?", userIDs)
	}
	if err := query.Group("user_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Score
	}
	return out, nil
}

func (r *leaderboardRepository) GetTopUsers(ctx context.Context, limit int, timeframe string) ([]UserScore, error) {
	now := r.now()
	weeklyStart := now.AddDate(0, 0, -7)

	if timeframe == "" || timeframe == TimeframeAllTime {
		var users []entity.User
		if err := r.db.WithContext(ctx).
			Where("is_active = ? AND anonymized_at IS NULL", true).
			Order("points DESC").Order("correct_votes DESC").
			Limit(limit).
			Find(&users).Error; err != nil {
			return nil, err
		}

		ids := make([]uuid.UUID, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		weekly := map[uuid.UUID]int{}
		if len(ids) > 0 {
			var err error
			if weekly, err = r.sumSince(ctx, weeklyStart, ids); err != nil {
				return nil, err
			}
		}

		scores := make([]UserScore, 0, len(users))
		for _, u := range users {
			scores = append(scores, UserScore{User: u, PeriodPoints: u.Points, WeeklyPoints: weekly[u.ID]})
		}
		return scores, nil
	}

	since := weeklyStart
	if timeframe == TimeframeMonthly {
		since = now.AddDate(0, -1, 0)
	}

	var rows []periodScore
	if err := r.db.WithContext(ctx).Model(&entity.PointLog{}).
		Select("point_logs.user_id, SUM(point_logs.points) as score").
		Joins("JOIN users ON users.id = point_logs.user_id").
		Where("point_logs.created_at >= ? AND users.is_active = ? AND users.anonymized_at IS NULL", since, true).
		Group("point_logs.user_id").
		Order("score DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []UserScore{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}

	var users []entity.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	userMap := make(map[uuid.UUID]entity.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	weekly := map[uuid.UUID]int{}
	if timeframe == TimeframeWeekly {
		for _, row := range rows {
			weekly[row.UserID] = row.Score
		}
	} else {
		var err error
		if weekly, err = r.sumSince(ctx, weeklyStart, ids); err != nil {
			return nil, err
		}
	}

	scores := make([]UserScore, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, UserScore{
			User:         userMap[row.UserID],
			PeriodPoints: row.Score,
			WeeklyPoints: weekly[row.UserID],
		})
	}
	return scores, nil
}

func (r *leaderboardRepository) GetPointsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&entity.PointLog{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&total).Error
	return total, err
}

// GetRanking orders voters by accuracy as displayed (whole percent, see
// entity.Accuracy), breaking ties on points. Users who have never had a vote
// scored are left out.
func (r *leaderboardRepository) GetRanking(ctx context.Context, limit int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("total_votes > 0 AND is_active = ? AND anonymized_at IS NULL", true).
		Order("CASE WHEN total_votes > 0 THEN ROUND(correct_votes * 100.0 / total_votes) ELSE 0 END DESC").
		Order("points DESC").
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *leaderboardRepository) GetPointsByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Select("id", "points").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(users))
	for _, u := range users {
		out[u.ID] = u.Points
	}
	return out, nil
}
