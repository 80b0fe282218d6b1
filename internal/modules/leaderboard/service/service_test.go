package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/realorai/internal/entity"
	leaderboardRepo "anoa.com/realorai/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/realorai/internal/modules/leaderboard/service"
	"anoa.com/realorai/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setPoints(t *testing.T, db *gorm.DB, user *entity.User, points int) {
	t.Helper()
	require.NoError(t, db.Model(user).Update("points", points).Error)
}

func TestLeaderboard_Timeframes(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), nil)
	ctx := context.Background()

	steady := testutil.CreateUser(t, db, "steady")
	rising := testutil.CreateUser(t, db, "rising")
	banned := testutil.CreateUser(t, db, "banned")
	setPoints(t, db, steady, 200)
	setPoints(t, db, rising, 50)
	setPoints(t, db, banned, 900)
	require.NoError(t, db.Model(banned).Update("is_active", false).Error)

	svc.RecordPoints(ctx, []entity.PointLog{
		{UserID: rising.ID, ActionType: "vote_correct", Points: 40},
		{UserID: steady.ID, ActionType: "vote_correct", Points: 5},
		{UserID: banned.ID, ActionType: "vote_correct", Points: 90},
		{UserID: steady.ID, ActionType: "vote_correct", Points: 150, CreatedAt: time.Now().AddDate(0, 0, -10)},
	})

	allTime, err := svc.GetLeaderboard(ctx, 10, leaderboardRepo.TimeframeAllTime)
	require.NoError(t, err)
	require.Len(t, allTime, 2, "inactive users are hidden")
	assert.Equal(t, "steady", allTime[0].Username)
	assert.Equal(t, 200, allTime[0].Points)
	assert.Equal(t, 5, allTime[0].GamificationStatus.WeeklyPoints)
	assert.Equal(t, "Spotter", allTime[0].GamificationStatus.RankName)

	weekly, err := svc.GetLeaderboard(ctx, 10, leaderboardRepo.TimeframeWeekly)
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	assert.Equal(t, "rising", weekly[0].Username)
	assert.Equal(t, 40, weekly[0].Points)
	assert.Equal(t, 1, weekly[0].Position)
	assert.Equal(t, "steady", weekly[1].Username)
	assert.Equal(t, 5, weekly[1].Points)

	monthly, err := svc.GetLeaderboard(ctx, 1, leaderboardRepo.TimeframeMonthly)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "steady", monthly[0].Username)
	assert.Equal(t, 155, monthly[0].Points)

	status := svc.GetStatus(ctx, testutil.Reload(t, db, steady))
	assert.Equal(t, 5, status.WeeklyPoints)
}
