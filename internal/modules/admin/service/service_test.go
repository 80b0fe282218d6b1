package service_test

import (
	"context"
	"testing"

	"anoa.com/realorai/internal/entity"
	adminService "anoa.com/realorai/internal/modules/admin/service"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	leaderboardRepo "anoa.com/realorai/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/realorai/internal/modules/leaderboard/service"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	voteRepo "anoa.com/realorai/internal/modules/vote/repository"
	"anoa.com/realorai/internal/testutil"
	"anoa.com/realorai/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const reward = 10

func newAdminService(db *gorm.DB) adminService.AdminService {
	leaderboard := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), nil)
	return adminService.NewAdminService(
		contentRepo.NewContentRepository(db),
		nil,
		userRepo.NewUserRepository(db),
		leaderboard,
		nil,
		nil,
		reward,
	)
}

func vote(t *testing.T, db *gorm.DB, content *entity.Content, voter *entity.User, choice entity.VoteChoice) {
	t.Helper()
	err := voteRepo.NewVoteRepository(db).CreateWithTally(context.Background(), &entity.Vote{
		ContentID: content.ID,
		UserID:    voter.ID,
		Choice:    choice,
	})
	require.NoError(t, err)
}

func TestRevealAnswer_ScoresVoters(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newAdminService(db)
	ctx := context.Background()

	uploader := testutil.CreateUser(t, db, "uploader")
	content := testutil.CreateContent(t, db, uploader, true)

	var right, wrong []*entity.User
	for _, name := range []string{"ann", "ben", "cat"} {
		u := testutil.CreateUser(t, db, name)
		vote(t, db, content, u, entity.ChoiceAI)
		right = append(right, u)
	}
	for _, name := range []string{"dan", "eve"} {
		u := testutil.CreateUser(t, db, name)
		vote(t, db, content, u, entity.ChoiceReal)
		wrong = append(wrong, u)
	}

	// ann already had a streak going and dan's streak resets
	require.NoError(t, db.Model(&entity.User{}).Where("id = ?", right[0].ID).
		Updates(map[string]any{"consecutive_correct": 2, "max_consecutive_correct": 2}).Error)
	require.NoError(t, db.Model(&entity.User{}).Where("id = ?", wrong[0].ID).
		Updates(map[string]any{"consecutive_correct": 5, "max_consecutive_correct": 5}).Error)

	res, err := svc.RevealAnswer(ctx, content.ID)
	require.NoError(t, err)
	assert.True(t, res.IsAI)
	assert.Equal(t, 5, res.TotalVotes)
	assert.Equal(t, 60, res.AIPercentage)
	assert.Equal(t, 40, res.RealPercentage)
	assert.Equal(t, 3, res.CorrectVoters)
	assert.Equal(t, 2, res.IncorrectVoters)
	assert.Equal(t, 3*reward, res.PointsAwarded)

	for _, u := range right {
		got := testutil.Reload(t, db, u)
		assert.Equal(t, reward, got.Points, got.Username)
		assert.Equal(t, 1, got.TotalVotes)
		assert.Equal(t, 1, got.CorrectVotes)
	}
	ann := testutil.Reload(t, db, right[0])
	assert.Equal(t, 3, ann.ConsecutiveCorrect)
	assert.Equal(t, 3, ann.MaxConsecutiveCorrect)

	for _, u := range wrong {
		got := testutil.Reload(t, db, u)
		assert.Zero(t, got.Points, got.Username)
		assert.Equal(t, 1, got.TotalVotes)
		assert.Zero(t, got.CorrectVotes)
		assert.Zero(t, got.ConsecutiveCorrect)
	}
	assert.Equal(t, 5, testutil.Reload(t, db, wrong[0]).MaxConsecutiveCorrect)

	var pending int64
	require.NoError(t, db.Model(&entity.Vote{}).
		Where("content_id = ? AND state = ?", content.ID, entity.VotePending).
		Count(&pending).Error)
	assert.Zero(t, pending)

	var votes []entity.Vote
	require.NoError(t, db.Where("content_id = ?", content.ID).Find(&votes).Error)
	require.Len(t, votes, 5)
	for _, v := range votes {
		assert.Equal(t, entity.VoteScored, v.State)
		require.NotNil(t, v.IsCorrect)
		require.NotNil(t, v.ScoredAt)
		if v.Choice == entity.ChoiceAI {
			assert.True(t, *v.IsCorrect)
			assert.Equal(t, reward, v.PointsEarned)
		} else {
			assert.False(t, *v.IsCorrect)
			assert.Zero(t, v.PointsEarned)
		}
	}

	var logs int64
	require.NoError(t, db.Model(&entity.PointLog{}).
		Where("action_type = ? AND reference_id = ?", entity.ActionCorrectVote, content.ID.String()).
		Count(&logs).Error)
	assert.EqualValues(t, 3, logs)

	_, err = svc.RevealAnswer(ctx, content.ID)
	assert.ErrorIs(t, err, apperror.ErrAlreadyRevealed)
	assert.Equal(t, reward, testutil.Reload(t, db, right[1]).Points, "second reveal must not score again")
}

func TestRevealAnswer_NotFound(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newAdminService(db)

	_, err := svc.RevealAnswer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRevealAnswer_ClosesVoting(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newAdminService(db)

	uploader := testutil.CreateUser(t, db, "uploader")
	late := testutil.CreateUser(t, db, "late")
	content := testutil.CreateContent(t, db, uploader, false)

	_, err := svc.RevealAnswer(context.Background(), content.ID)
	require.NoError(t, err)

	err = voteRepo.NewVoteRepository(db).CreateWithTally(context.Background(), &entity.Vote{
		ContentID: content.ID, UserID: late.ID, Choice: entity.ChoiceReal,
	})
	assert.ErrorIs(t, err, apperror.ErrContentUnavailable)
}

func TestSetUserPoints(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newAdminService(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "player")
	require.NoError(t, db.Model(&entity.User{}).Where("id = ?", user.ID).Update("points", 40).Error)

	res, err := svc.SetUserPoints(ctx, user.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, res.Stats.Points)

	var entry entity.PointLog
	require.NoError(t, db.Where("user_id = ? AND action_type = ?", user.ID, entity.ActionAdminAdjust).First(&entry).Error)
	assert.Equal(t, -15, entry.Points)

	_, err = svc.SetUserPoints(ctx, user.ID, -1)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.SetUserPoints(ctx, uuid.New(), 10)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSetUserActiveAndRole_SelfProtection(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newAdminService(db)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, db, "root")
	user := testutil.CreateUser(t, db, "someone")

	_, err := svc.SetUserActive(ctx, admin.ID, admin.ID, false)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = svc.SetUserRole(ctx, admin.ID, admin.ID, entity.RoleUser)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	res, err := svc.SetUserActive(ctx, admin.ID, user.ID, false)
	require.NoError(t, err)
	assert.False(t, res.IsActive)

	res, err = svc.SetUserRole(ctx, admin.ID, user.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, res.Role)
}

func TestGetRanking(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newAdminService(db)

	stats := map[string][3]int{ // total, correct, points
		"precise": {4, 4, 40},
		"busy":    {10, 6, 60},
		"tied":    {10, 6, 70},
		"idle":    {0, 0, 500},
	}
	for name, s := range stats {
		u := testutil.CreateUser(t, db, name)
		require.NoError(t, db.Model(&entity.User{}).Where("id = ?", u.ID).Updates(map[string]any{
			"total_votes": s[0], "correct_votes": s[1], "points": s[2],
		}).Error)
	}

	ranking, err := svc.GetRanking(context.Background())
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "precise", ranking[0].Username)
	assert.Equal(t, 100, ranking[0].Accuracy)
	assert.Equal(t, "tied", ranking[1].Username)
	assert.Equal(t, "busy", ranking[2].Username)
	assert.Equal(t, 3, ranking[2].Position)
}

func TestGetRanking_RoundedAccuracyTieUsesPoints(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newAdminService(db)

	// 2/3 and 67/100 both show as 67%
	stats := map[string][3]int{
		"rich": {3, 2, 500},
		"poor": {100, 67, 5},
	}
	for name, s := range stats {
		u := testutil.CreateUser(t, db, name)
		require.NoError(t, db.Model(&entity.User{}).Where("id = ?", u.ID).Updates(map[string]any{
			"total_votes": s[0], "correct_votes": s[1], "points": s[2],
		}).Error)
	}

	ranking, err := svc.GetRanking(context.Background())
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, 67, ranking[0].Accuracy)
	assert.Equal(t, 67, ranking[1].Accuracy)
	assert.Equal(t, "rich", ranking[0].Username)
	assert.Equal(t, "poor", ranking[1].Username)
}
