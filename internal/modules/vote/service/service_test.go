package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/realorai/internal/entity"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	"anoa.com/realorai/internal/modules/vote/dto"
	voteRepo "anoa.com/realorai/internal/modules/vote/repository"
	voteService "anoa.com/realorai/internal/modules/vote/service"
	"anoa.com/realorai/internal/testutil"
	"anoa.com/realorai/pkg/apperror"
	commonDto "anoa.com/realorai/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newVoteService(db *gorm.DB) voteService.VoteService {
	return voteService.NewVoteService(voteRepo.NewVoteRepository(db), contentRepo.NewContentRepository(db))
}

func TestSubmitVote_UpdatesTally(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newVoteService(db)
	ctx := context.Background()

	uploader := testutil.CreateUser(t, db, "uploader")
	content := testutil.CreateContent(t, db, uploader, true)

	choices := []entity.VoteChoice{entity.ChoiceAI, entity.ChoiceAI, entity.ChoiceReal}
	var last *dto.SubmitVoteResponse
	for i, choice := range choices {
		voter := testutil.CreateUser(t, db, "voter"+string(rune('a'+i)))
		res, err := svc.SubmitVote(ctx, voter.ID, dto.SubmitVoteInput{ContentID: content.ID, Vote: choice})
		require.NoError(t, err)
		assert.Equal(t, entity.VotePending, res.Vote.State)
		assert.Nil(t, res.Vote.IsCorrect)
		last = res
	}

	require.NotNil(t, last)
	assert.Equal(t, 2, last.Tally.AIVotes)
	assert.Equal(t, 1, last.Tally.RealVotes)
	assert.Equal(t, 3, last.Tally.TotalVotes)
	assert.Equal(t, 67, last.Tally.AIPercentage)
	assert.Equal(t, 33, last.Tally.RealPercentage)
}

func TestSubmitVote_Duplicate(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newVoteService(db)
	ctx := context.Background()

	uploader := testutil.CreateUser(t, db, "uploader")
	voter := testutil.CreateUser(t, db, "voter")
	content := testutil.CreateContent(t, db, uploader, false)

	_, err := svc.SubmitVote(ctx, voter.ID, dto.SubmitVoteInput{ContentID: content.ID, Vote: entity.ChoiceReal})
	require.NoError(t, err)

	_, err = svc.SubmitVote(ctx, voter.ID, dto.SubmitVoteInput{ContentID: content.ID, Vote: entity.ChoiceAI})
	assert.ErrorIs(t, err, apperror.ErrDuplicateVote)

	var stored entity.Content
	require.NoError(t, db.First(&stored, "id = ?", content.ID).Error)
	assert.Equal(t, 1, stored.TotalVotes)
	assert.Equal(t, 1, stored.RealVotes)
	assert.Zero(t, stored.AIVotes)
}

func TestCreateWithTally_DuplicateRollsBackTally(t *testing.T) {
	db := testutil.SetupDB(t)
	repo := voteRepo.NewVoteRepository(db)
	ctx := context.Background()

	uploader := testutil.CreateUser(t, db, "uploader")
	voter := testutil.CreateUser(t, db, "voter")
	content := testutil.CreateContent(t, db, uploader, false)

	require.NoError(t, repo.CreateWithTally(ctx, &entity.Vote{ContentID: content.ID, UserID: voter.ID, Choice: entity.ChoiceAI}))
	err := repo.CreateWithTally(ctx, &entity.Vote{ContentID: content.ID, UserID: voter.ID, Choice: entity.ChoiceAI})
	assert.ErrorIs(t, err, apperror.ErrDuplicateVote)

	var stored entity.Content
	require.NoError(t, db.First(&stored, "id = ?", content.ID).Error)
	assert.Equal(t, 1, stored.TotalVotes)
	assert.Equal(t, 1, stored.AIVotes)
}

func TestSubmitVote_Unavailable(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newVoteService(db)
	ctx := context.Background()

	uploader := testutil.CreateUser(t, db, "uploader")
	voter := testutil.CreateUser(t, db, "voter")

	revealed := testutil.CreateContent(t, db, uploader, true, testutil.Revealed(time.Now()))
	pending := testutil.CreateContent(t, db, uploader, true, testutil.WithStatus(entity.StatusPending))

	for name, id := range map[string]uuid.UUID{
		"revealed": revealed.ID,
		"pending":  pending.ID,
		"missing":  uuid.New(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SubmitVote(ctx, voter.ID, dto.SubmitVoteInput{ContentID: id, Vote: entity.ChoiceAI})
			assert.ErrorIs(t, err, apperror.ErrContentUnavailable)
		})
	}
}

func TestSubmitVote_OwnContentForbidden(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newVoteService(db)

	uploader := testutil.CreateUser(t, db, "uploader")
	content := testutil.CreateContent(t, db, uploader, true)

	_, err := svc.SubmitVote(context.Background(), uploader.ID, dto.SubmitVoteInput{ContentID: content.ID, Vote: entity.ChoiceAI})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestSubmitVote_InvalidChoice(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newVoteService(db)

	_, err := svc.SubmitVote(context.Background(), uuid.New(), dto.SubmitVoteInput{ContentID: uuid.New(), Vote: "maybe"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestGetMyVotes(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newVoteService(db)
	ctx := context.Background()

	uploader := testutil.CreateUser(t, db, "uploader")
	voter := testutil.CreateUser(t, db, "voter")
	for i := 0; i < 3; i++ {
		content := testutil.CreateContent(t, db, uploader, i%2 == 0)
		_, err := svc.SubmitVote(ctx, voter.ID, dto.SubmitVoteInput{ContentID: content.ID, Vote: entity.ChoiceAI})
		require.NoError(t, err)
	}

	history, err := svc.GetMyVotes(ctx, voter.ID, commonDto.PaginationQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, history.Votes, 2)
	assert.EqualValues(t, 3, history.Meta.TotalItems)
	for _, v := range history.Votes {
		require.NotNil(t, v.Content)
		assert.Nil(t, v.Content.IsAI, "answer stays hidden before reveal")
	}
}
