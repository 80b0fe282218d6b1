package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/internal/modules/comment/dto"
	commentRepo "anoa.com/realorai/internal/modules/comment/repository"
	commentService "anoa.com/realorai/internal/modules/comment/service"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	"anoa.com/realorai/internal/testutil"
	"anoa.com/realorai/pkg/apperror"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/ratelimiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCommentService(db *gorm.DB, cooldown *ratelimiter.Cooldown) commentService.CommentService {
	return commentService.NewCommentService(
		commentRepo.NewCommentRepository(db),
		contentRepo.NewContentRepository(db),
		nil,
		cooldown,
		5*time.Second,
	)
}

func TestCreateComment(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newCommentService(db, nil)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	author := testutil.CreateUser(t, db, "author")
	content := testutil.CreateContent(t, db, owner, true)

	res, err := svc.CreateComment(ctx, author.ID, content.ID, dto.CreateCommentInput{Body: "<script>x</script>Looks   <i>real</i> to me"})
	require.NoError(t, err)
	assert.Equal(t, "Looks real to me", res.Body)
	assert.Equal(t, "author", res.Author.Username)

	_, err = svc.CreateComment(ctx, author.ID, content.ID, dto.CreateCommentInput{Body: "<b></b>"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.CreateComment(ctx, author.ID, content.ID, dto.CreateCommentInput{Body: strings.Repeat("a", commentService.MaxCommentLength+1)})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	hidden := testutil.CreateContent(t, db, owner, true, testutil.WithStatus(entity.StatusPending))
	_, err = svc.CreateComment(ctx, author.ID, hidden.ID, dto.CreateCommentInput{Body: "hello"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateComment_Cooldown(t *testing.T) {
	db := testutil.SetupDB(t)
	client, mr := testutil.SetupRedis(t)
	svc := newCommentService(db, ratelimiter.NewCooldown(client))
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	author := testutil.CreateUser(t, db, "author")
	content := testutil.CreateContent(t, db, owner, true)

	_, err := svc.CreateComment(ctx, author.ID, content.ID, dto.CreateCommentInput{Body: "first"})
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, author.ID, content.ID, dto.CreateCommentInput{Body: "second"})
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	mr.FastForward(6 * time.Second)
	_, err = svc.CreateComment(ctx, author.ID, content.ID, dto.CreateCommentInput{Body: "third"})
	assert.NoError(t, err)
}

func TestToggleLike(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newCommentService(db, nil)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	fan := testutil.CreateUser(t, db, "fan")
	content := testutil.CreateContent(t, db, owner, false)

	comment, err := svc.CreateComment(ctx, owner.ID, content.ID, dto.CreateCommentInput{Body: "my photo"})
	require.NoError(t, err)

	like, err := svc.ToggleLike(ctx, fan.ID, comment.ID)
	require.NoError(t, err)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)

	list, err := svc.GetComments(ctx, content.ID, &fan.ID, commonDto.PaginationQuery{})
	require.NoError(t, err)
	require.Len(t, list.Comments, 1)
	assert.True(t, list.Comments[0].Liked)

	like, err = svc.ToggleLike(ctx, fan.ID, comment.ID)
	require.NoError(t, err)
	assert.False(t, like.Liked)
	assert.Zero(t, like.LikeCount)
}

func TestDeleteComment_Permissions(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := newCommentService(db, nil)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	author := testutil.CreateUser(t, db, "author")
	stranger := testutil.CreateUser(t, db, "stranger")
	admin := testutil.CreateAdmin(t, db, "mod")
	content := testutil.CreateContent(t, db, owner, false)

	first, err := svc.CreateComment(ctx, author.ID, content.ID, dto.CreateCommentInput{Body: "one"})
	require.NoError(t, err)
	second, err := svc.CreateComment(ctx, author.ID, content.ID, dto.CreateCommentInput{Body: "two"})
	require.NoError(t, err)
	_, err = svc.ToggleLike(ctx, stranger.ID, first.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteComment(ctx, first.ID, stranger), apperror.ErrForbidden)
	require.NoError(t, svc.DeleteComment(ctx, first.ID, author))
	require.NoError(t, svc.DeleteComment(ctx, second.ID, admin))
	assert.ErrorIs(t, svc.DeleteComment(ctx, second.ID, admin), apperror.ErrNotFound)

	var likes int64
	require.NoError(t, db.Model(&entity.CommentLike{}).Count(&likes).Error)
	assert.Zero(t, likes)
}
