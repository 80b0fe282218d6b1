package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/realorai/internal/config"
	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/internal/modules/user/dto"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	userService "anoa.com/realorai/internal/modules/user/service"
	"anoa.com/realorai/internal/testutil"
	"anoa.com/realorai/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_RejectsDuplicatesAndReservedNames(t *testing.T) {
	db := testutil.SetupDB(t)
	svc := userService.NewAuthService(userRepo.NewUserRepository(db), config.AuthConfig{JWTSecret: "s", TokenTTL: time.Hour})
	ctx := context.Background()

	res, err := svc.Register(ctx, dto.RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, entity.RoleUser, res.User.Role)

	_, err = svc.Register(ctx, dto.RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperror.ErrAccountExists)

	_, err = svc.Register(ctx, dto.RegisterInput{Username: "deleted-bob", Email: "bob@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestDeleteAccount_Anonymizes(t *testing.T) {
	db := testutil.SetupDB(t)
	repo := userRepo.NewUserRepository(db)
	svc := userService.NewAuthService(repo, config.AuthConfig{JWTSecret: "s"})
	follows := userService.NewFollowService(userRepo.NewFollowRepository(db), repo, nil)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "leaving")
	friend := testutil.CreateUser(t, db, "friend")
	require.NoError(t, follows.Follow(ctx, friend.ID, user.ID))
	content := testutil.CreateContent(t, db, user, true)

	require.NoError(t, svc.DeleteAccount(ctx, user.ID))
	assert.ErrorIs(t, svc.DeleteAccount(ctx, user.ID), apperror.ErrNotFound)

	got := testutil.Reload(t, db, user)
	assert.Equal(t, "deleted-"+user.ID.String(), got.Username)
	assert.False(t, got.IsActive)
	assert.Empty(t, got.PasswordHash)
	require.NotNil(t, got.AnonymizedAt)

	_, err := svc.Login(ctx, dto.LoginInput{Email: "leaving@example.com", Password: testutil.Password})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredential)

	_, total, err := follows.Following(ctx, friend.ID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	var kept entity.Content
	require.NoError(t, db.First(&kept, "id = ?", content.ID).Error)
	assert.Equal(t, user.ID, kept.UploaderID)
}

func TestFollow(t *testing.T) {
	db := testutil.SetupDB(t)
	repo := userRepo.NewUserRepository(db)
	svc := userService.NewFollowService(userRepo.NewFollowRepository(db), repo, nil)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "a_user")
	b := testutil.CreateUser(t, db, "b_user")

	assert.ErrorIs(t, svc.Follow(ctx, a.ID, a.ID), apperror.ErrInvalidInput)
	require.NoError(t, svc.Follow(ctx, a.ID, b.ID))
	require.NoError(t, svc.Follow(ctx, a.ID, b.ID), "following twice is a no-op")

	followers, total, err := svc.Followers(ctx, b.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, followers, 1)
	assert.Equal(t, "a_user", followers[0].Username)

	require.NoError(t, svc.Unfollow(ctx, a.ID, b.ID))
	assert.ErrorIs(t, svc.Unfollow(ctx, a.ID, b.ID), apperror.ErrNotFound)
}
