package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/realorai/pkg/apperror"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldown_Acquire(t *testing.T) {
	mr := miniredis.RunT(t)
	cd := NewCooldown(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()
	user := uuid.New()

	_, err := cd.Acquire(ctx, user, "upload", time.Minute)
	require.NoError(t, err)

	_, err = cd.Acquire(ctx, user, "upload", time.Minute)
	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
	assert.Greater(t, rlErr.RetryAfter, time.Duration(0))

	_, err = cd.Acquire(ctx, user, "comment", time.Minute)
	assert.NoError(t, err, "actions are tracked separately")

	_, err = cd.Acquire(ctx, uuid.New(), "upload", time.Minute)
	assert.NoError(t, err, "users are tracked separately")

	mr.FastForward(time.Minute)
	_, err = cd.Acquire(ctx, user, "upload", time.Minute)
	assert.NoError(t, err)
}

func TestCooldown_ReleaseFreesSlot(t *testing.T) {
	mr := miniredis.RunT(t)
	cd := NewCooldown(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()
	user := uuid.New()

	release, err := cd.Acquire(ctx, user, "upload", time.Minute)
	require.NoError(t, err)
	release()

	_, err = cd.Acquire(ctx, user, "upload", time.Minute)
	assert.NoError(t, err)
}

func TestCooldown_Disabled(t *testing.T) {
	var nilCooldown *Cooldown
	release, err := nilCooldown.Acquire(context.Background(), uuid.New(), "upload", time.Minute)
	require.NoError(t, err)
	release()

	cd := NewCooldown(nil)
	for i := 0; i < 2; i++ {
		_, err := cd.Acquire(context.Background(), uuid.New(), "upload", time.Minute)
		assert.NoError(t, err)
	}
}
