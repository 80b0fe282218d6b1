package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/realorai/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitError reports a per-user cooldown that is still running.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Cooldown enforces at most one action per user per window, backed by SETNX.
// A nil client disables the check.
type Cooldown struct {
	rdb *redis.Client
}

func NewCooldown(rdb *redis.Client) *Cooldown {
	return &Cooldown{rdb: rdb}
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Acquire claims the window for action. The returned release func clears the
// claim so a failed action does not cost the user their slot.
func (c *Cooldown) Acquire(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (func(), error) {
	if c == nil || c.rdb == nil || window <= 0 {
		return func() {}, nil
	}

	wasSet, err := c.rdb.SetNX(ctx, key(userID, action), "locked", window).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if !wasSet {
		ttl, _ := c.rdb.TTL(ctx, key(userID, action)).Result()
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("please wait %s before trying again", ttl.Round(time.Second)),
			RetryAfter: ttl,
		}
	}

	return func() {
		_ = c.rdb.Del(context.Background(), key(userID, action)).Err()
	}, nil
}
