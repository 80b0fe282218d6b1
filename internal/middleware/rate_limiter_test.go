package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRateLimiter(t *testing.T, maxRequests int, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRateLimiter(client, RateLimiterConfig{MaxRequests: maxRequests, Window: window}), mr
}

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router
}

func hit(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsRequestsUnderLimit(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 5, time.Minute)
	router := newLimitedRouter(rl)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "192.168.1.1").Code, "request %d should succeed", i+1)
	}
}

func TestRateLimiter_BlocksRequestsOverLimit(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 3, time.Minute)
	router := newLimitedRouter(rl)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(router, "192.168.1.1").Code)
	}

	w := hit(router, "192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limited")

	// other clients keep their own window
	assert.Equal(t, http.StatusOK, hit(router, "192.168.1.2").Code)
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 1, time.Minute)
	router := newLimitedRouter(rl)

	require.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
}

func TestRateLimiter_BanAndUnban(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 100, time.Minute)
	router := newLimitedRouter(rl)
	ctx := context.Background()

	require.NoError(t, rl.BanIP(ctx, "10.0.0.9"))
	banned, err := rl.IsIPBanned(ctx, "10.0.0.9")
	require.NoError(t, err)
	assert.True(t, banned)
	assert.Equal(t, http.StatusForbidden, hit(router, "10.0.0.9").Code)

	require.NoError(t, rl.UnbanIP(ctx, "10.0.0.9"))
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.9").Code)
}

func TestRateLimiter_NilClientPassesThrough(t *testing.T) {
	router := newLimitedRouter(NewRateLimiter(nil, RateLimiterConfig{MaxRequests: 1, Window: time.Minute}))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	}
}

func TestRateLimiter_FailsOpenWhenRedisIsDown(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 1, time.Minute)
	router := newLimitedRouter(rl)
	mr.Close()

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
}
