package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/realorai/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pendingKey = "pending:content_views"

// ViewSink persists flushed view counts.
type ViewSink interface {
	AddViews(ctx context.Context, id uuid.UUID, n int64) error
}

type ViewService interface {
	// RecordView counts one view per viewer per dedup window. viewerKey is a
	// user id or, for anonymous callers, their IP.
	RecordView(ctx context.Context, contentID uuid.UUID, viewerKey string) error
	// Sync moves buffered counts into the sink and returns how many items were flushed.
	Sync(ctx context.Context) (int, error)
}

type viewService struct {
	rdb    *redis.Client
	sink   ViewSink
	window time.Duration
}

// NewViewService returns a service that buffers views in redis. A nil client
// turns it into a no-op.
func NewViewService(rdb *redis.Client, sink ViewSink, window time.Duration) ViewService {
	if window <= 0 {
		window = time.Hour
	}
	return &viewService{rdb: rdb, sink: sink, window: window}
}

func viewsKey(id string) string {
	return fmt.Sprintf("content:views:%s", id)
}

func (s *viewService) RecordView(ctx context.Context, contentID uuid.UUID, viewerKey string) error {
	if s.rdb == nil {
		return nil
	}

	seenKey := fmt.Sprintf("content:viewer:%s:%s", contentID, viewerKey)
	fresh, err := s.rdb.SetNX(ctx, seenKey, 1, s.window).Result()
	if err != nil {
		return fmt.Errorf("failed to mark viewer: %w", err)
	}
	if !fresh {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.Incr(ctx, viewsKey(contentID.String()))
	pipe.SAdd(ctx, pendingKey, contentID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment view: %w", err)
	}
	return nil
}

func (s *viewService) Sync(ctx context.Context) (int, error) {
	if s.rdb == nil {
		return 0, nil
	}

	ids, err := s.rdb.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read pending views: %w", err)
	}

	flushed := 0
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.rdb.SRem(ctx, pendingKey, raw)
			continue
		}

		// GETDEL so views recorded during the flush land in the next one.
		countStr, err := s.rdb.GetDel(ctx, viewsKey(raw)).Result()
		s.rdb.SRem(ctx, pendingKey, raw)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			logger.Log.Warn("failed to read view count", zap.String("content_id", raw), zap.Error(err))
			continue
		}

		n, _ := strconv.ParseInt(countStr, 10, 64)
		if n <= 0 {
			continue
		}
		if err := s.sink.AddViews(ctx, id, n); err != nil {
			// put them back for the next run
			s.rdb.IncrBy(ctx, viewsKey(raw), n)
			s.rdb.SAdd(ctx, pendingKey, raw)
			logger.Log.Warn("failed to persist views", zap.String("content_id", raw), zap.Error(err))
			continue
		}
		flushed++
	}

	if flushed > 0 {
		logger.Log.Info("synced content views", zap.Int("count", flushed))
	}
	return flushed, nil
}
