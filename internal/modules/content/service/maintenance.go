package service

import (
	"context"

	"anoa.com/realorai/pkg/logger"
	"go.uber.org/zap"
)

// RecycleStale marks content revealed (or last recycled) longer than
// RecycleAfter ago as recycled so it resurfaces in the archive feed.
func (s *contentService) RecycleStale(ctx context.Context) (int64, error) {
	if s.settings.RecycleAfter <= 0 {
		return 0, nil
	}
	now := s.now()
	n, err := s.repo.MarkRecycled(ctx, now.Add(-s.settings.RecycleAfter), now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Info("recycled content", zap.Int64("count", n))
	}
	return n, nil
}

// CleanupOrphanMedia deletes stored files whose upload never became content.
func (s *contentService) CleanupOrphanMedia(ctx context.Context) (int, error) {
	if s.settings.OrphanAge <= 0 {
		return 0, nil
	}

	assets, err := s.mediaRepo.FindOrphans(ctx, s.now().Add(-s.settings.OrphanAge), orphanBatch)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.media.Delete(ctx, asset.FileURL); err != nil {
			logger.Log.Warn("failed to delete orphaned media", zap.Uint("asset_id", asset.ID), zap.Error(err))
			continue
		}
		if err := s.mediaRepo.Delete(ctx, asset.ID); err != nil {
			logger.Log.Warn("failed to delete media asset record", zap.Uint("asset_id", asset.ID), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Log.Info("removed orphaned media", zap.Int("count", removed))
	}
	return removed, nil
}
