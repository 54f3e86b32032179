package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const cacheEvictionTimeout = 2 * time.Minute

// newCacheEvictionTask removes image cache entries that are too old or
// beyond the configured capacity.
func newCacheEvictionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cache_eviction")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled cache eviction task...")
		startTime := time.Now()

		timeoutCtx, cancel := context.WithTimeout(ctx, cacheEvictionTimeout)
		defer cancel()

		stats, err := deps.Cache.Evict(timeoutCtx)
		duration := time.Since(startTime)

		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			log.WarnContext(ctx, "Cache eviction timed out or was cancelled", "error", err, "duration", duration)
			return fmt.Errorf("cache eviction timed out or was cancelled: %w", err)
		case err != nil:
			log.ErrorContext(ctx, "Cache eviction task failed", "error", err, "duration", duration)
			return fmt.Errorf("cache eviction failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled cache eviction task completed successfully",
			"expired", stats.Expired,
			"overflow", stats.Overflow,
			"duration", duration)
		return nil
	}
}
