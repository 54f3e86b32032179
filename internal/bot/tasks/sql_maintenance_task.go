package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask compacts the image cache index. Eviction deletes
// rows daily, so the index file only shrinks after a VACUUM.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cache_index_maintenance")

	return func(ctx context.Context) error {
		images, err := deps.Store.CountImages(ctx)
		if err != nil {
			// Stats only; the VACUUM can still run.
			log.WarnContext(ctx, "Failed to count indexed images", "error", err)
			images = -1
		}

		log.InfoContext(ctx, "Compacting image cache index", "indexed_images", images)
		startTime := time.Now()

		err = deps.Store.RunSQLMaintenance(ctx)
		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Cache index compaction failed", "error", err, "duration", duration, "indexed_images", images)
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Cache index compacted", "duration", duration, "indexed_images", images)
		return nil
	}
}
