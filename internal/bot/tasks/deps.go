// Package tasks implements the bot's scheduled maintenance tasks and the
// registry the scheduler reads them from.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/classbot/internal/database"
	"github.com/edgard/classbot/internal/imagecache"
)

// Evicter removes expired and surplus image cache entries.
type Evicter interface {
	Evict(ctx context.Context) (imagecache.EvictStats, error)
}

var _ Evicter = (*imagecache.Cache)(nil)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Cache  Evicter
}
