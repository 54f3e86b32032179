// Package imagecache stores rendered answer images on disk, addressed by the
// SHA-256 of the normalized query and indexed in the database so that an
// explicit age and capacity eviction policy can be applied.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edgard/classbot/internal/database"
	"github.com/edgard/classbot/internal/lookup"
	"github.com/edgard/classbot/internal/metrics"
)

// Cache is safe for concurrent use. Two callers rendering the same query at
// once both write the file; the last rename wins and both are valid.
type Cache struct {
	dir        string
	store      database.Store
	maxEntries int
	maxAge     time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// New creates the cache directory if needed.
func New(dir string, store database.Store, maxEntries int, maxAge time.Duration, logger *slog.Logger) (*Cache, error) {
	if store == nil {
		return nil, errors.New("image cache requires a store")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %q: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		dir:        dir,
		store:      store,
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
		logger:     logger.With("component", "image_cache"),
	}, nil
}

// Normalize lower-cases query and collapses whitespace, so that case and
// spacing variants share one entry.
func Normalize(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Key is the content address of query.
func Key(query string) string {
	sum := sha256.Sum256([]byte(Normalize(query)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached image for query. A missing file removes the stale
// index entry and reports a miss.
func (c *Cache) Get(ctx context.Context, query string) (lookup.ImageResult, bool, error) {
	key := Key(query)

	entry, err := c.store.GetImage(ctx, key)
	if err != nil {
		return lookup.ImageResult{}, false, err
	}
	if entry == nil {
		metrics.IncCacheRequest(false)
		return lookup.ImageResult{}, false, nil
	}

	data, err := os.ReadFile(entry.Path)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.WarnContext(ctx, "Cached image file missing, dropping index entry", "key", key, "path", entry.Path)
		if derr := c.store.DeleteImages(ctx, []string{key}); derr != nil {
			c.logger.WarnContext(ctx, "Failed to drop stale index entry", "key", key, "error", derr)
		}
		metrics.AddCacheEvictions("missing", 1)
		metrics.IncCacheRequest(false)
		return lookup.ImageResult{}, false, nil
	}
	if err != nil {
		return lookup.ImageResult{}, false, fmt.Errorf("read cached image %s: %w", key, err)
	}

	if err := c.store.TouchImage(ctx, key, c.now()); err != nil {
		c.logger.WarnContext(ctx, "Failed to update cache access time", "key", key, "error", err)
	}

	metrics.IncCacheRequest(true)
	return lookup.ImageResult{Data: data, MIME: entry.MIME, Ext: filepath.Ext(entry.Path)}, true, nil
}

// Put writes img under the key of query and indexes it.
func (c *Cache) Put(ctx context.Context, query string, img lookup.ImageResult) error {
	key := Key(query)
	path := filepath.Join(c.dir, key+img.Ext)

	prev, err := c.store.GetImage(ctx, key)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(path, img.Data, 0o644); err != nil {
		return fmt.Errorf("write cached image %s: %w", key, err)
	}

	now := c.now()
	err = c.store.SaveImage(ctx, &database.CachedImage{
		Key:            key,
		Query:          query,
		Path:           path,
		MIME:           img.MIME,
		Size:           int64(len(img.Data)),
		CreatedAt:      now,
		LastAccessedAt: now,
	})
	if err != nil {
		return fmt.Errorf("index cached image %s: %w", key, err)
	}

	// A re-render with another format leaves the old file unreferenced.
	if prev != nil && prev.Path != path {
		if err := os.Remove(prev.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.WarnContext(ctx, "Failed to remove replaced cached image", "path", prev.Path, "error", err)
		}
	}
	return nil
}

// EvictStats reports what one Evict pass removed.
type EvictStats struct {
	Expired  int
	Overflow int
}

// Evict removes entries not accessed within maxAge, then the least recently
// used entries beyond maxEntries.
func (c *Cache) Evict(ctx context.Context) (EvictStats, error) {
	var stats EvictStats

	expired, err := c.store.ListImagesAccessedBefore(ctx, c.now().Add(-c.maxAge))
	if err != nil {
		return stats, err
	}
	if stats.Expired, err = c.remove(ctx, expired); err != nil {
		return stats, err
	}
	metrics.AddCacheEvictions("age", stats.Expired)

	overflow, err := c.store.ListImagesBeyond(ctx, c.maxEntries)
	if err != nil {
		return stats, err
	}
	if stats.Overflow, err = c.remove(ctx, overflow); err != nil {
		return stats, err
	}
	metrics.AddCacheEvictions("capacity", stats.Overflow)

	c.logger.InfoContext(ctx, "Image cache eviction finished", "expired", stats.Expired, "overflow", stats.Overflow)
	return stats, nil
}

func (c *Cache) remove(ctx context.Context, entries []database.CachedImage) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := os.Remove(e.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.WarnContext(ctx, "Failed to remove cached image file", "path", e.Path, "error", err)
			continue
		}
		keys = append(keys, e.Key)
	}
	if err := c.store.DeleteImages(ctx, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over name.
func writeFileAtomic(name string, data []byte, perm fs.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Chmod(perm); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), name)
}
