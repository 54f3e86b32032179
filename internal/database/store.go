package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetImage returns the index entry for key. Returns nil, nil if not found.
	GetImage(ctx context.Context, key string) (*CachedImage, error)

	// SaveImage inserts or replaces the index entry for image.Key.
	SaveImage(ctx context.Context, image *CachedImage) error

	// TouchImage bumps the hit counter and last access time of key.
	TouchImage(ctx context.Context, key string, at time.Time) error

	// DeleteImages removes the index entries for keys.
	DeleteImages(ctx context.Context, keys []string) error

	// ListImagesAccessedBefore returns entries not accessed since cutoff.
	ListImagesAccessedBefore(ctx context.Context, cutoff time.Time) ([]CachedImage, error)

	// ListImagesBeyond returns every entry except the keep most recently accessed.
	ListImagesBeyond(ctx context.Context, keep int) ([]CachedImage, error)

	// CountImages returns the number of indexed images.
	CountImages(ctx context.Context) (int, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

const imageColumns = `cache_key, query, path, mime, size, hits, created_at, last_accessed_at`

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetImage(ctx context.Context, key string) (*CachedImage, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	var img CachedImage
	err := s.db.GetContext(ctx, &img, `SELECT `+imageColumns+` FROM image_cache WHERE cache_key = ?;`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get cached image", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get cached image %s: %w", key, err)
	}
	return &img, nil
}

func (s *sqlxStore) SaveImage(ctx context.Context, image *CachedImage) error {
	if image == nil {
		return fmt.Errorf("cannot save nil image")
	}
	if image.Key == "" || image.Path == "" {
		return fmt.Errorf("image must have a key and a path")
	}

	now := time.Now().UTC().Truncate(time.Second)
	if image.CreatedAt.IsZero() {
		image.CreatedAt = now
	}
	if image.LastAccessedAt.IsZero() {
		image.LastAccessedAt = now
	}
	image.CreatedAt = image.CreatedAt.UTC().Truncate(time.Second)
	image.LastAccessedAt = image.LastAccessedAt.UTC().Truncate(time.Second)

	query := `
        INSERT INTO image_cache (` + imageColumns + `)
        VALUES (:cache_key, :query, :path, :mime, :size, :hits, :created_at, :last_accessed_at)
        ON CONFLICT(cache_key) DO UPDATE SET
            query = excluded.query,
            path = excluded.path,
            mime = excluded.mime,
            size = excluded.size,
            last_accessed_at = excluded.last_accessed_at;
    `
	if _, err := s.db.NamedExecContext(ctx, query, image); err != nil {
		s.logger.ErrorContext(ctx, "Error saving cached image", "key", image.Key, "error", err)
		return fmt.Errorf("failed to save cached image %s: %w", image.Key, err)
	}

	s.logger.DebugContext(ctx, "Cached image saved", "key", image.Key, "size", image.Size)
	return nil
}

func (s *sqlxStore) TouchImage(ctx context.Context, key string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE image_cache SET hits = hits + 1, last_accessed_at = ? WHERE cache_key = ?;`,
		at.UTC().Truncate(time.Second), key)
	if err != nil {
		return fmt.Errorf("failed to touch cached image %s: %w", key, err)
	}
	return nil
}

func (s *sqlxStore) DeleteImages(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM image_cache WHERE cache_key IN (?);`, keys)
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete cached images", "count", len(keys), "error", err)
		return fmt.Errorf("failed to delete cached images: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil {
		s.logger.DebugContext(ctx, "Deleted cached images", "requested", len(keys), "deleted", affected)
	}
	return nil
}

func (s *sqlxStore) ListImagesAccessedBefore(ctx context.Context, cutoff time.Time) ([]CachedImage, error) {
	var images []CachedImage
	err := s.db.SelectContext(ctx, &images,
		`SELECT `+imageColumns+` FROM image_cache WHERE last_accessed_at < ? ORDER BY last_accessed_at ASC;`,
		cutoff.UTC().Truncate(time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to list expired images: %w", err)
	}
	return images, nil
}

func (s *sqlxStore) ListImagesBeyond(ctx context.Context, keep int) ([]CachedImage, error) {
	if keep < 0 {
		keep = 0
	}
	var images []CachedImage
	// LIMIT -1 means "no limit" in SQLite; OFFSET skips the entries we keep.
	err := s.db.SelectContext(ctx, &images,
		`SELECT `+imageColumns+` FROM image_cache ORDER BY last_accessed_at DESC, created_at DESC LIMIT -1 OFFSET ?;`,
		keep)
	if err != nil {
		return nil, fmt.Errorf("failed to list images beyond capacity: %w", err)
	}
	return images, nil
}

func (s *sqlxStore) CountImages(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM image_cache;`); err != nil {
		return 0, fmt.Errorf("failed to count cached images: %w", err)
	}
	return n, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
