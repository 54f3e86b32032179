// Package database keeps the SQLite index of the image cache: connection
// setup, embedded schema migrations and the Store used by the cache.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/classbot/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// busyTimeout lets a scheduled VACUUM and a handler's cache write wait for
// each other instead of failing with SQLITE_BUSY.
const busyTimeout = 5 * time.Second

// NewDB opens the cache index at path and brings its schema up to date.
func NewDB(path string) (*sqlx.DB, error) {
	if ExtractDBNameFromPath(path) == "" {
		return nil, errors.New("database path is empty")
	}

	db, err := sqlx.Connect("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache index %q: %w", path, err)
	}

	// One writer at a time; the pool only serialises access.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := migrateUp(db.DB); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Error closing cache index after migration failure", "error", closeErr)
		}
		return nil, err
	}

	slog.Info("Cache index ready", "path", ExtractDBNameFromPath(path))
	return db, nil
}

// sqliteDSN adds the pragmas the cache index relies on, keeping any the
// caller already set.
func sqliteDSN(path string) string {
	var pragmas []string
	if !strings.Contains(path, "busy_timeout") {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()))
	}
	if !strings.Contains(path, "journal_mode") {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	if len(pragmas) == 0 {
		return path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(pragmas, "&")
}

// CloseDB closes the database connection pool.
func CloseDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Error closing cache index", "error", err)
		return
	}
	slog.Info("Cache index closed.")
}

// migrateUp applies the embedded migrations in migrations/.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Debug("Cache index schema is up to date")
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	default:
		version, _, _ := m.Version()
		slog.Info("Cache index schema migrated", "version", version)
	}
	return nil
}

// ExtractDBNameFromPath returns the file path of a plain or "file:" URI
// style SQLite DSN, without query parameters.
func ExtractDBNameFromPath(path string) string {
	path = strings.TrimPrefix(path, "file:")

	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}

	return path
}
