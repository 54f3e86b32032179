package database

import "time"

// CachedImage indexes one rendered answer image stored on disk. Key is the
// content address of the normalized query; Query keeps the text that first
// produced it for diagnostics.
type CachedImage struct {
	Key            string    `db:"cache_key"`
	Query          string    `db:"query"`
	Path           string    `db:"path"`
	MIME           string    `db:"mime"`
	Size           int64     `db:"size"`
	Hits           int64     `db:"hits"`
	CreatedAt      time.Time `db:"created_at"`
	LastAccessedAt time.Time `db:"last_accessed_at"`
}
