package imagecache

import (
	"context"
	"log/slog"

	"github.com/edgard/classbot/internal/lookup"
)

// Source serves image answers from the cache and renders misses through the
// lookup gateway, storing successful renders.
type Source struct {
	cache  *Cache
	looker lookup.Looker
	logger *slog.Logger
}

// Through returns a Source that renders misses with looker.
func (c *Cache) Through(looker lookup.Looker) *Source {
	return &Source{cache: c, looker: looker, logger: c.logger}
}

// Image returns an ImageResult or a *lookup.Failure. Cache errors are logged
// and degrade to a direct render.
func (s *Source) Image(ctx context.Context, query string) lookup.Result {
	img, ok, err := s.cache.Get(ctx, query)
	if err != nil {
		s.logger.WarnContext(ctx, "Image cache read failed, rendering directly", "error", err)
	}
	if ok {
		return img
	}

	res := s.looker.Lookup(ctx, lookup.Request{Query: query, Mode: lookup.ModeImageAnswer})
	if img, ok := res.(lookup.ImageResult); ok {
		if err := s.cache.Put(ctx, query, img); err != nil {
			s.logger.WarnContext(ctx, "Failed to cache rendered image", "error", err)
		}
	}
	return res
}
