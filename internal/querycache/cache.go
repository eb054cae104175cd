// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package querycache caches the catalog's expensive unparameterized aggregates.

It holds four kinds of entries: the total comic count, the count of comics
with at least one chapter, the sorted genre list and one count per genre.
Entries load lazily through [Fetch], expire after the configured TTL and are
dropped together by [Cache.Invalidate], which every comic and chapter write
calls before it responds.

Every backend keeps a generation that Flush advances. A load that started
before an invalidation carries the old generation and its result is discarded
instead of stored, so a value computed before a write never outlives it.

# Backends

  - [Memory]: process-local map guarded by a mutex. Invalidation cannot fail.
  - [Redis]: shared across processes. A failed invalidation fails the write
    with 503 so a stale aggregate is never served across a known mutation.

Search-parameterized counts never go through this package.
*/
package querycache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/metrics"
)

// # Keys

// Key identifies one cache entry. Kind doubles as the metrics label.
type Key struct {
	Kind string
	ID   string
}

// String renders the storage key.
func (k Key) String() string {
	if k.ID == "" {
		return k.Kind
	}
	return k.Kind + ":" + k.ID
}

const (
	KindTotalCount  = "total_count"
	KindRecentCount = "recent_count"
	KindGenreList   = "genre_list"
	KindGenreCount  = "genre_count"
)

// TotalCount keys the number of comics in the catalog.
func TotalCount() Key { return Key{Kind: KindTotalCount} }

// RecentCount keys the number of comics with at least one chapter.
func RecentCount() Key { return Key{Kind: KindRecentCount} }

// GenreList keys the sorted union of all genres.
func GenreList() Key { return Key{Kind: KindGenreList} }

// GenreCount keys the number of comics matching one genre.
func GenreCount(genre string) Key { return Key{Kind: KindGenreCount, ID: genre} }

// # Backend

// Backend stores encoded entries with a TTL.
type Backend interface {
	// Generation returns the current invalidation generation.
	Generation(ctx context.Context) (uint64, error)

	// Get returns the stored value and whether it is present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetIfCurrent stores value for ttl only while the generation still equals
	// generation. It reports whether the value was stored.
	SetIfCurrent(ctx context.Context, generation uint64, key string, value []byte, ttl time.Duration) (bool, error)

	// Flush advances the generation, then removes every entry owned by this cache.
	Flush(ctx context.Context) error
}

// ErrInvalidationFailed is wrapped into the 503 returned when Flush fails.
var ErrInvalidationFailed = errors.New("querycache: invalidation failed")

// # Cache

// Cache is built once per process and passed to the services that read or
// mutate the catalog.
type Cache struct {
	backend Backend
	ttl     time.Duration
	logger  *slog.Logger
}

// New constructs a [Cache] over backend with the given entry TTL.
func New(backend Backend, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{backend: backend, ttl: ttl, logger: logger}
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

/*
Fetch returns the cached value for key, loading and storing it on a miss.

Backend read and write errors are logged and degrade to a direct load. Only
[Cache.Invalidate] is allowed to fail a request. The loaded value is stored
only if no invalidation ran while it was being computed.

Parameters:
  - ctx: context.Context
  - cache: the process cache
  - key: entry identity
  - load: computes the value from the catalog

Returns:
  - T: the cached or freshly loaded value
  - error: any error from load
*/
func Fetch[T any](ctx context.Context, cache *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	storageKey := key.String()

	generation, current := cache.generation(ctx)

	raw, found, err := cache.backend.Get(ctx, storageKey)
	if err != nil {
		cache.logger.WarnContext(ctx, "query_cache_read_failed",
			slog.String("key", storageKey),
			slog.String("error", err.Error()),
		)
	}

	if found {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			metrics.QueryCacheHits.WithLabelValues(key.Kind).Inc()
			return value, nil
		}
	}

	metrics.QueryCacheMisses.WithLabelValues(key.Kind).Inc()

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if current {
		cache.store(ctx, generation, storageKey, value)
	}
	return value, nil
}

// Warm loads key unconditionally and stores the result, replacing any entry.
func Warm[T any](ctx context.Context, cache *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	generation, current := cache.generation(ctx)

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if current {
		cache.store(ctx, generation, key.String(), value)
	}
	return value, nil
}

// generation reads the backend generation. When it cannot be read the caller
// must not store, since freshness cannot be proven.
func (c *Cache) generation(ctx context.Context) (uint64, bool) {
	generation, err := c.backend.Generation(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "query_cache_generation_failed", slog.String("error", err.Error()))
		return 0, false
	}
	return generation, true
}

func (c *Cache) store(ctx context.Context, generation uint64, storageKey string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "query_cache_encode_failed", slog.String("key", storageKey), slog.String("error", err.Error()))
		return
	}

	stored, err := c.backend.SetIfCurrent(ctx, generation, storageKey, encoded, c.ttl)
	if err != nil {
		c.logger.WarnContext(ctx, "query_cache_write_failed", slog.String("key", storageKey), slog.String("error", err.Error()))
		return
	}
	if !stored {
		c.logger.DebugContext(ctx, "query_cache_store_superseded", slog.String("key", storageKey))
	}
}

/*
Invalidate drops every entry.

Returns:
  - error: apperr.ServiceUnavailable wrapping [ErrInvalidationFailed] when the
    backend could not be flushed. The caller's database change is already
    committed at this point.
*/
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.backend.Flush(ctx); err != nil {
		metrics.QueryCacheInvalidations.WithLabelValues("failed").Inc()
		c.logger.ErrorContext(ctx, "query_cache_invalidation_failed", slog.String("error", err.Error()))
		return apperr.ServiceUnavailable("Cache invalidation failed; the change was saved but may not be visible yet").
			WithCause(errors.Join(ErrInvalidationFailed, err))
	}

	metrics.QueryCacheInvalidations.WithLabelValues("ok").Inc()
	c.logger.DebugContext(ctx, "query_cache_invalidated")
	return nil
}
