// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/internal/core/comic"
	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite/sqlitetest"
	"github.com/taibuivan/comicshelf/internal/querycache"
	"github.com/taibuivan/comicshelf/pkg/pagination"
	"github.com/taibuivan/comicshelf/pkg/pointer"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// recordingCleaner captures dispatched cleanup paths.
type recordingCleaner struct {
	mu    sync.Mutex
	paths []string
	calls int
}

func (r *recordingCleaner) Dispatch(_ context.Context, paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.paths = append(r.paths, paths...)
}

type serviceFixture struct {
	service *comic.Service
	db      *sql.DB
	clock   *sqlitetest.Clock
	cleaner *recordingCleaner
	views   *comic.ViewTracker
}

func newService(t *testing.T) *serviceFixture {
	t.Helper()
	db := sqlitetest.New(t)
	clock := sqlitetest.NewClock(t0)
	cache := querycache.New(querycache.NewMemory(clock.Now), 5*time.Minute, discard)
	return newServiceWithCache(t, db, clock, cache)
}

func newServiceWithCache(t *testing.T, db *sql.DB, clock *sqlitetest.Clock, cache *querycache.Cache) *serviceFixture {
	t.Helper()
	cleaner := &recordingCleaner{}
	views := comic.NewViewTracker(time.Hour, 10000, clock.Now)
	service := comic.NewService(comic.NewSQLiteRepository(db, clock.Now), cache, cleaner, views, discard)
	return &serviceFixture{service: service, db: db, clock: clock, cleaner: cleaner, views: views}
}

func (f *serviceFixture) create(t *testing.T, title string) *comic.Comic {
	t.Helper()
	created, err := f.service.CreateComic(context.Background(), comic.CreateInput{Title: title})
	require.NoError(t, err)
	return created
}

func TestCreateComic_DerivesSlugAndDefaults(t *testing.T) {
	f := newService(t)

	created, err := f.service.CreateComic(context.Background(), comic.CreateInput{
		Title:  "  Solo Leveling: Ragnarok ",
		Genres: []string{"Action", " ", "Action", "Fantasy "},
	})
	require.NoError(t, err)

	assert.Equal(t, "Solo Leveling: Ragnarok", created.Title)
	assert.Equal(t, "solo-leveling-ragnarok", created.Slug)
	assert.Equal(t, comic.StatusOngoing, created.Status)
	assert.Equal(t, []string{"Action", "Fantasy"}, created.Genres)
	assert.Positive(t, created.ID)
}

func TestCreateComic_Validation(t *testing.T) {
	f := newService(t)

	tests := []struct {
		name  string
		input comic.CreateInput
	}{
		{"empty_title", comic.CreateInput{Title: "   "}},
		{"unsluggable_title", comic.CreateInput{Title: "!!!"}},
		{"unknown_status", comic.CreateInput{Title: "Paused", Status: "paused"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateComic(context.Background(), tt.input)
			assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"), "got %v", err)
		})
	}
}

func TestCreateComic_TakenSlugIsConflict(t *testing.T) {
	f := newService(t)
	f.create(t, "Tower of God")

	_, err := f.service.CreateComic(context.Background(), comic.CreateInput{Title: "Tower  of God!"})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
	assert.Equal(t, "A comic with this title already exists", err.Error())
}

func TestCountCache_InvalidatedByCreate(t *testing.T) {
	f := newService(t)
	ctx := context.Background()

	total, err := f.service.TotalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	f.create(t, "First")

	total, err = f.service.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "a create must be visible without waiting for the TTL")
}

func TestCountCache_StaleUntilTTLWithoutServiceWrites(t *testing.T) {
	f := newService(t)
	ctx := context.Background()

	total, err := f.service.TotalCount(ctx)
	require.NoError(t, err)
	require.Zero(t, total)

	// A write that bypasses the service leaves the cached count alone.
	_, err = f.db.Exec(`INSERT INTO comics (title, slug) VALUES ('Out of band', 'out-of-band')`)
	require.NoError(t, err)

	f.clock.Advance(4*time.Minute + 59*time.Second)
	total, err = f.service.TotalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	f.clock.Advance(time.Second)
	total, err = f.service.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListByGenre_CachedCountRefreshedAfterUpdate(t *testing.T) {
	f := newService(t)
	ctx := context.Background()
	page := pagination.Params{Limit: 20}

	target := f.create(t, "Genre Swap")
	_, total, err := f.service.ListByGenre(ctx, "Horror", page)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = f.service.UpdateComic(ctx, target.ID, comic.UpdateInput{Genres: pointer.To([]string{"Horror"})})
	require.NoError(t, err)

	comics, total, err := f.service.ListByGenre(ctx, "Horror", page)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, comics, 1)
	assert.Equal(t, target.ID, comics[0].ID)

	list, err := f.service.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Horror"}, list)

	_, _, err = f.service.ListByGenre(ctx, "  ", page)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

func TestUpdateComic_TitleRegeneratesSlug(t *testing.T) {
	f := newService(t)
	ctx := context.Background()

	original := f.create(t, "Old Name")
	f.create(t, "Taken Name")

	updated, err := f.service.UpdateComic(ctx, original.ID, comic.UpdateInput{Title: pointer.To("New Name")})
	require.NoError(t, err)
	assert.Equal(t, "new-name", updated.Slug)

	_, err = f.service.FindBySlug(ctx, "old-name")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	_, err = f.service.UpdateComic(ctx, original.ID, comic.UpdateInput{Title: pointer.To("Taken Name")})
	assert.True(t, apperr.HasCode(err, "CONFLICT"))

	description := "only the description"
	updated, err = f.service.UpdateComic(ctx, original.ID, comic.UpdateInput{Description: &description})
	require.NoError(t, err)
	assert.Equal(t, "new-name", updated.Slug)
	assert.Equal(t, description, updated.Description)

	_, err = f.service.UpdateComic(ctx, 9999, comic.UpdateInput{Description: &description})
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestDeleteComic_DispatchesChapterFoldersAndCover(t *testing.T) {
	f := newService(t)
	ctx := context.Background()

	created, err := f.service.CreateComic(ctx, comic.CreateInput{
		Title:    "Doomed Series",
		CoverURL: "/images/covers/doomed.webp",
	})
	require.NoError(t, err)
	for _, number := range []float64{1, 2, 2.5} {
		insertChapter(t, f.db, created.ID, number, t0)
	}

	total, err := f.service.TotalCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, total)

	require.NoError(t, f.service.DeleteComic(ctx, created.ID))

	assert.Equal(t, 1, f.cleaner.calls)
	assert.Equal(t, []string{
		"/chapters/doomed-series/1",
		"/chapters/doomed-series/2",
		"/chapters/doomed-series/2.5",
		"/images/covers/doomed.webp",
	}, f.cleaner.paths)

	total, err = f.service.TotalCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDeleteComic_SharedNumberDispatchesOneFolder(t *testing.T) {
	f := newService(t)
	ctx := context.Background()

	created, err := f.service.CreateComic(ctx, comic.CreateInput{Title: "Twin Chapters"})
	require.NoError(t, err)
	insertChapter(t, f.db, created.ID, 1, t0)
	insertChapter(t, f.db, created.ID, 1, t0.Add(time.Minute))

	require.NoError(t, f.service.DeleteComic(ctx, created.ID))
	assert.Equal(t, []string{"/chapters/twin-chapters/1"}, f.cleaner.paths)
}

func TestDeleteComic_ExternalCoverIsLeftAlone(t *testing.T) {
	f := newService(t)
	ctx := context.Background()

	created, err := f.service.CreateComic(ctx, comic.CreateInput{
		Title:    "Hotlinked",
		CoverURL: "https://cdn.example.com/hotlinked.jpg",
	})
	require.NoError(t, err)
	insertChapter(t, f.db, created.ID, 1, t0)

	require.NoError(t, f.service.DeleteComic(ctx, created.ID))
	assert.Equal(t, []string{"/chapters/hotlinked/1"}, f.cleaner.paths)

	err = f.service.DeleteComic(ctx, created.ID)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	assert.Equal(t, 1, f.cleaner.calls)
}

func TestViewByID_CountsOncePerClientPerCooldown(t *testing.T) {
	f := newService(t)
	ctx := context.Background()
	created := f.create(t, "Popular")

	views := func() int64 {
		got, err := f.service.FindByID(ctx, created.ID)
		require.NoError(t, err)
		return got.Views
	}

	_, err := f.service.ViewByID(ctx, created.ID, "10.0.0.1")
	require.NoError(t, err)
	_, err = f.service.ViewBySlug(ctx, created.Slug, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), views())

	_, err = f.service.ViewByID(ctx, created.ID, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), views())

	f.clock.Advance(time.Hour)
	_, err = f.service.ViewByID(ctx, created.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), views(), "exactly one cooldown later is still deduplicated")

	f.clock.Advance(time.Second)
	_, err = f.service.ViewByID(ctx, created.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), views())

	_, err = f.service.ViewByID(ctx, 9999, "10.0.0.1")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestFeatured_DrawsFromTopPool(t *testing.T) {
	f := newService(t)
	ctx := context.Background()

	ids := make(map[int64]bool)
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		created := f.create(t, title)
		ids[created.ID] = true
	}

	f.service.WithRandom(rand.New(rand.NewPCG(7, 11)))
	first, err := f.service.Featured(ctx, 3, 5)
	require.NoError(t, err)
	require.Len(t, first, 3)
	for _, c := range first {
		assert.True(t, ids[c.ID])
	}

	f.service.WithRandom(rand.New(rand.NewPCG(7, 11)))
	second, err := f.service.Featured(ctx, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same seed, same pick")

	all, err := f.service.Featured(ctx, 10, 2)
	require.NoError(t, err)
	assert.Len(t, all, 2, "count is capped by the pool size")
}

func TestListOwned_ScopesToCreator(t *testing.T) {
	f := newService(t)
	ctx := context.Background()
	owner := insertUser(t, f.db, "group-one")

	_, err := f.service.CreateComic(ctx, comic.CreateInput{Title: "Mine", CreatedBy: &owner})
	require.NoError(t, err)
	f.create(t, "Someone Else's")

	owned, total, err := f.service.ListOwned(ctx, owner, "", pagination.Params{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, owned, 1)
	assert.Equal(t, "Mine", owned[0].Title)

	all, total, err := f.service.ListComics(ctx, "", pagination.Params{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	searched, total, err := f.service.ListComics(ctx, "else", pagination.Params{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, searched, 1)
}

func TestWarmup_PrimesCounts(t *testing.T) {
	f := newService(t)
	ctx := context.Background()
	created := f.create(t, "Warm")
	insertChapter(t, f.db, created.ID, 1, t0)

	require.NoError(t, f.service.Warmup(ctx))

	_, err := f.db.Exec(`DELETE FROM chapters`)
	require.NoError(t, err)

	recent, err := f.service.RecentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, recent, "served from the warmed entry")
}

func TestCreateComic_InvalidationFailureIsServiceUnavailable(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := sqlitetest.New(t)
	clock := sqlitetest.NewClock(t0)
	cache := querycache.New(querycache.NewRedis(client, "catalog:cache:"), 5*time.Minute, discard)
	f := newServiceWithCache(t, db, clock, cache)

	server.Close()

	_, err := f.service.CreateComic(context.Background(), comic.CreateInput{Title: "Committed Anyway"})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "SERVICE_UNAVAILABLE"))
	assert.ErrorIs(t, err, querycache.ErrInvalidationFailed)

	stored, err := f.service.FindBySlug(context.Background(), "committed-anyway")
	require.NoError(t, err)
	assert.Equal(t, "Committed Anyway", stored.Title)
}
