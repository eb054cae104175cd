// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/taibuivan/comicshelf/internal/assetclient"
	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/metrics"
	"github.com/taibuivan/comicshelf/internal/platform/validate"
	"github.com/taibuivan/comicshelf/internal/querycache"
	"github.com/taibuivan/comicshelf/pkg/pagination"
	"github.com/taibuivan/comicshelf/pkg/pointer"
	"github.com/taibuivan/comicshelf/pkg/slug"
)

// AssetCleaner removes image server paths in the background.
type AssetCleaner interface {
	Dispatch(ctx context.Context, paths ...string)
}

// Service implements the business logic for the comic domain.
type Service struct {
	repo   Repository
	cache  *querycache.Cache
	assets AssetCleaner
	views  *ViewTracker
	logger *slog.Logger

	randMu sync.Mutex
	random *rand.Rand
}

// NewService constructs a new [Service] with its collaborators.
func NewService(repo Repository, cache *querycache.Cache, assets AssetCleaner, views *ViewTracker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		assets: assets,
		views:  views,
		logger: logger,
		random: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithRandom replaces the source used to pick featured comics.
func (service *Service) WithRandom(random *rand.Rand) *Service {
	service.random = random
	return service
}

// # Cached Aggregates

// TotalCount returns the cached number of comics.
func (service *Service) TotalCount(ctx context.Context) (int, error) {
	return querycache.Fetch(ctx, service.cache, querycache.TotalCount(), service.countAll)
}

// RecentCount returns the cached number of comics with at least one chapter.
func (service *Service) RecentCount(ctx context.Context) (int, error) {
	return querycache.Fetch(ctx, service.cache, querycache.RecentCount(), service.repo.CountWithChapters)
}

// Genres returns the cached sorted genre list.
func (service *Service) Genres(ctx context.Context) ([]string, error) {
	return querycache.Fetch(ctx, service.cache, querycache.GenreList(), service.repo.Genres)
}

// Warmup pre-computes the total and recent counts at startup.
func (service *Service) Warmup(ctx context.Context) error {
	total, err := querycache.Warm(ctx, service.cache, querycache.TotalCount(), service.countAll)
	if err != nil {
		return err
	}
	recent, err := querycache.Warm(ctx, service.cache, querycache.RecentCount(), service.repo.CountWithChapters)
	if err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "query_cache_warmed", slog.Int("total", total), slog.Int("recent", recent))
	return nil
}

func (service *Service) countAll(ctx context.Context) (int, error) {
	return service.repo.Count(ctx, Filter{})
}

// # Listings

/*
ListComics returns one page of the catalog and the matching total.

Description: The unfiltered total comes from the query cache. Totals for a
search term are always counted directly.
*/
func (service *Service) ListComics(ctx context.Context, search string, page pagination.Params) ([]*Comic, int, error) {
	filter := Filter{Search: strings.TrimSpace(search)}

	comics, err := service.repo.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if filter.Search == "" {
		total, err = service.TotalCount(ctx)
	} else {
		total, err = service.repo.Count(ctx, filter)
	}
	if err != nil {
		return nil, 0, err
	}
	return comics, total, nil
}

// ListOwned returns the comics created by ownerID. Counts are never cached.
func (service *Service) ListOwned(ctx context.Context, ownerID int64, search string, page pagination.Params) ([]*Comic, int, error) {
	filter := Filter{Search: strings.TrimSpace(search), OwnerID: ownerID}

	comics, err := service.repo.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := service.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return comics, total, nil
}

// ListTop returns comics by views and the cached catalog total.
func (service *Service) ListTop(ctx context.Context, page pagination.Params) ([]*Comic, int, error) {
	comics, err := service.repo.ListTop(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := service.TotalCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return comics, total, nil
}

// ListRecent returns comics by latest chapter and the cached count of comics with chapters.
func (service *Service) ListRecent(ctx context.Context, page pagination.Params) ([]*RecentComic, int, error) {
	comics, err := service.repo.ListRecent(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := service.RecentCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return comics, total, nil
}

// ListByGenre returns comics in genre and its cached per-genre count.
func (service *Service) ListByGenre(ctx context.Context, genre string, page pagination.Params) ([]*Comic, int, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, 0, validate.RequiredError(FieldGenres, "Genre is required")
	}

	comics, err := service.repo.ListByGenre(ctx, genre, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := querycache.Fetch(ctx, service.cache, querycache.GenreCount(genre), func(ctx context.Context) (int, error) {
		return service.repo.CountByGenre(ctx, genre)
	})
	if err != nil {
		return nil, 0, err
	}
	return comics, total, nil
}

/*
Featured returns up to count comics picked at random from the top fromTop by views.

Parameters:
  - count: number of comics to return
  - fromTop: size of the most-viewed pool to draw from
*/
func (service *Service) Featured(ctx context.Context, count, fromTop int) ([]*Comic, error) {
	pool, err := service.repo.ListTop(ctx, fromTop, 0)
	if err != nil {
		return nil, err
	}

	service.randMu.Lock()
	service.random.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	service.randMu.Unlock()

	if count < len(pool) {
		pool = pool[:count]
	}
	return pool, nil
}

// # Single Comic

// FindByID returns a comic without counting a view.
func (service *Service) FindByID(ctx context.Context, id int64) (*Comic, error) {
	return service.repo.FindByID(ctx, id)
}

// FindBySlug returns a comic without counting a view.
func (service *Service) FindBySlug(ctx context.Context, comicSlug string) (*Comic, error) {
	return service.repo.FindBySlug(ctx, comicSlug)
}

// ViewByID returns a comic and counts a view for clientIP at most once per cooldown.
func (service *Service) ViewByID(ctx context.Context, id int64, clientIP string) (*Comic, error) {
	comic, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	service.countView(ctx, comic, clientIP)
	return comic, nil
}

// ViewBySlug is [Service.ViewByID] keyed by slug.
func (service *Service) ViewBySlug(ctx context.Context, comicSlug, clientIP string) (*Comic, error) {
	comic, err := service.repo.FindBySlug(ctx, comicSlug)
	if err != nil {
		return nil, err
	}
	service.countView(ctx, comic, clientIP)
	return comic, nil
}

// countView never fails the read; the counter is advisory.
func (service *Service) countView(ctx context.Context, comic *Comic, clientIP string) {
	if !service.views.ShouldCount(clientIP, comic.ID) {
		metrics.ComicViews.WithLabelValues("deduplicated").Inc()
		return
	}

	if err := service.repo.IncrementViews(ctx, comic.ID); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "comic_view_increment_failed",
			slog.Int64("comic_id", comic.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	metrics.ComicViews.WithLabelValues("counted").Inc()
}

// # Mutations

/*
CreateComic validates input, derives the slug and persists the comic.

Returns:
  - *Comic: the stored comic
  - error: VALIDATION_ERROR, CONFLICT for a taken slug, or SERVICE_UNAVAILABLE
    when the cache could not be invalidated after the insert
*/
func (service *Service) CreateComic(ctx context.Context, input CreateInput) (*Comic, error) {
	if input.Status == "" {
		input.Status = StatusOngoing
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Genres = cleanGenres(input.Genres)

	comic := &Comic{
		Title:       input.Title,
		Slug:        slug.From(input.Title),
		Description: input.Description,
		CoverURL:    strings.TrimSpace(input.CoverURL),
		Author:      strings.TrimSpace(input.Author),
		Status:      input.Status,
		Genres:      input.Genres,
		CreatedBy:   input.CreatedBy,
	}

	v := &validate.Validator{}
	validateComic(v, comic)
	if input.CreatedBy != nil {
		v.PositiveID("created_by", *input.CreatedBy)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Create(ctx, comic); err != nil {
		if apperr.HasCode(err, "CONFLICT") {
			return nil, apperr.Conflict("A comic with this title already exists").WithCause(err)
		}
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "comic_created",
		slog.Int64("comic_id", comic.ID),
		slog.String("slug", comic.Slug),
	)

	if err := service.cache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return comic, nil
}

// UpdateComic applies a partial update. A new title regenerates the slug.
func (service *Service) UpdateComic(ctx context.Context, id int64, input UpdateInput) (*Comic, error) {
	comic, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		comic.Title = strings.TrimSpace(*input.Title)
		comic.Slug = slug.From(comic.Title)
	}
	comic.Description = pointer.Fallback(input.Description, comic.Description)
	comic.CoverURL = strings.TrimSpace(pointer.Fallback(input.CoverURL, comic.CoverURL))
	comic.Author = strings.TrimSpace(pointer.Fallback(input.Author, comic.Author))
	comic.Status = pointer.Fallback(input.Status, comic.Status)
	if input.Genres != nil {
		comic.Genres = cleanGenres(*input.Genres)
	}

	v := &validate.Validator{}
	validateComic(v, comic)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Update(ctx, comic); err != nil {
		if apperr.HasCode(err, "CONFLICT") {
			return nil, apperr.Conflict("A comic with this title already exists").WithCause(err)
		}
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "comic_updated", slog.Int64("comic_id", comic.ID))

	if err := service.cache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return comic, nil
}

/*
DeleteComic removes a comic and its chapters, then schedules asset cleanup.

Description: After the delete commits, one background task removes every
chapter folder and, when the cover is hosted by the image server, the cover.
Cleanup failures are logged by the dispatcher and never reach the caller.
*/
func (service *Service) DeleteComic(ctx context.Context, id int64) error {
	comic, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	numbers, err := service.repo.ChapterNumbers(ctx, id)
	if err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	paths := make([]string, 0, len(numbers)+1)
	for _, number := range numbers {
		paths = append(paths, assetclient.ChapterFolderPath(comic.Slug, number))
	}
	if coverPath, ok := assetclient.CoverPath(comic.CoverURL); ok {
		paths = append(paths, coverPath)
	}
	service.assets.Dispatch(ctx, paths...)

	ctxutil.GetLogger(ctx).InfoContext(ctx, "comic_deleted",
		slog.Int64("comic_id", id),
		slog.Int("chapters", len(numbers)),
	)

	return service.cache.Invalidate(ctx)
}

// # Validation

func validateComic(v *validate.Validator, comic *Comic) {
	v.Required(FieldTitle, comic.Title).
		MaxLen(FieldTitle, comic.Title, maxTitleLength).
		Custom(FieldTitle, comic.Title != "" && comic.Slug == "", "Title must contain at least one letter or digit").
		OneOf(FieldStatus, string(comic.Status), string(StatusOngoing), string(StatusCompleted)).
		Custom(FieldGenres, len(comic.Genres) > maxGenres, "Too many genres")
}

// cleanGenres trims names and drops blanks and duplicates, keeping order.
func cleanGenres(genres []string) []string {
	cleaned := make([]string, 0, len(genres))
	seen := make(map[string]struct{}, len(genres))
	for _, genre := range genres {
		genre = strings.TrimSpace(genre)
		if genre == "" {
			continue
		}
		if _, dup := seen[genre]; dup {
			continue
		}
		seen[genre] = struct{}{}
		cleaned = append(cleaned, genre)
	}
	return cleaned
}
