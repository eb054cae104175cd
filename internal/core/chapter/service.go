// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/taibuivan/comicshelf/internal/assetclient"
	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/validate"
	"github.com/taibuivan/comicshelf/internal/querycache"
	"github.com/taibuivan/comicshelf/pkg/convert"
	"github.com/taibuivan/comicshelf/pkg/pointer"
)

// AssetCleaner removes image server paths in the background.
type AssetCleaner interface {
	Dispatch(ctx context.Context, paths ...string)
}

// Service implements the business logic for chapters.
type Service struct {
	repo       Repository
	cache      *querycache.Cache
	assets     AssetCleaner
	tiktokBase string
	logger     *slog.Logger
}

// NewService constructs a new [Service]. tiktokBaseURL expands "tiktok:" image ids on read.
func NewService(repo Repository, cache *querycache.Cache, assets AssetCleaner, tiktokBaseURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		assets:     assets,
		tiktokBase: tiktokBaseURL,
		logger:     logger,
	}
}

// TikTokBaseURL returns the CDN base used for "tiktok:" ids.
func (service *Service) TikTokBaseURL() string {
	return service.tiktokBase
}

func (service *Service) resolve(chapter *Chapter) *Chapter {
	chapter.ImageURLs = chapter.ImageURLs.Resolve(service.tiktokBase)
	return chapter
}

// # Reads

// ListByComic returns a comic's chapters in reading order with resolved images.
func (service *Service) ListByComic(ctx context.Context, comicID int64) ([]*Chapter, error) {
	chapters, err := service.repo.ListByComic(ctx, comicID)
	if err != nil {
		return nil, err
	}
	for _, chapter := range chapters {
		service.resolve(chapter)
	}
	return chapters, nil
}

// Get returns a chapter with its neighbors.
func (service *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	chapter, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return service.detail(ctx, chapter)
}

/*
GetBySlugAndNumber returns a chapter addressed by comic slug and chapter number.

Parameters:
  - comicSlug: string
  - rawNumber: string as found in the URL ("12", "12.0" and "12.5" are all valid)

Returns:
  - *Detail: the chapter, its neighbors, comic_slug and comic_title
  - error: VALIDATION_ERROR for a malformed number, NOT_FOUND otherwise
*/
func (service *Service) GetBySlugAndNumber(ctx context.Context, comicSlug, rawNumber string) (*Detail, error) {
	number, err := convert.ParseChapterNumber(rawNumber)
	if err != nil {
		return nil, validate.RequiredError("number", "Invalid chapter number")
	}

	chapter, comic, err := service.repo.FindBySlugAndNumber(ctx, comicSlug, number)
	if err != nil {
		return nil, err
	}

	detail, err := service.detail(ctx, chapter)
	if err != nil {
		return nil, err
	}
	detail.ComicSlug = comic.Slug
	detail.ComicTitle = comic.Title
	return detail, nil
}

func (service *Service) detail(ctx context.Context, chapter *Chapter) (*Detail, error) {
	prev, next, err := service.repo.Neighbors(ctx, chapter.ComicID, chapter.ChapterNumber)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Chapter:     *service.resolve(chapter),
		PrevChapter: prev,
		NextChapter: next,
	}, nil
}

// # Mutations

/*
Create adds a chapter to a comic.

Description: The insert and the comic's updated_at bump share one transaction.
The query cache is invalidated before returning.

Returns:
  - error: VALIDATION_ERROR, NOT_FOUND for an unknown comic

Chapter numbers are not unique per comic. A second chapter with an existing
number is accepted and readers by number get the oldest one.
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*Chapter, error) {
	chapter := &Chapter{
		ComicID:   input.ComicID,
		Title:     strings.TrimSpace(input.Title),
		ImageURLs: cleanImages(input.ImageURLs),
	}

	v := &validate.Validator{}
	v.PositiveID(FieldComicID, input.ComicID).
		Custom(FieldChapterNumber, input.ChapterNumber == nil, "This field is required")
	if input.ChapterNumber != nil {
		chapter.ChapterNumber = *input.ChapterNumber
		v.ChapterNumber(FieldChapterNumber, chapter.ChapterNumber)
	}
	v.MaxLen(FieldTitle, chapter.Title, maxTitleLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := service.repo.Comic(ctx, chapter.ComicID); err != nil {
		return nil, err
	}
	if err := service.repo.Create(ctx, chapter); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "chapter_created",
		slog.Int64("chapter_id", chapter.ID),
		slog.Int64("comic_id", chapter.ComicID),
		slog.Float64("chapter_number", chapter.ChapterNumber),
		slog.Int("images", chapter.ImageURLs.Count()),
	)

	if err := service.cache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return service.resolve(chapter), nil
}

// Update applies a partial update. Renumbering does not move images already
// uploaded under the old number.
func (service *Service) Update(ctx context.Context, id int64, input UpdateInput) (*Chapter, error) {
	chapter, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	chapter.ChapterNumber = pointer.Fallback(input.ChapterNumber, chapter.ChapterNumber)
	chapter.Title = strings.TrimSpace(pointer.Fallback(input.Title, chapter.Title))

	v := &validate.Validator{}
	v.ChapterNumber(FieldChapterNumber, chapter.ChapterNumber).
		MaxLen(FieldTitle, chapter.Title, maxTitleLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if input.ImageURLs != nil {
		chapter.ImageURLs = cleanImages(*input.ImageURLs)
	}

	if err := service.repo.Update(ctx, chapter); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "chapter_updated", slog.Int64("chapter_id", chapter.ID))

	if err := service.cache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return service.resolve(chapter), nil
}

// Delete removes a chapter and schedules removal of its image folder. The
// folder is kept while another chapter of the comic still uses the number.
func (service *Service) Delete(ctx context.Context, id int64) error {
	chapter, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	comic, err := service.repo.Comic(ctx, chapter.ComicID)
	if err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger := ctxutil.GetLogger(ctx)

	shared, err := service.repo.NumberTaken(ctx, comic.ID, chapter.ChapterNumber, id)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "chapter_folder_check_failed", slog.Int64("chapter_id", id), slog.Any("error", err))
	case shared:
		logger.InfoContext(ctx, "chapter_folder_kept",
			slog.Int64("chapter_id", id),
			slog.Float64("chapter_number", chapter.ChapterNumber),
		)
	default:
		service.assets.Dispatch(ctx, assetclient.ChapterFolderPath(comic.Slug, chapter.ChapterNumber))
	}

	logger.InfoContext(ctx, "chapter_deleted",
		slog.Int64("chapter_id", id),
		slog.Int64("comic_id", comic.ID),
	)

	return service.cache.Invalidate(ctx)
}

// cleanImages drops blank URLs and names unnamed groups "Server N" by position.
func cleanImages(set ImageSet) ImageSet {
	cleaned := make(ImageSet, 0, len(set))
	for _, group := range set {
		urls := make([]string, 0, len(group.ImageURLs))
		for _, url := range group.ImageURLs {
			if url = strings.TrimSpace(url); url != "" {
				urls = append(urls, url)
			}
		}

		name := strings.TrimSpace(group.ServerName)
		if name == "" {
			name = "Server " + strconv.Itoa(len(cleaned)+1)
		}
		cleaned = append(cleaned, ServerGroup{ServerName: name, ImageURLs: urls})
	}
	return cleaned
}
