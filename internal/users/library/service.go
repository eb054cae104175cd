// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/validate"
	"github.com/taibuivan/comicshelf/pkg/pagination"
	"github.com/taibuivan/comicshelf/pkg/pointer"
)

const (
	// DefaultChapterNumber is recorded when a synced read carries no chapter.
	DefaultChapterNumber = 1.0

	// DefaultHistoryLimit is the page size of GET /api/user/history.
	DefaultHistoryLimit = 50

	// MaxSyncEntries caps each list of a sync payload.
	MaxSyncEntries = 1000
)

// Service implements reader library operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// # History

// History returns a page of the reader's history, newest first.
func (service *Service) History(ctx context.Context, userID int64, page pagination.Params) ([]*HistoryEntry, int, error) {
	return service.repo.ListHistory(ctx, userID, page.Limit, page.Offset)
}

// RecordInput is the body of POST /api/user/history.
type RecordInput struct {
	ComicID       int64    `json:"comic_id"`
	ChapterNumber *float64 `json:"chapter_number"`
}

/*
RecordRead remembers the chapter a reader just opened.

Returns:
  - error: VALIDATION_ERROR for a bad id or number, NOT_FOUND for an unknown comic
*/
func (service *Service) RecordRead(ctx context.Context, userID int64, input RecordInput) error {
	number := pointer.Fallback(input.ChapterNumber, DefaultChapterNumber)

	validator := &validate.Validator{}
	validator.PositiveID("comic_id", input.ComicID).ChapterNumber("chapter_number", number)
	if err := validator.Err(); err != nil {
		return err
	}

	return service.repo.RecordRead(ctx, userID, input.ComicID, number)
}

// RemoveHistory forgets one comic.
func (service *Service) RemoveHistory(ctx context.Context, userID, comicID int64) error {
	return service.repo.RemoveHistory(ctx, userID, comicID)
}

// ClearHistory forgets every comic.
func (service *Service) ClearHistory(ctx context.Context, userID int64) error {
	if err := service.repo.ClearHistory(ctx, userID); err != nil {
		return err
	}
	ctxutil.GetLogger(ctx).Info("history_cleared", slog.Int64("user_id", userID))
	return nil
}

// # Follows

// Follows returns the reader's followed comics.
func (service *Service) Follows(ctx context.Context, userID int64) ([]*Follow, error) {
	return service.repo.ListFollows(ctx, userID)
}

// Follow follows a comic. Following twice is a no-op.
func (service *Service) Follow(ctx context.Context, userID, comicID int64) error {
	return service.repo.Follow(ctx, userID, comicID)
}

// Unfollow stops following a comic.
func (service *Service) Unfollow(ctx context.Context, userID, comicID int64) error {
	return service.repo.Unfollow(ctx, userID, comicID)
}

// IsFollowing reports whether the reader follows a comic.
func (service *Service) IsFollowing(ctx context.Context, userID, comicID int64) (bool, error) {
	return service.repo.IsFollowing(ctx, userID, comicID)
}

// # Sync

/*
Sync merges a client's local library into the stored one and returns the result.

Entries naming unknown comics are dropped silently. Reads without a chapter
number record chapter 1.
*/
func (service *Service) Sync(ctx context.Context, userID int64, input SyncInput) (*SyncResult, error) {
	validator := &validate.Validator{}
	validator.
		Custom("history", len(input.History) > MaxSyncEntries, fmt.Sprintf("At most %d entries", MaxSyncEntries)).
		Custom("follows", len(input.Follows) > MaxSyncEntries, fmt.Sprintf("At most %d entries", MaxSyncEntries))
	for _, item := range input.History {
		if item.ChapterNumber != nil {
			validator.ChapterNumber("history.chapter_number", *item.ChapterNumber)
		}
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Merge(ctx, userID, input); err != nil {
		return nil, err
	}

	history, _, err := service.repo.ListHistory(ctx, userID, DefaultHistoryLimit, 0)
	if err != nil {
		return nil, err
	}
	follows, err := service.repo.ListFollows(ctx, userID)
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).Info("library_synced",
		slog.Int64("user_id", userID),
		slog.Int("history_in", len(input.History)),
		slog.Int("follows_in", len(input.Follows)),
	)
	return &SyncResult{History: history, Follows: follows}, nil
}
