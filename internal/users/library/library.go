// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library keeps each reader's reading history and followed comics.

Both lists hold at most one row per (user, comic). History rows remember the
last chapter read; follow rows only remember when the follow happened.
Clients that kept a local library before signing in merge it with [Service.Sync].
*/
package library

import (
	"context"
	"time"
)

// # Domain Entities

// ComicSummary is the slice of a comic shown next to library entries.
type ComicSummary struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	CoverURL string `json:"cover_url"`
	Author   string `json:"author"`
}

// HistoryEntry is the last chapter a reader opened in one comic.
type HistoryEntry struct {
	ComicID       int64     `json:"comic_id"`
	ChapterNumber *float64  `json:"chapter_number"`
	ReadAt        time.Time `json:"read_at"`
	ComicSummary
}

// Follow is a comic the reader follows.
type Follow struct {
	ComicID    int64     `json:"comic_id"`
	FollowedAt time.Time `json:"followed_at"`
	Status     string    `json:"status"`
	ComicSummary
}

// # Sync Payload

// SyncHistoryItem is one locally recorded read.
type SyncHistoryItem struct {
	ComicID       int64    `json:"comic_id"`
	ChapterNumber *float64 `json:"chapter_number"`
}

// SyncFollowItem is one locally followed comic.
type SyncFollowItem struct {
	ID int64 `json:"id"`
}

// SyncInput is a client's local library.
type SyncInput struct {
	History []SyncHistoryItem `json:"history"`
	Follows []SyncFollowItem  `json:"follows"`
}

// SyncResult is the merged server-side library.
type SyncResult struct {
	History []*HistoryEntry `json:"history"`
	Follows []*Follow       `json:"follows"`
}

// # Repository Contracts

// Repository defines the persistence contract for reader libraries.
type Repository interface {

	// ListHistory returns the newest history entries first, and the total count.
	ListHistory(context context.Context, userID int64, limit, offset int) ([]*HistoryEntry, int, error)

	/*
		RecordRead upserts the history row for (userID, comicID).

		Returns:
		  - error: NOT_FOUND when the comic does not exist
	*/
	RecordRead(context context.Context, userID, comicID int64, chapterNumber float64) error

	// RemoveHistory deletes one history row. A missing row is not an error.
	RemoveHistory(context context.Context, userID, comicID int64) error

	// ClearHistory deletes every history row of the user.
	ClearHistory(context context.Context, userID int64) error

	// ListFollows returns followed comics, newest follow first.
	ListFollows(context context.Context, userID int64) ([]*Follow, error)

	// Follow adds a follow. Following twice keeps the first timestamp.
	Follow(context context.Context, userID, comicID int64) error

	// Unfollow removes a follow. A missing follow is not an error.
	Unfollow(context context.Context, userID, comicID int64) error

	// IsFollowing reports whether the user follows the comic.
	IsFollowing(context context.Context, userID, comicID int64) (bool, error)

	/*
		Merge applies a local library in a single transaction.

		Unknown comics are skipped. Nothing is written if any statement fails.
	*/
	Merge(context context.Context, userID int64, input SyncInput) error
}
