// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic defines the catalog's central aggregate and its read models.

Core Responsibility:

  - Catalogue: comic metadata, the title-derived slug and the genre list.
  - Discovery: top, featured, recently updated and per-genre listings.
  - Analytics: a monotonic view counter, deduplicated per client IP.

Chapters live in their own package; this one only reads the chapters table to
rank comics by their latest chapter and to build inline previews.
*/
package comic

import "time"

// # Domain Enums

// Status represents the publication status of a comic.
type Status string

const (
	// StatusOngoing indicates the publication is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusCompleted:
		return true
	}
	return false
}

// # Core Entities

// Comic is a single serialised publication in the catalog.
type Comic struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"` // Derived from Title, unique
	Description string    `json:"description"`
	CoverURL    string    `json:"cover_url"` // "/images/covers/..." when hosted by the image server
	Author      string    `json:"author"`
	Status      Status    `json:"status"`
	Genres      []string  `json:"genres"`
	Views       int64     `json:"views"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChapterPreview is the inline chapter summary carried by [RecentComic].
type ChapterPreview struct {
	ID            int64     `json:"id"`
	ChapterNumber float64   `json:"chapter_number"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecentComic is a comic ranked by the creation time of its highest-numbered chapter.
type RecentComic struct {
	Comic

	// LastChapterAt and LatestChapter are nil for comics without chapters.
	LastChapterAt  *time.Time        `json:"last_chapter_at"`
	LatestChapter  *float64          `json:"latest_chapter"`
	RecentChapters []*ChapterPreview `json:"recent_chapters"`
}

// # Inputs

// CreateInput carries the fields accepted when creating a comic.
type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CoverURL    string   `json:"cover_url"`
	Author      string   `json:"author"`
	Status      Status   `json:"status"`
	Genres      []string `json:"genres"`
	CreatedBy   *int64   `json:"created_by"`
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	CoverURL    *string   `json:"cover_url"`
	Author      *string   `json:"author"`
	Status      *Status   `json:"status"`
	Genres      *[]string `json:"genres"`
}

// # Search & Filtering

// Filter narrows the plain comic listing.
type Filter struct {
	// Search matches title or author as a substring.
	Search string

	// OwnerID restricts to comics created by this account when non-zero.
	OwnerID int64
}

// # Field Identifiers

const (
	FieldTitle  = "title"
	FieldStatus = "status"
	FieldGenres = "genres"
)

const (
	// maxTitleLength bounds titles so slugs stay usable as folder names.
	maxTitleLength = 255
	maxGenres      = 50
)
