// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import "context"

// # Comic Data Access

// Repository defines the data access contract for the comic domain.
type Repository interface {

	/*
		List returns one page of comics ordered by updated_at, newest first.

		Parameters:
		  - context: context.Context
		  - filter: Filter (search term and optional owner)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Comic: the page
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Comic, error)

	// Count returns the number of comics matching filter.
	Count(context context.Context, filter Filter) (int, error)

	// ListTop returns comics ordered by views, highest first.
	ListTop(context context.Context, limit, offset int) ([]*Comic, error)

	/*
		ListRecent returns comics ranked by their latest chapter.

		Description: For each comic the chapter with the highest chapter_number is
		its latest; comics are ordered by that chapter's created_at descending,
		with chapterless comics last. Up to three previews per comic are loaded
		with one additional partitioned query for the whole page.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []*RecentComic: the page with previews attached
		  - error: Database retrieval failures
	*/
	ListRecent(context context.Context, limit, offset int) ([]*RecentComic, error)

	// CountWithChapters returns the number of comics with at least one chapter.
	CountWithChapters(context context.Context) (int, error)

	// ListByGenre returns comics whose genre JSON text contains genre.
	ListByGenre(context context.Context, genre string, limit, offset int) ([]*Comic, error)

	// CountByGenre counts comics matched the same way as [Repository.ListByGenre].
	CountByGenre(context context.Context, genre string) (int, error)

	// Genres returns the sorted union of every comic's genres.
	Genres(context context.Context) ([]string, error)

	// FindByID returns the comic with the given id or NOT_FOUND.
	FindByID(context context.Context, id int64) (*Comic, error)

	// FindBySlug returns the comic with the given slug or NOT_FOUND.
	FindBySlug(context context.Context, slug string) (*Comic, error)

	/*
		Create persists a new comic and fills in its id and timestamps.

		Returns:
		  - error: CONFLICT when the slug is taken, VALIDATION_ERROR for an unknown owner
	*/
	Create(context context.Context, comic *Comic) error

	// Update persists every mutable field and bumps updated_at.
	Update(context context.Context, comic *Comic) error

	// Delete removes the comic. Chapters, history and follows cascade.
	Delete(context context.Context, id int64) error

	// IncrementViews adds one to the view counter.
	IncrementViews(context context.Context, id int64) error

	// ChapterNumbers lists the distinct chapter numbers of a comic, ascending.
	ChapterNumbers(context context.Context, id int64) ([]float64, error)
}
