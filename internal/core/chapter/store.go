// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

// # Chapter Data Access

// Repository defines the data access contract for chapters.
type Repository interface {

	/*
		ListByComic returns all chapters of a comic, ordered by chapter number.

		Parameters:
		  - context: context.Context
		  - comicID: int64

		Returns:
		  - []*Chapter: chapters with stored (unresolved) image URLs
		  - error: storage failures
	*/
	ListByComic(context context.Context, comicID int64) ([]*Chapter, error)

	/*
		FindByID returns the chapter with the given id.

		Returns:
		  - error: NOT_FOUND if missing
	*/
	FindByID(context context.Context, id int64) (*Chapter, error)

	/*
		FindBySlugAndNumber returns a chapter addressed by its comic's slug.

		Parameters:
		  - context: context.Context
		  - comicSlug: string
		  - number: float64

		Returns:
		  - *Chapter: the chapter
		  - *ComicRef: the owning comic
		  - error: NOT_FOUND if either is missing
	*/
	FindBySlugAndNumber(context context.Context, comicSlug string, number float64) (*Chapter, *ComicRef, error)

	// Neighbors returns the closest lower and higher numbered chapters. Either may be nil.
	Neighbors(context context.Context, comicID int64, number float64) (prev, next *Neighbor, err error)

	// Comic returns the owning comic of a chapter, or NOT_FOUND.
	Comic(context context.Context, comicID int64) (*ComicRef, error)

	// NumberTaken reports whether comicID already has a chapter numbered number,
	// ignoring the chapter excludeID.
	NumberTaken(context context.Context, comicID int64, number float64, excludeID int64) (bool, error)

	/*
		Create persists a chapter and bumps the comic's updated_at in one transaction.

		Returns:
		  - error: storage failures
	*/
	Create(context context.Context, chapter *Chapter) error

	// Update persists number, title and images.
	Update(context context.Context, chapter *Chapter) error

	// Delete removes the chapter with the given id.
	Delete(context context.Context, id int64) error
}
