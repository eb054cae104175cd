// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/taibuivan/comicshelf/internal/platform/database/schema"
	"github.com/taibuivan/comicshelf/internal/platform/dberr"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite"
)

// # SQLite Repository

type sqliteRepository struct {
	db    *sql.DB
	clock sqlite.Clock
}

// NewSQLiteRepository constructs a SQLite backed chapter store.
func NewSQLiteRepository(db *sql.DB, clock sqlite.Clock) Repository {
	return &sqliteRepository{db: db, clock: clock}
}

var (
	chapterTable   = schema.Chapters
	comicTable     = schema.Comics
	chapterColumns = chapterTable.Select("ch")
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChapter(scanner rowScanner, extra ...any) (*Chapter, error) {
	var (
		chapter   Chapter
		title     sql.NullString
		images    sql.NullString
		createdAt sqlite.NullTime
	)

	dest := []any{&chapter.ID, &chapter.ComicID, &chapter.ChapterNumber, &title, &images, &createdAt}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	chapter.Title = title.String
	chapter.ImageURLs = decodeImages(images.String)
	chapter.CreatedAt = createdAt.Time
	return &chapter, nil
}

func encodeImages(set ImageSet) (string, error) {
	encoded, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("chapter: encode images: %w", err)
	}
	return string(encoded), nil
}

// # Reads

// ListByComic returns the comic's chapters in ascending number order.
func (repository *sqliteRepository) ListByComic(context context.Context, comicID int64) ([]*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ch WHERE ch.%s = ? ORDER BY ch.%s ASC, ch.%s ASC`,
		chapterColumns, chapterTable.Table, chapterTable.ComicID, chapterTable.ChapterNumber, chapterTable.ID)

	rows, err := repository.db.QueryContext(context, query, comicID)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	defer rows.Close()

	chapters := make([]*Chapter, 0)
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Chapter")
		}
		chapters = append(chapters, chapter)
	}
	return chapters, dberr.Wrap(rows.Err(), "Chapter")
}

// FindByID returns a single chapter.
func (repository *sqliteRepository) FindByID(context context.Context, id int64) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ch WHERE ch.%s = ?`, chapterColumns, chapterTable.Table, chapterTable.ID)

	chapter, err := scanChapter(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	return chapter, nil
}

// FindBySlugAndNumber joins the comic so one statement resolves both.
func (repository *sqliteRepository) FindBySlugAndNumber(context context.Context, comicSlug string, number float64) (*Chapter, *ComicRef, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s, c.%[5]s, c.%[6]s
		FROM %[2]s ch
		JOIN %[3]s c ON c.%[4]s = ch.%[7]s
		WHERE c.%[5]s = ? AND ch.%[8]s = ?
		ORDER BY ch.%[9]s ASC
		LIMIT 1`,
		chapterColumns, chapterTable.Table, comicTable.Table, comicTable.ID, comicTable.Slug,
		comicTable.Title, chapterTable.ComicID, chapterTable.ChapterNumber, chapterTable.ID,
	)

	comic := &ComicRef{}
	chapter, err := scanChapter(repository.db.QueryRowContext(context, query, comicSlug, number), &comic.Slug, &comic.Title)
	if err != nil {
		return nil, nil, dberr.Wrap(err, "Chapter")
	}
	comic.ID = chapter.ComicID
	return chapter, comic, nil
}

// Neighbors runs two indexed lookups on (comic_id, chapter_number).
func (repository *sqliteRepository) Neighbors(context context.Context, comicID int64, number float64) (*Neighbor, *Neighbor, error) {
	prev, err := repository.neighbor(context, comicID, number, "<", "DESC")
	if err != nil {
		return nil, nil, err
	}
	next, err := repository.neighbor(context, comicID, number, ">", "ASC")
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

func (repository *sqliteRepository) neighbor(context context.Context, comicID int64, number float64, operator, direction string) (*Neighbor, error) {
	query := fmt.Sprintf(`SELECT %[1]s, %[2]s FROM %[3]s WHERE %[4]s = ? AND %[2]s %[5]s ? ORDER BY %[2]s %[6]s, %[1]s ASC LIMIT 1`,
		chapterTable.ID, chapterTable.ChapterNumber, chapterTable.Table, chapterTable.ComicID, operator, direction)

	var neighbor Neighbor
	err := repository.db.QueryRowContext(context, query, comicID, number).Scan(&neighbor.ID, &neighbor.ChapterNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	return &neighbor, nil
}

// Comic returns the id, slug and title of a comic.
func (repository *sqliteRepository) Comic(context context.Context, comicID int64) (*ComicRef, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = ?`,
		comicTable.ID, comicTable.Slug, comicTable.Title, comicTable.Table, comicTable.ID)

	var comic ComicRef
	if err := repository.db.QueryRowContext(context, query, comicID).Scan(&comic.ID, &comic.Slug, &comic.Title); err != nil {
		return nil, dberr.Wrap(err, "Comic")
	}
	return &comic, nil
}

// NumberTaken checks for another chapter with the same number.
func (repository *sqliteRepository) NumberTaken(context context.Context, comicID int64, number float64, excludeID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = ? AND %s = ? AND %s != ?)`,
		chapterTable.Table, chapterTable.ComicID, chapterTable.ChapterNumber, chapterTable.ID)

	var taken bool
	if err := repository.db.QueryRowContext(context, query, comicID, number, excludeID).Scan(&taken); err != nil {
		return false, dberr.Wrap(err, "Chapter")
	}
	return taken, nil
}

// # Mutations

// Create inserts the chapter and touches the parent comic.
func (repository *sqliteRepository) Create(context context.Context, chapter *Chapter) error {
	images, err := encodeImages(chapter.ImageURLs)
	if err != nil {
		return err
	}

	now := repository.clock.Now().UTC()
	stamp := sqlite.FormatTime(now)

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?)`,
		chapterTable.Table, chapterTable.ComicID, chapterTable.ChapterNumber, chapterTable.Title,
		chapterTable.ImageURLs, chapterTable.CreatedAt)
	touch := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s = ?`, comicTable.Table, comicTable.UpdatedAt, comicTable.ID)

	err = sqlite.WithTx(context, repository.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(context, insert, chapter.ComicID, chapter.ChapterNumber, chapter.Title, images, stamp)
		if err != nil {
			return dberr.Wrap(err, "Comic")
		}
		if chapter.ID, err = result.LastInsertId(); err != nil {
			return dberr.Wrap(err, "Chapter")
		}
		if _, err := tx.ExecContext(context, touch, stamp, chapter.ComicID); err != nil {
			return dberr.Wrap(err, "Comic")
		}
		return nil
	})
	if err != nil {
		return err
	}

	chapter.CreatedAt = now
	return nil
}

// Update rewrites number, title and images.
func (repository *sqliteRepository) Update(context context.Context, chapter *Chapter) error {
	images, err := encodeImages(chapter.ImageURLs)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE %s = ?`,
		chapterTable.Table, chapterTable.ChapterNumber, chapterTable.Title, chapterTable.ImageURLs, chapterTable.ID)

	result, err := repository.db.ExecContext(context, query, chapter.ChapterNumber, chapter.Title, images, chapter.ID)
	if err != nil {
		return dberr.Wrap(err, "Chapter")
	}
	return expectAffected(result)
}

// Delete removes one chapter.
func (repository *sqliteRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, chapterTable.Table, chapterTable.ID)

	result, err := repository.db.ExecContext(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Chapter")
	}
	return expectAffected(result)
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "Chapter")
	}
	if affected == 0 {
		return dberr.Wrap(sql.ErrNoRows, "Chapter")
	}
	return nil
}
