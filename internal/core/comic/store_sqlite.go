// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic provides the SQLite implementation of the catalog's comic store.

Genres are stored as a JSON text array and matched with a LIKE substring
search over that text. The match is an accepted approximation: "Action" also
matches a comic tagged only "Action-Comedy", LIKE folds ASCII case, and `%`
or `_` inside a genre act as wildcards.
*/
package comic

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/database/schema"
	"github.com/taibuivan/comicshelf/internal/platform/dberr"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite"
)

// # SQLite Repository

// sqliteRepository implements the [Repository] interface on database/sql.
type sqliteRepository struct {
	db    *sql.DB
	clock sqlite.Clock
}

// NewSQLiteRepository constructs a SQLite backed comic store.
func NewSQLiteRepository(db *sql.DB, clock sqlite.Clock) Repository {
	return &sqliteRepository{db: db, clock: clock}
}

var (
	comicTable   = schema.Comics
	chapterTable = schema.Chapters
	comicColumns = comicTable.Select("c")
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanComic reads the columns of [schema.ComicsTable.Columns] plus any extra destinations.
func scanComic(scanner rowScanner, extra ...any) (*Comic, error) {
	var (
		comic       Comic
		description sql.NullString
		coverURL    sql.NullString
		author      sql.NullString
		genres      string
		createdBy   sql.NullInt64
		createdAt   sqlite.NullTime
		updatedAt   sqlite.NullTime
	)

	dest := []any{
		&comic.ID, &comic.Title, &comic.Slug, &description, &coverURL, &author,
		&comic.Status, &genres, &comic.Views, &createdBy, &createdAt, &updatedAt,
	}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	comic.Description = description.String
	comic.CoverURL = coverURL.String
	comic.Author = author.String
	comic.Genres = decodeGenres(genres)
	if createdBy.Valid {
		owner := createdBy.Int64
		comic.CreatedBy = &owner
	}
	comic.CreatedAt = createdAt.Time
	comic.UpdatedAt = updatedAt.Time

	return &comic, nil
}

// decodeGenres tolerates malformed rows by treating them as genre-less.
func decodeGenres(raw string) []string {
	genres := []string{}
	if raw == "" {
		return genres
	}
	if err := json.Unmarshal([]byte(raw), &genres); err != nil || genres == nil {
		return []string{}
	}
	return genres
}

func encodeGenres(genres []string) (string, error) {
	if genres == nil {
		genres = []string{}
	}
	encoded, err := json.Marshal(genres)
	if err != nil {
		return "", fmt.Errorf("comic: encode genres: %w", err)
	}
	return string(encoded), nil
}

// genrePattern is the LIKE pattern matching a genre inside the JSON array text.
func genrePattern(genre string) string {
	return "%" + genre + "%"
}

// collectComics drains rows into a slice.
func collectComics(rows *sql.Rows) ([]*Comic, error) {
	defer rows.Close()

	comics := make([]*Comic, 0)
	for rows.Next() {
		comic, err := scanComic(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Comic")
		}
		comics = append(comics, comic)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Comic")
	}
	return comics, nil
}

// filterClause builds the WHERE clause shared by List and Count.
func filterClause(filter Filter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if filter.OwnerID > 0 {
		conditions = append(conditions, fmt.Sprintf("c.%s = ?", comicTable.CreatedBy))
		args = append(args, filter.OwnerID)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf("(c.%s LIKE ? OR c.%s LIKE ?)", comicTable.Title, comicTable.Author))
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// # Listing

// List returns one page of comics ordered by updated_at, newest first.
func (repository *sqliteRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Comic, error) {
	where, args := filterClause(filter)
	query := fmt.Sprintf(`SELECT %s FROM %s c%s ORDER BY c.%s DESC, c.%s DESC LIMIT ? OFFSET ?`,
		comicColumns, comicTable.Table, where, comicTable.UpdatedAt, comicTable.ID)

	rows, err := repository.db.QueryContext(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, dberr.Wrap(err, "Comic")
	}
	return collectComics(rows)
}

// Count returns the number of comics matching filter.
func (repository *sqliteRepository) Count(context context.Context, filter Filter) (int, error) {
	where, args := filterClause(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s c%s`, comicTable.Table, where)

	var total int
	if err := repository.db.QueryRowContext(context, query, args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "Comic")
	}
	return total, nil
}

// ListTop returns comics ordered by views, highest first.
func (repository *sqliteRepository) ListTop(context context.Context, limit, offset int) ([]*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c ORDER BY c.%s DESC, c.%s ASC LIMIT ? OFFSET ?`,
		comicColumns, comicTable.Table, comicTable.Views, comicTable.ID)

	rows, err := repository.db.QueryContext(context, query, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "Comic")
	}
	return collectComics(rows)
}

/*
ListRecent returns comics ranked by the creation time of their highest-numbered chapter.

Description: Two statements, independent of page size:
  - Ranking: a window over chapters picks each comic's highest chapter_number
    (ties broken by the newest row); comics are left-joined to it and sorted
    by its created_at DESC NULLS LAST.
  - Previews: one partitioned ROW_NUMBER() query over the page's comic ids
    keeps the top three chapters of each.
*/
func (repository *sqliteRepository) ListRecent(context context.Context, limit, offset int) ([]*RecentComic, error) {
	query := fmt.Sprintf(`
		WITH latest AS (
			SELECT %[3]s AS comic_id, %[5]s AS created_at, %[4]s AS chapter_number,
				ROW_NUMBER() OVER (PARTITION BY %[3]s ORDER BY %[4]s DESC, %[6]s DESC) AS rn
			FROM %[2]s
		)
		SELECT %[1]s, l.created_at, l.chapter_number
		FROM %[7]s c
		LEFT JOIN latest l ON l.comic_id = c.%[6]s AND l.rn = 1
		ORDER BY l.created_at DESC NULLS LAST, c.%[6]s DESC
		LIMIT ? OFFSET ?`,
		comicColumns,
		chapterTable.Table,
		chapterTable.ComicID,
		chapterTable.ChapterNumber,
		chapterTable.CreatedAt,
		chapterTable.ID,
		comicTable.Table,
	)

	rows, err := repository.db.QueryContext(context, query, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "Comic")
	}

	recent := make([]*RecentComic, 0)
	byID := make(map[int64]*RecentComic)
	for rows.Next() {
		var (
			lastChapterAt sqlite.NullTime
			latest        sql.NullFloat64
		)
		comic, err := scanComic(rows, &lastChapterAt, &latest)
		if err != nil {
			rows.Close()
			return nil, dberr.Wrap(err, "Comic")
		}

		item := &RecentComic{
			Comic:          *comic,
			LastChapterAt:  lastChapterAt.Ptr(),
			RecentChapters: make([]*ChapterPreview, 0, constants.RecentPreviewChapters),
		}
		if latest.Valid {
			number := latest.Float64
			item.LatestChapter = &number
		}
		recent = append(recent, item)
		byID[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, dberr.Wrap(err, "Comic")
	}
	rows.Close()

	if len(recent) == 0 {
		return recent, nil
	}

	if err := repository.attachPreviews(context, recent, byID); err != nil {
		return nil, err
	}
	return recent, nil
}

// attachPreviews loads up to [constants.RecentPreviewChapters] chapters per comic in one query.
func (repository *sqliteRepository) attachPreviews(context context.Context, page []*RecentComic, byID map[int64]*RecentComic) error {
	placeholders := make([]string, len(page))
	args := make([]any, 0, len(page)+1)
	for i, item := range page {
		placeholders[i] = "?"
		args = append(args, item.ID)
	}
	args = append(args, constants.RecentPreviewChapters)

	query := fmt.Sprintf(`
		SELECT id, comic_id, chapter_number, title, created_at FROM (
			SELECT %[2]s AS id, %[3]s AS comic_id, %[4]s AS chapter_number, %[5]s AS title, %[6]s AS created_at,
				ROW_NUMBER() OVER (PARTITION BY %[3]s ORDER BY %[4]s DESC, %[2]s DESC) AS rn
			FROM %[1]s
			WHERE %[3]s IN (%[7]s)
		)
		WHERE rn <= ?
		ORDER BY comic_id, rn`,
		chapterTable.Table,
		chapterTable.ID,
		chapterTable.ComicID,
		chapterTable.ChapterNumber,
		chapterTable.Title,
		chapterTable.CreatedAt,
		strings.Join(placeholders, ", "),
	)

	rows, err := repository.db.QueryContext(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "Chapter")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			preview   ChapterPreview
			comicID   int64
			title     sql.NullString
			createdAt sqlite.NullTime
		)
		if err := rows.Scan(&preview.ID, &comicID, &preview.ChapterNumber, &title, &createdAt); err != nil {
			return dberr.Wrap(err, "Chapter")
		}
		preview.Title = title.String
		preview.CreatedAt = createdAt.Time

		if item, ok := byID[comicID]; ok {
			item.RecentChapters = append(item.RecentChapters, &preview)
		}
	}
	return dberr.Wrap(rows.Err(), "Chapter")
}

// CountWithChapters returns the number of comics with at least one chapter.
func (repository *sqliteRepository) CountWithChapters(context context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT %s) FROM %s`, chapterTable.ComicID, chapterTable.Table)

	var total int
	if err := repository.db.QueryRowContext(context, query).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "Comic")
	}
	return total, nil
}

// # Genres

// ListByGenre returns comics whose genre JSON contains genre as a substring.
func (repository *sqliteRepository) ListByGenre(context context.Context, genre string, limit, offset int) ([]*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.%s LIKE ? ORDER BY c.%s DESC, c.%s DESC LIMIT ? OFFSET ?`,
		comicColumns, comicTable.Table, comicTable.Genres, comicTable.UpdatedAt, comicTable.ID)

	rows, err := repository.db.QueryContext(context, query, genrePattern(genre), limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "Comic")
	}
	return collectComics(rows)
}

// CountByGenre counts comics matched the same way as ListByGenre.
func (repository *sqliteRepository) CountByGenre(context context.Context, genre string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s LIKE ?`, comicTable.Table, comicTable.Genres)

	var total int
	if err := repository.db.QueryRowContext(context, query, genrePattern(genre)).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "Comic")
	}
	return total, nil
}

// Genres returns the sorted union of every comic's genres.
func (repository *sqliteRepository) Genres(context context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT %[1]s FROM %[2]s WHERE %[1]s IS NOT NULL AND %[1]s != '[]'`,
		comicTable.Genres, comicTable.Table)

	rows, err := repository.db.QueryContext(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Genre")
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, dberr.Wrap(err, "Genre")
		}
		for _, genre := range decodeGenres(raw) {
			seen[genre] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Genre")
	}

	genres := make([]string, 0, len(seen))
	for genre := range seen {
		genres = append(genres, genre)
	}
	sort.Strings(genres)
	return genres, nil
}

// # Single Comic

// FindByID returns the comic with the given id.
func (repository *sqliteRepository) FindByID(context context.Context, id int64) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.%s = ?`, comicColumns, comicTable.Table, comicTable.ID)

	comic, err := scanComic(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Comic")
	}
	return comic, nil
}

// FindBySlug returns the comic with the given slug.
func (repository *sqliteRepository) FindBySlug(context context.Context, slug string) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.%s = ?`, comicColumns, comicTable.Table, comicTable.Slug)

	comic, err := scanComic(repository.db.QueryRowContext(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "Comic")
	}
	return comic, nil
}

// # Mutations

// Create persists a new comic and fills in its id and timestamps.
func (repository *sqliteRepository) Create(context context.Context, comic *Comic) error {
	genres, err := encodeGenres(comic.Genres)
	if err != nil {
		return err
	}

	now := repository.clock.Now().UTC()
	stamp := sqlite.FormatTime(now)

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		comicTable.Table,
		comicTable.Title, comicTable.Slug, comicTable.Description, comicTable.CoverURL, comicTable.Author,
		comicTable.Status, comicTable.Genres, comicTable.CreatedBy, comicTable.CreatedAt, comicTable.UpdatedAt,
	)

	result, err := repository.db.ExecContext(context, query,
		comic.Title, comic.Slug, comic.Description, comic.CoverURL, comic.Author,
		string(comic.Status), genres, comic.CreatedBy, stamp, stamp,
	)
	if err != nil {
		return dberr.Wrap(err, "Comic")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return dberr.Wrap(err, "Comic")
	}

	comic.ID = id
	comic.CreatedAt = now
	comic.UpdatedAt = now
	return nil
}

// Update persists every mutable field and bumps updated_at.
func (repository *sqliteRepository) Update(context context.Context, comic *Comic) error {
	genres, err := encodeGenres(comic.Genres)
	if err != nil {
		return err
	}

	now := repository.clock.Now().UTC()

	query := fmt.Sprintf(`UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ?, %s = ? WHERE %s = ?`,
		comicTable.Table,
		comicTable.Title, comicTable.Slug, comicTable.Description, comicTable.CoverURL,
		comicTable.Author, comicTable.Status, comicTable.Genres, comicTable.UpdatedAt,
		comicTable.ID,
	)

	result, err := repository.db.ExecContext(context, query,
		comic.Title, comic.Slug, comic.Description, comic.CoverURL,
		comic.Author, string(comic.Status), genres, sqlite.FormatTime(now),
		comic.ID,
	)
	if err != nil {
		return dberr.Wrap(err, "Comic")
	}
	if err := expectAffected(result); err != nil {
		return err
	}

	comic.UpdatedAt = now
	return nil
}

// Delete removes the comic. Chapters, history and follows cascade.
func (repository *sqliteRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, comicTable.Table, comicTable.ID)

	result, err := repository.db.ExecContext(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Comic")
	}
	return expectAffected(result)
}

// IncrementViews adds one to the view counter.
func (repository *sqliteRepository) IncrementViews(context context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %[1]s SET %[2]s = %[2]s + 1 WHERE %[3]s = ?`,
		comicTable.Table, comicTable.Views, comicTable.ID)

	result, err := repository.db.ExecContext(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Comic")
	}
	return expectAffected(result)
}

// ChapterNumbers lists the distinct chapter numbers of a comic, ascending.
func (repository *sqliteRepository) ChapterNumbers(context context.Context, id int64) ([]float64, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM %s WHERE %s = ? ORDER BY %s ASC`,
		chapterTable.ChapterNumber, chapterTable.Table, chapterTable.ComicID, chapterTable.ChapterNumber)

	rows, err := repository.db.QueryContext(context, query, id)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter")
	}
	defer rows.Close()

	numbers := make([]float64, 0)
	for rows.Next() {
		var number float64
		if err := rows.Scan(&number); err != nil {
			return nil, dberr.Wrap(err, "Chapter")
		}
		numbers = append(numbers, number)
	}
	return numbers, dberr.Wrap(rows.Err(), "Chapter")
}

// expectAffected maps a zero-row write to NOT_FOUND.
func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return dberr.Wrap(err, "Comic")
	}
	if affected == 0 {
		return dberr.Wrap(sql.ErrNoRows, "Comic")
	}
	return nil
}
