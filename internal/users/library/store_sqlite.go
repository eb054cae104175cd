// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taibuivan/comicshelf/internal/platform/database/schema"
	"github.com/taibuivan/comicshelf/internal/platform/dberr"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite"
	"github.com/taibuivan/comicshelf/pkg/pointer"
)

// # SQLite Repository

type sqliteRepository struct {
	db    *sql.DB
	clock sqlite.Clock
}

// NewSQLiteRepository constructs a SQLite backed library store.
func NewSQLiteRepository(db *sql.DB, clock sqlite.Clock) Repository {
	return &sqliteRepository{db: db, clock: clock}
}

var (
	historyTable = schema.UserHistory
	followTable  = schema.UserFollows
	comicTable   = schema.Comics
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// # History

// ListHistory implements [Repository].
func (repository *sqliteRepository) ListHistory(context context.Context, userID int64, limit, offset int) ([]*HistoryEntry, int, error) {
	var total int
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s h JOIN %s c ON c.%s = h.%s WHERE h.%s = ?`,
		historyTable.Table, comicTable.Table, comicTable.ID, historyTable.ComicID, historyTable.UserID,
	)
	if err := repository.db.QueryRowContext(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "History")
	}

	query := fmt.Sprintf(`
		SELECT h.%s, h.%s, h.%s, c.%s, c.%s, c.%s, c.%s
		FROM %s h
		JOIN %s c ON c.%s = h.%s
		WHERE h.%s = ?
		ORDER BY h.%s DESC, h.%s DESC
		LIMIT ? OFFSET ?`,
		historyTable.ComicID, historyTable.ChapterNumber, historyTable.ReadAt,
		comicTable.Title, comicTable.Slug, comicTable.CoverURL, comicTable.Author,
		historyTable.Table,
		comicTable.Table, comicTable.ID, historyTable.ComicID,
		historyTable.UserID,
		historyTable.ReadAt, historyTable.ID,
	)

	rows, err := repository.db.QueryContext(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "History")
	}
	defer rows.Close()

	entries := make([]*HistoryEntry, 0)
	for rows.Next() {
		var (
			entry   HistoryEntry
			number  sql.NullFloat64
			readAt  sqlite.NullTime
			summary nullableSummary
		)
		if err := rows.Scan(&entry.ComicID, &number, &readAt, &entry.Title, &entry.Slug, &summary.coverURL, &summary.author); err != nil {
			return nil, 0, dberr.Wrap(err, "History")
		}
		if number.Valid {
			value := number.Float64
			entry.ChapterNumber = &value
		}
		entry.ReadAt = readAt.Time
		summary.apply(&entry.ComicSummary)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "History")
	}
	return entries, total, nil
}

// RecordRead implements [Repository].
func (repository *sqliteRepository) RecordRead(context context.Context, userID, comicID int64, chapterNumber float64) error {
	recorded, err := repository.recordRead(context, repository.db, userID, comicID, chapterNumber)
	if err != nil {
		return err
	}
	if !recorded {
		return dberr.Wrap(sql.ErrNoRows, "Comic")
	}
	return nil
}

// recordRead reports false when the comic does not exist.
func (repository *sqliteRepository) recordRead(ctx context.Context, exec execer, userID, comicID int64, chapterNumber float64) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		SELECT ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM %s WHERE %s = ?)
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = excluded.%s,
			%s = excluded.%s`,
		historyTable.Table, historyTable.UserID, historyTable.ComicID, historyTable.ChapterNumber, historyTable.ReadAt,
		comicTable.Table, comicTable.ID,
		historyTable.UserID, historyTable.ComicID,
		historyTable.ChapterNumber, historyTable.ChapterNumber,
		historyTable.ReadAt, historyTable.ReadAt,
	)

	result, err := exec.ExecContext(ctx, query, userID, comicID, chapterNumber, repository.clock.Stamp(), comicID)
	if err != nil {
		return false, dberr.Wrap(err, "History")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, dberr.Wrap(err, "History")
	}
	return affected > 0, nil
}

// RemoveHistory implements [Repository].
func (repository *sqliteRepository) RemoveHistory(context context.Context, userID, comicID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND %s = ?`,
		historyTable.Table, historyTable.UserID, historyTable.ComicID)

	_, err := repository.db.ExecContext(context, query, userID, comicID)
	return dberr.Wrap(err, "History")
}

// ClearHistory implements [Repository].
func (repository *sqliteRepository) ClearHistory(context context.Context, userID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, historyTable.Table, historyTable.UserID)

	_, err := repository.db.ExecContext(context, query, userID)
	return dberr.Wrap(err, "History")
}

// # Follows

// ListFollows implements [Repository].
func (repository *sqliteRepository) ListFollows(context context.Context, userID int64) ([]*Follow, error) {
	query := fmt.Sprintf(`
		SELECT f.%s, f.%s, c.%s, c.%s, c.%s, c.%s, c.%s
		FROM %s f
		JOIN %s c ON c.%s = f.%s
		WHERE f.%s = ?
		ORDER BY f.%s DESC, f.%s DESC`,
		followTable.ComicID, followTable.FollowedAt,
		comicTable.Title, comicTable.Slug, comicTable.CoverURL, comicTable.Author, comicTable.Status,
		followTable.Table,
		comicTable.Table, comicTable.ID, followTable.ComicID,
		followTable.UserID,
		followTable.FollowedAt, followTable.ID,
	)

	rows, err := repository.db.QueryContext(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Follow")
	}
	defer rows.Close()

	follows := make([]*Follow, 0)
	for rows.Next() {
		var (
			follow     Follow
			followedAt sqlite.NullTime
			summary    nullableSummary
		)
		if err := rows.Scan(&follow.ComicID, &followedAt, &follow.Title, &follow.Slug, &summary.coverURL, &summary.author, &follow.Status); err != nil {
			return nil, dberr.Wrap(err, "Follow")
		}
		follow.FollowedAt = followedAt.Time
		summary.apply(&follow.ComicSummary)
		follows = append(follows, &follow)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Follow")
	}
	return follows, nil
}

// Follow implements [Repository].
func (repository *sqliteRepository) Follow(context context.Context, userID, comicID int64) error {
	if err := repository.follow(context, repository.db, userID, comicID); err != nil {
		return err
	}

	exists, err := comicExists(context, repository.db, comicID)
	if err != nil {
		return err
	}
	if !exists {
		return dberr.Wrap(sql.ErrNoRows, "Comic")
	}
	return nil
}

func (repository *sqliteRepository) follow(ctx context.Context, exec execer, userID, comicID int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		SELECT ?, ?, ? WHERE EXISTS (SELECT 1 FROM %s WHERE %s = ?)
		ON CONFLICT (%s, %s) DO NOTHING`,
		followTable.Table, followTable.UserID, followTable.ComicID, followTable.FollowedAt,
		comicTable.Table, comicTable.ID,
		followTable.UserID, followTable.ComicID,
	)

	_, err := exec.ExecContext(ctx, query, userID, comicID, repository.clock.Stamp(), comicID)
	return dberr.Wrap(err, "Follow")
}

// Unfollow implements [Repository].
func (repository *sqliteRepository) Unfollow(context context.Context, userID, comicID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND %s = ?`,
		followTable.Table, followTable.UserID, followTable.ComicID)

	_, err := repository.db.ExecContext(context, query, userID, comicID)
	return dberr.Wrap(err, "Follow")
}

// IsFollowing implements [Repository].
func (repository *sqliteRepository) IsFollowing(context context.Context, userID, comicID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = ? AND %s = ?)`,
		followTable.Table, followTable.UserID, followTable.ComicID)

	var following bool
	if err := repository.db.QueryRowContext(context, query, userID, comicID).Scan(&following); err != nil {
		return false, dberr.Wrap(err, "Follow")
	}
	return following, nil
}

// # Sync

// Merge implements [Repository].
func (repository *sqliteRepository) Merge(context context.Context, userID int64, input SyncInput) error {
	return sqlite.WithTx(context, repository.db, func(tx *sql.Tx) error {
		for _, item := range input.History {
			number := pointer.Fallback(item.ChapterNumber, DefaultChapterNumber)
			if _, err := repository.recordRead(context, tx, userID, item.ComicID, number); err != nil {
				return err
			}
		}

		for _, item := range input.Follows {
			if err := repository.follow(context, tx, userID, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// # Helpers

func comicExists(ctx context.Context, exec execer, comicID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = ?)`, comicTable.Table, comicTable.ID)

	var exists bool
	if err := exec.QueryRowContext(ctx, query, comicID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Comic")
	}
	return exists, nil
}

// nullableSummary holds the optional comic columns while scanning.
type nullableSummary struct {
	coverURL sql.NullString
	author   sql.NullString
}

func (s nullableSummary) apply(summary *ComicSummary) {
	summary.CoverURL = s.coverURL.String
	summary.Author = s.author.String
}
