// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite/sqlitetest"
	"github.com/taibuivan/comicshelf/internal/users/library"
	"github.com/taibuivan/comicshelf/pkg/pagination"
	"github.com/taibuivan/comicshelf/pkg/pointer"
)

var (
	t0      = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type fixture struct {
	service *library.Service
	db      *sql.DB
	clock   *sqlitetest.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := sqlitetest.New(t)
	clock := sqlitetest.NewClock(t0)
	return &fixture{
		service: library.NewService(library.NewSQLiteRepository(db, clock.Now), discard),
		db:      db,
		clock:   clock,
	}
}

func (f *fixture) user(t *testing.T, name string) int64 {
	t.Helper()
	result, err := f.db.Exec(`INSERT INTO users (username, email, password_hash) VALUES (?, ?, 'x')`, name, name+"@example.com")
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func (f *fixture) comic(t *testing.T, slug string) int64 {
	t.Helper()
	result, err := f.db.Exec(`INSERT INTO comics (title, slug, author, status) VALUES (?, ?, 'Someone', 'completed')`, "Title "+slug, slug)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func comicIDs[T any](items []*T, id func(*T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func historyID(entry *library.HistoryEntry) int64 { return entry.ComicID }
func followID(follow *library.Follow) int64        { return follow.ComicID }

func TestRecordRead_UpsertsAndOrdersNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := f.user(t, "reader")
	first, second := f.comic(t, "first"), f.comic(t, "second")

	require.NoError(t, f.service.RecordRead(ctx, reader, library.RecordInput{ComicID: first, ChapterNumber: pointer.To(1.0)}))
	f.clock.Advance(time.Minute)
	require.NoError(t, f.service.RecordRead(ctx, reader, library.RecordInput{ComicID: second, ChapterNumber: pointer.To(4.5)}))
	f.clock.Advance(time.Minute)
	require.NoError(t, f.service.RecordRead(ctx, reader, library.RecordInput{ComicID: first, ChapterNumber: pointer.To(2.0)}))

	entries, total, err := f.service.History(ctx, reader, pagination.Params{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []int64{first, second}, comicIDs(entries, historyID))

	latest := entries[0]
	require.NotNil(t, latest.ChapterNumber)
	assert.Equal(t, 2.0, *latest.ChapterNumber)
	assert.Equal(t, t0.Add(2*time.Minute), latest.ReadAt)
	assert.Equal(t, "first", latest.Slug)
	assert.Equal(t, "Someone", latest.Author)

	page, total, err := f.service.History(ctx, reader, pagination.Params{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []int64{second}, comicIDs(page, historyID))
}

func TestRecordRead_Rejects(t *testing.T) {
	f := newFixture(t)
	reader := f.user(t, "reader")
	ctx := context.Background()

	err := f.service.RecordRead(ctx, reader, library.RecordInput{ComicID: 404})
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	err = f.service.RecordRead(ctx, reader, library.RecordInput{ComicID: 0})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	err = f.service.RecordRead(ctx, reader, library.RecordInput{ComicID: 1, ChapterNumber: pointer.To(-1.0)})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

func TestHistory_RemoveAndClearAreScopedToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	one, two := f.comic(t, "one"), f.comic(t, "two")

	for _, reader := range []int64{alice, bob} {
		for _, comicID := range []int64{one, two} {
			require.NoError(t, f.service.RecordRead(ctx, reader, library.RecordInput{ComicID: comicID}))
		}
	}

	require.NoError(t, f.service.RemoveHistory(ctx, alice, one))
	require.NoError(t, f.service.RemoveHistory(ctx, alice, one))
	entries, _, err := f.service.History(ctx, alice, pagination.Params{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, []int64{two}, comicIDs(entries, historyID))

	require.NoError(t, f.service.ClearHistory(ctx, alice))
	_, total, err := f.service.History(ctx, alice, pagination.Params{Limit: 50})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = f.service.History(ctx, bob, pagination.Params{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestFollows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := f.user(t, "reader")
	older, newer := f.comic(t, "older"), f.comic(t, "newer")

	require.NoError(t, f.service.Follow(ctx, reader, older))
	f.clock.Advance(time.Hour)
	require.NoError(t, f.service.Follow(ctx, reader, newer))
	f.clock.Advance(time.Hour)
	require.NoError(t, f.service.Follow(ctx, reader, older))

	follows, err := f.service.Follows(ctx, reader)
	require.NoError(t, err)
	assert.Equal(t, []int64{newer, older}, comicIDs(follows, followID))
	assert.Equal(t, t0, follows[1].FollowedAt)
	assert.Equal(t, "completed", follows[0].Status)

	following, err := f.service.IsFollowing(ctx, reader, older)
	require.NoError(t, err)
	assert.True(t, following)

	require.NoError(t, f.service.Unfollow(ctx, reader, older))
	require.NoError(t, f.service.Unfollow(ctx, reader, older))
	following, err = f.service.IsFollowing(ctx, reader, older)
	require.NoError(t, err)
	assert.False(t, following)

	assert.True(t, apperr.HasCode(f.service.Follow(ctx, reader, 999), "NOT_FOUND"))
}

func TestLibrary_FollowsComicDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := f.user(t, "reader")
	doomed := f.comic(t, "doomed")

	require.NoError(t, f.service.Follow(ctx, reader, doomed))
	require.NoError(t, f.service.RecordRead(ctx, reader, library.RecordInput{ComicID: doomed}))

	_, err := f.db.Exec(`DELETE FROM comics WHERE id = ?`, doomed)
	require.NoError(t, err)

	follows, err := f.service.Follows(ctx, reader)
	require.NoError(t, err)
	assert.Empty(t, follows)

	_, total, err := f.service.History(ctx, reader, pagination.Params{Limit: 50})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSync_MergesAndSkipsUnknownComics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := f.user(t, "reader")
	known, stored := f.comic(t, "known"), f.comic(t, "stored")

	require.NoError(t, f.service.Follow(ctx, reader, stored))
	f.clock.Advance(time.Minute)

	result, err := f.service.Sync(ctx, reader, library.SyncInput{
		History: []library.SyncHistoryItem{
			{ComicID: known},
			{ComicID: 9999, ChapterNumber: pointer.To(3.0)},
		},
		Follows: []library.SyncFollowItem{{ID: known}, {ID: 9999}, {ID: stored}},
	})
	require.NoError(t, err)

	require.Len(t, result.History, 1)
	assert.Equal(t, known, result.History[0].ComicID)
	require.NotNil(t, result.History[0].ChapterNumber)
	assert.Equal(t, library.DefaultChapterNumber, *result.History[0].ChapterNumber)

	assert.Equal(t, []int64{known, stored}, comicIDs(result.Follows, followID))
}

func TestSync_RejectsOversizedPayload(t *testing.T) {
	f := newFixture(t)
	reader := f.user(t, "reader")

	_, err := f.service.Sync(context.Background(), reader, library.SyncInput{
		Follows: make([]library.SyncFollowItem, library.MaxSyncEntries+1),
	})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}
