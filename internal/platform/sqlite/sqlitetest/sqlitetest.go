// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlitetest opens throwaway, fully migrated catalog databases for tests.
package sqlitetest

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/internal/platform/migration"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite"
)

// New returns a migrated database under t.TempDir(), closed on cleanup.
func New(t testing.TB) *sql.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "catalog.db")

	require.NoError(t, migration.RunUp(path, logger))

	db, err := sqlite.Open(context.Background(), path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// Clock is a manually advanced clock for repositories and caches.
type Clock struct {
	now time.Time
}

// NewClock starts a clock at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.now = c.now.Add(d) }
