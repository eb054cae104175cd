// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlite opens the single-file catalog database and provides the small
// helpers every repository shares (transactions, timestamps, clock).
//
// # Architecture
//
// This package is part of the Infrastructure layer. Repositories receive the
// returned [*sql.DB] and never open connections themselves.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

const (
	// busyTimeoutMillis lets a writer wait for the lock instead of failing with SQLITE_BUSY.
	busyTimeoutMillis = 5000
	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second
)

/*
Open creates (if needed) and opens the catalog database at path.

Every pooled connection gets WAL journaling, foreign keys and a busy timeout
through the DSN, so pragmas never depend on which connection serves a query.

Parameters:
  - ctx: context for the initial ping
  - path: filesystem path of the database file
  - logger: structured logger for connection events

Returns:
  - *sql.DB: the ready handle
  - error: directory, open or ping failure
*/
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// One writer at a time; readers share the same connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(0)

	if err := Ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite_database_opened", slog.String("path", path))
	return db, nil
}

// DSN builds the modernc connection string for path.
func DSN(path string) string {
	return "file:" + filepath.ToSlash(path) +
		fmt.Sprintf("?_pragma=busy_timeout(%d)", busyTimeoutMillis) +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)"
}

// Ping verifies that the database handle is healthy.
func Ping(ctx context.Context, db *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}
