// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package assetclient deletes image server assets after catalog deletes.

Cleanup is best effort. The catalog database is the source of truth, so a
failed or lost delete leaves orphaned files on disk and nothing else: errors go
to the log and to a counter, never to the caller. Tasks run after the database
commit in their own goroutine and forward the acting admin's bearer token,
because the image server accepts admin tokens only.

A crash between the commit and the delete loses the task. That leak is accepted.
*/
package assetclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/metrics"
	"github.com/taibuivan/comicshelf/pkg/convert"
)

// # Paths

// ChapterFolderPath is the image server route that removes one chapter's pages.
func ChapterFolderPath(slug string, number float64) string {
	return "/" + constants.FolderChapters + "/" + slug + "/" + convert.FormatChapterNumber(number)
}

// CoverPath returns the delete route for an internally hosted cover and false
// for external URLs, which are not ours to remove.
func CoverPath(coverURL string) (string, bool) {
	if !strings.HasPrefix(coverURL, constants.ImageURLPrefix) {
		return "", false
	}
	return coverURL, true
}

// # Dispatcher

// Dispatcher sends DELETE requests to the image server in the background.
type Dispatcher struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	pending sync.WaitGroup
}

// New builds a [Dispatcher] targeting baseURL (e.g. http://localhost:3002).
func New(baseURL string, client *http.Client, logger *slog.Logger) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: constants.AssetCleanupTimeout}
	}
	return &Dispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

/*
Dispatch deletes every path in order on a background goroutine and returns
immediately.

The goroutine keeps the request's values (bearer token, logger) but not its
cancellation, so it survives the response being written.
*/
func (d *Dispatcher) Dispatch(ctx context.Context, paths ...string) {
	if len(paths) == 0 {
		return
	}

	token := ctxutil.GetBearer(ctx)
	detached := context.WithoutCancel(ctx)

	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		for _, path := range paths {
			d.delete(detached, token, path)
		}
	}()
}

// Wait blocks until every dispatched task has finished. Used at shutdown.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

func (d *Dispatcher) delete(ctx context.Context, token, path string) {
	logger := ctxutil.GetLogger(ctx)

	ctx, cancel := context.WithTimeout(ctx, constants.AssetCleanupTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, d.baseURL+path, nil)
	if err != nil {
		d.fail(logger, "request", path, err)
		return
	}
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	response, err := d.client.Do(request)
	if err != nil {
		d.fail(logger, "transport", path, err)
		return
	}
	_ = response.Body.Close()

	switch {
	case response.StatusCode < 300:
		logger.Debug("asset_cleanup_done", slog.String("path", path))
	case response.StatusCode == http.StatusNotFound:
		// Already gone.
		logger.Debug("asset_cleanup_missing", slog.String("path", path))
	default:
		d.fail(logger, "status", path, fmt.Errorf("image server responded %d", response.StatusCode))
	}
}

func (d *Dispatcher) fail(logger *slog.Logger, kind, path string, err error) {
	metrics.AssetCleanupFailures.WithLabelValues(kind).Inc()
	logger.Warn("asset_cleanup_failed",
		slog.String("kind", kind),
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
}
