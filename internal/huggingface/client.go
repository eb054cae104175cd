// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package huggingface lists the images of a public HuggingFace dataset folder.

# Flow

 1. The folder URL is validated against a strict shape before any outbound call.
 2. The dataset tree API is called through a token bucket and a circuit breaker.
 3. Image entries are sorted naturally and mapped to their resolve URLs.

A non-2xx answer from the tree API is proxied as UPSTREAM_ERROR with the same
status. An open breaker answers 503 without calling out.
*/
package huggingface

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/metrics"
	"github.com/taibuivan/comicshelf/pkg/natsort"
	"github.com/taibuivan/comicshelf/pkg/slice"
)

const (
	upstreamName = "huggingface"

	// MaxFolderURLLength bounds the accepted folder URL.
	MaxFolderURLLength = 500

	maxTreeBody = 5 << 20
)

var folderPattern = regexp.MustCompile(
	`^https://huggingface\.co/datasets/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)/tree/([A-Za-z0-9_.-]+)/(.+)$`,
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// # Folder Parsing

// Folder identifies one directory of a dataset repository.
type Folder struct {
	Owner  string
	Repo   string
	Branch string
	Path   string // Unescaped, never contains ".." or "~"
}

// ParseFolderURL validates a dataset folder URL.
//
// Returns VALIDATION_ERROR for anything that is not exactly
// https://huggingface.co/datasets/<owner>/<repo>/tree/<branch>/<path>.
func ParseFolderURL(raw string) (*Folder, error) {
	invalid := apperr.ValidationError("Invalid HuggingFace URL format. Expected: https://huggingface.co/datasets/{owner}/{repo}/tree/{branch}/{path}")

	if raw == "" {
		return nil, apperr.ValidationError("folder_url is required")
	}
	if len(raw) > MaxFolderURLLength {
		return nil, invalid
	}

	match := folderPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, invalid
	}

	folderPath, err := url.PathUnescape(match[4])
	if err != nil {
		return nil, invalid
	}

	for _, part := range []string{match[1], match[2], match[3], folderPath} {
		if strings.Contains(part, "..") || strings.Contains(part, "~") {
			return nil, apperr.ValidationError("Invalid path")
		}
	}

	return &Folder{
		Owner:  match[1],
		Repo:   match[2],
		Branch: match[3],
		Path:   strings.Trim(folderPath, "/"),
	}, nil
}

// escapeSegments percent-encodes each segment of a slash separated path.
func escapeSegments(p string) string {
	return strings.Join(slice.Map(strings.Split(p, "/"), url.PathEscape), "/")
}

// # Client

// Options tunes the outbound behavior of a [Client].
type Options struct {
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64
	Burst             int
	FailureThreshold  uint32        // Consecutive failures that open the breaker
	OpenTimeout       time.Duration // Time spent open before a trial request
}

// Result is the listing returned to the admin panel.
type Result struct {
	FolderURL string   `json:"folder_url"`
	Count     int      `json:"count"`
	ImageURLs []string `json:"image_urls"`
}

type treeEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// statusError is a non-2xx answer from the tree API.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("huggingface: unexpected status %d", e.status)
}

// Client calls the dataset tree API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]treeEntry]
	logger  *slog.Logger
}

// New constructs a [Client]. Zero options fall back to production defaults.
func New(options Options, logger *slog.Logger) *Client {
	if options.HTTPClient == nil {
		options.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if options.RequestsPerSecond <= 0 {
		options.RequestsPerSecond = 2
	}
	if options.Burst <= 0 {
		options.Burst = 5
	}
	if options.FailureThreshold == 0 {
		options.FailureThreshold = 5
	}
	if options.OpenTimeout <= 0 {
		options.OpenTimeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(upstreamName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]treeEntry](gobreaker.Settings{
		Name:        upstreamName,
		MaxRequests: 1,
		Timeout:     options.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= options.FailureThreshold
		},
		// A 4xx means the folder is wrong, not that the upstream is down.
		IsSuccessful: func(err error) bool {
			var status *statusError
			if errors.As(err, &status) {
				return status.status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(options.BaseURL, "/"),
		http:    options.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(options.RequestsPerSecond), options.Burst),
		breaker: breaker,
		logger:  logger,
	}
}

/*
FetchImages lists the images of a dataset folder.

Parameters:
  - folderURL: https://huggingface.co/datasets/<owner>/<repo>/tree/<branch>/<path>

Returns:
  - *Result: naturally ordered resolve URLs
  - error: VALIDATION_ERROR (no outbound call made), UPSTREAM_ERROR with the
    upstream status, or SERVICE_UNAVAILABLE while the breaker is open
*/
func (client *Client) FetchImages(ctx context.Context, folderURL string) (*Result, error) {
	folder, err := ParseFolderURL(folderURL)
	if err != nil {
		return nil, err
	}

	if err := client.limiter.Wait(ctx); err != nil {
		metrics.UpstreamRequests.WithLabelValues(upstreamName, "throttled").Inc()
		return nil, apperr.ServiceUnavailable("HuggingFace request budget exhausted").WithCause(err)
	}

	entries, err := client.breaker.Execute(func() ([]treeEntry, error) {
		return client.tree(ctx, folder)
	})
	if err != nil {
		return nil, client.classify(ctx, err)
	}
	metrics.UpstreamRequests.WithLabelValues(upstreamName, "ok").Inc()

	files := slice.Filter(entries, func(entry treeEntry) bool {
		return entry.Type == "file" && imageExtensions[strings.ToLower(path.Ext(entry.Path))]
	})
	names := slice.Map(files, func(entry treeEntry) string { return entry.Path })
	natsort.Strings(names)

	resolvePrefix := fmt.Sprintf("%s/datasets/%s/%s/resolve/%s/", client.baseURL, folder.Owner, folder.Repo, url.PathEscape(folder.Branch))
	urls := slice.Map(names, func(name string) string { return resolvePrefix + escapeSegments(name) })
	if urls == nil {
		urls = []string{}
	}

	return &Result{FolderURL: folderURL, Count: len(urls), ImageURLs: urls}, nil
}

func (client *Client) tree(ctx context.Context, folder *Folder) ([]treeEntry, error) {
	endpoint := fmt.Sprintf("%s/api/datasets/%s/%s/tree/%s/%s",
		client.baseURL, folder.Owner, folder.Repo, url.PathEscape(folder.Branch), escapeSegments(folder.Path))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, maxTreeBody))
		return nil, &statusError{status: response.StatusCode}
	}

	var entries []treeEntry
	if err := json.NewDecoder(io.LimitReader(response.Body, maxTreeBody)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("huggingface: decode tree: %w", err)
	}
	return entries, nil
}

// classify maps breaker and transport failures onto the error taxonomy.
func (client *Client) classify(ctx context.Context, err error) error {
	logger := ctxutil.GetLogger(ctx)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.UpstreamRequests.WithLabelValues(upstreamName, "rejected").Inc()
		return apperr.ServiceUnavailable("HuggingFace is temporarily unavailable").WithCause(err)
	}

	var status *statusError
	if errors.As(err, &status) {
		metrics.UpstreamRequests.WithLabelValues(upstreamName, "status").Inc()
		logger.WarnContext(ctx, "upstream_error_status",
			slog.String("upstream", upstreamName),
			slog.Int("status", status.status),
		)
		return apperr.Upstream(status.status, fmt.Sprintf("Failed to fetch from HuggingFace: %d", status.status)).WithCause(err)
	}

	metrics.UpstreamRequests.WithLabelValues(upstreamName, "error").Inc()
	logger.WarnContext(ctx, "upstream_request_failed",
		slog.String("upstream", upstreamName),
		slog.String("error", err.Error()),
	)
	return apperr.Upstream(http.StatusBadGateway, "Failed to fetch from HuggingFace").WithCause(err)
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
