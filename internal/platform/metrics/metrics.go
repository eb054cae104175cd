// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics declares the Prometheus collectors shared by both services.
//
// Collectors are registered on the default registry at init, so `/metrics`
// served through promhttp exposes them without extra wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// # HTTP

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_http_requests_total",
			Help: "HTTP requests by service, route pattern and status code",
		},
		[]string{"service", "method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comicshelf_http_request_duration_seconds",
			Help:    "HTTP request latency by service and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "route"},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_rate_limit_hits_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"scope"},
	)

	BotRequestsBlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comicshelf_bot_requests_blocked_total",
			Help: "Requests rejected by the user agent deny-list",
		},
	)

	// # Query cache

	QueryCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_query_cache_hits_total",
			Help: "Query cache hits by entry kind",
		},
		[]string{"kind"},
	)

	QueryCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_query_cache_misses_total",
			Help: "Query cache misses by entry kind",
		},
		[]string{"kind"},
	)

	QueryCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_query_cache_invalidations_total",
			Help: "Query cache invalidations by outcome",
		},
		[]string{"outcome"},
	)

	// # Catalog

	ComicViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_comic_views_total",
			Help: "View events by outcome (counted or deduplicated)",
		},
		[]string{"outcome"},
	)

	AssetCleanupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_asset_cleanup_failures_total",
			Help: "Best-effort asset deletions that failed after a catalog delete",
		},
		[]string{"kind"},
	)

	// # Asset store

	ImagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_images_processed_total",
			Help: "Images written by the processing pipeline by output format",
		},
		[]string{"format"},
	)

	ImageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "comicshelf_image_processing_duration_seconds",
			Help:    "Time spent decoding, resizing and encoding one image",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// # Upstream

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comicshelf_upstream_requests_total",
			Help: "Outbound requests by upstream and outcome",
		},
		[]string{"upstream", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "comicshelf_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
