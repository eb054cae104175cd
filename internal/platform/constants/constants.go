// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values shared by both services.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP servers.
  - Rate Limiting: Sliding window sizes per route class.
  - Security: Token issuer and lifetimes.
  - Asset Layout: Fixed top-level folders of the upload root.
*/
package constants

import "time"

// # Metadata

const (
	AppName            = "comicshelf"
	APIServiceName     = "comicshelf-api"
	ImageServiceName   = "comicshelf-images"
	AppVersion         = "0.1.0-dev"
	ServiceDescription = "comic catalog and image store"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Uploads of several hundred pages need a generous budget.
	DefaultReadTimeout = 2 * time.Minute

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 5 * time.Minute

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 5 * time.Second

	// GlobalRequestTimeout is the deadline for catalog API requests.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// AssetCleanupTimeout bounds each best-effort call to the image server.
	AssetCleanupTimeout = 15 * time.Second
)

// # Rate Limiting

const (
	// APIRateLimit is the number of requests allowed per IP within APIRateWindow.
	APIRateLimit  = 500
	APIRateWindow = 15 * time.Minute

	// AuthRateLimit applies to the login endpoints of both token schemes.
	AuthRateLimit  = 20
	AuthRateWindow = time.Hour
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in issued tokens.
	AuthIssuer = "comicshelf"

	// UserTokenTTL is the lifetime of reader tokens.
	UserTokenTTL = 7 * 24 * time.Hour

	// AdminTokenTTL is the lifetime of admin panel tokens.
	AdminTokenTTL = 12 * time.Hour

	// MinPasswordLength is enforced at registration.
	MinPasswordLength = 6
)

// # Catalog

const (
	// DefaultPageLimit applies when a list route has no specific default.
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// RecentPreviewChapters is how many chapters each recent comic carries inline.
	RecentPreviewChapters = 3

	// FeaturedCount and FeaturedFromTop shape the featured carousel.
	FeaturedCount   = 10
	FeaturedFromTop = 30

	// ViewTrackerSweepThreshold triggers a sweep of expired view entries.
	ViewTrackerSweepThreshold = 10000

	// LegacyServerName labels images stored before server groups existed.
	LegacyServerName = "Server 1"

	// TikTokScheme prefixes image ids resolved against the TikTok CDN base.
	TikTokScheme = "tiktok:"
)

// # Asset Layout

const (
	FolderCovers   = "covers"
	FolderChapters = "chapters"
	FolderTemp     = "temp"

	// ImageURLPrefix is where the image server publishes the upload root.
	ImageURLPrefix = "/images/"

	// StaticCacheControl is sent with every served image (30 days).
	StaticCacheControl = "public, max-age=2592000"

	// JPEGQuality is used when WebP conversion is disabled.
	JPEGQuality = 90
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixQueryCache = "catalog:cache:"
)
