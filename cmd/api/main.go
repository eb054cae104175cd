// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the catalog API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open SQLite and run database migrations (idempotent).
//  4. Choose the query cache backend (Redis when configured).
//  5. Build both token schemes.
//  6. Wire domain services and handlers, then warm the cache.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/comicshelf/internal/api"
	"github.com/taibuivan/comicshelf/internal/assetclient"
	"github.com/taibuivan/comicshelf/internal/core/chapter"
	"github.com/taibuivan/comicshelf/internal/core/comic"
	"github.com/taibuivan/comicshelf/internal/huggingface"
	"github.com/taibuivan/comicshelf/internal/platform/config"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/health"
	"github.com/taibuivan/comicshelf/internal/platform/migration"
	redisstore "github.com/taibuivan/comicshelf/internal/platform/redis"
	"github.com/taibuivan/comicshelf/internal/platform/sec"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite"
	"github.com/taibuivan/comicshelf/internal/querycache"
	"github.com/taibuivan/comicshelf/internal/users/auth"
	"github.com/taibuivan/comicshelf/internal/users/library"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadAPI()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("database", cfg.DatabasePath),
	)

	if cfg.UsesDefaultAdminCredentials() {
		log.Warn("default_admin_credentials_in_use",
			slog.String("hint", "set ADMIN_USERNAME and ADMIN_PASSWORD"),
		)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. SQLite ─────────────────────────────────────────────────────────
	db, err := sqlite.Open(startupCtx, cfg.DatabasePath, log)
	must(log, err, "open database")
	defer func() {
		log.Info("closing_database")
		if cerr := db.Close(); cerr != nil {
			log.Error("database_close_error", slog.Any("error", cerr))
		}
	}()

	must(log, migration.RunUp(cfg.DatabasePath, log), "run migrations")

	checks := []health.Check{
		{Name: "sqlite", Run: func(ctx context.Context) error { return sqlite.Ping(ctx, db) }},
	}

	// ── 4. Query Cache ────────────────────────────────────────────────────
	var backend querycache.Backend = querycache.NewMemory(time.Now)
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}()

		backend = querycache.NewRedis(rdb, constants.RedisPrefixQueryCache)
		checks = append(checks, health.Check{Name: "redis", Run: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}})
	}
	cache := querycache.New(backend, cfg.CacheTTL, log)

	// ── 5. Token Schemes ──────────────────────────────────────────────────
	userTokens, err := sec.NewTokenService(cfg.UserJWTSecret, constants.AuthIssuer, sec.ScopeUser, constants.UserTokenTTL)
	must(log, err, "initialize user tokens")
	adminTokens, err := sec.NewTokenService(cfg.AdminJWTSecret, constants.AuthIssuer, sec.ScopeAdmin, constants.AdminTokenTTL)
	must(log, err, "initialize admin tokens")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	assets := assetclient.New(cfg.ImageServerURL, nil, log)
	views := comic.NewViewTracker(cfg.ViewCooldown, constants.ViewTrackerSweepThreshold, time.Now)

	comicService := comic.NewService(comic.NewSQLiteRepository(db, time.Now), cache, assets, views, log)
	chapterService := chapter.NewService(chapter.NewSQLiteRepository(db, time.Now), cache, assets, cfg.TikTokImageBaseURL, log)
	authService := auth.NewService(auth.NewSQLiteRepository(db, time.Now), userTokens, adminTokens,
		auth.AdminCredentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword}, log)
	libraryService := library.NewService(library.NewSQLiteRepository(db, time.Now), log)
	hfClient := huggingface.New(huggingface.Options{BaseURL: cfg.HuggingFaceBaseURL}, log)

	if err := comicService.Warmup(startupCtx); err != nil {
		log.Warn("cache_warmup_failed", slog.Any("error", err))
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Health:      health.New(log, nil, checks...),
		Auth:        auth.NewHandler(authService),
		Library:     library.NewHandler(libraryService),
		Comic:       comic.NewHandler(comicService),
		Chapter:     chapter.NewHandler(chapterService),
		HuggingFace: huggingface.NewHandler(hfClient),
	}
	server := api.NewServer(cfg, log, api.Verifiers{Users: userTokens, Admins: adminTokens}, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	// Let queued image deletions finish before the process exits.
	assets.Wait()
	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.APIServiceName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// Only used during startup wiring.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
