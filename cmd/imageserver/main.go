// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command imageserver is the entry point for the image storage service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Prepare the upload root and the image processor.
//  4. Build the admin token verifier.
//  5. Start HTTP server with graceful shutdown.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/comicshelf/internal/asset"
	"github.com/taibuivan/comicshelf/internal/imageserver"
	"github.com/taibuivan/comicshelf/internal/platform/config"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadImageServer()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
	}

	// ── 3. Upload Root ────────────────────────────────────────────────────
	processor := asset.NewProcessor(asset.ProcessorOptions{
		MaxBytes:      cfg.MaxFileSize,
		MaxWidth:      cfg.MaxWidth,
		ConvertToWebP: cfg.ConvertToWebP,
		WebPQuality:   cfg.WebPQuality,
	})
	store, err := asset.NewStore(cfg.UploadDir, processor, cfg.MaxFiles)
	must(log, err, "prepare upload directory")

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("upload_dir", store.Root()),
		slog.String("output_format", processor.OutputExt()),
	)

	// ── 4. Admin Tokens ───────────────────────────────────────────────────
	adminTokens, err := sec.NewTokenService(cfg.AdminJWTSecret, constants.AuthIssuer, sec.ScopeAdmin, constants.AdminTokenTTL)
	must(log, err, "initialize admin tokens")

	// ── 5. HTTP Server ────────────────────────────────────────────────────
	server := imageserver.NewServer(cfg, log, adminTokens, store)

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

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.ImageServiceName))
}

func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure", slog.String("step", step), slog.Any("error", err))
		os.Exit(1)
	}
}
