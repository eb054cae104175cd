// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package imageserver wires the asset store and the folder browser into the
image [http.Server].

Only GET /images/* and the probes are public. Every other route sits behind
the admin token scheme, which is checked before a handler touches the disk.
*/
package imageserver

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/comicshelf/internal/asset"
	"github.com/taibuivan/comicshelf/internal/asset/browser"
	"github.com/taibuivan/comicshelf/internal/platform/config"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/health"
	"github.com/taibuivan/comicshelf/internal/platform/middleware"
)

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer builds the image server around store.
func NewServer(cfg *config.ImageServer, log *slog.Logger, admins middleware.TokenVerifier, store *asset.Store) *Server {
	return &Server{
		log: log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           NewRouter(cfg, log, admins, store),
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter returns the fully wired image router.
func NewRouter(cfg *config.ImageServer, log *slog.Logger, admins middleware.TokenVerifier, store *asset.Store) *chi.Mux {
	assets := asset.NewHandler(store)
	folders := browser.NewHandler(browser.New(store), store)
	probes := health.New(log, func() map[string]any {
		return map[string]any{"uploadDir": store.Root()}
	}, health.Check{Name: "upload_dir", Run: func(context.Context) error {
		_, err := os.Stat(store.Root())
		return err
	}})

	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(chimw.CleanPath)
	r.Use(middleware.RequestID())
	r.Use(middleware.ClientIP(cfg.TrustedProxyHops))
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Metrics(constants.ImageServiceName))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// # Public Endpoints
	r.Get("/health", probes.Liveness)
	r.Get("/ready", probes.Readiness)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/images/*", assets.ServeImage())

	// # Admin Endpoints
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticate(admins))
		admin.Use(middleware.RequireAdmin)

		assets.Register(admin)
		folders.Register(admin)
	})

	return r
}

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight uploads.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
