// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires the catalog handlers, the middleware chain and both token
schemes into a runnable [http.Server].

Route groups:

  - /api/auth, /api/user: reader token scheme.
  - /api/admin/*: admin token scheme (login excepted).
  - everything else under /api: public, rate limited and bot filtered.
  - /health, /ready, /metrics: unauthenticated infrastructure probes.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/comicshelf/internal/core/chapter"
	"github.com/taibuivan/comicshelf/internal/core/comic"
	"github.com/taibuivan/comicshelf/internal/huggingface"
	"github.com/taibuivan/comicshelf/internal/platform/config"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/health"
	"github.com/taibuivan/comicshelf/internal/platform/middleware"
	"github.com/taibuivan/comicshelf/internal/platform/sec"
	"github.com/taibuivan/comicshelf/internal/users/auth"
	"github.com/taibuivan/comicshelf/internal/users/library"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Handlers groups every handler set the catalog API mounts.
type Handlers struct {
	Health      *health.Handlers
	Auth        *auth.Handler
	Library     *library.Handler
	Comic       *comic.Handler
	Chapter     *chapter.Handler
	HuggingFace *huggingface.Handler
}

// Verifiers holds one token verifier per scheme.
type Verifiers struct {
	Users  middleware.TokenVerifier
	Admins middleware.TokenVerifier
}

// # Server Initialization

// NewServer builds the router with the full middleware chain and every route group.
func NewServer(cfg *config.API, log *slog.Logger, verifiers Verifiers, h Handlers) *Server {
	router := NewRouter(cfg, log, verifiers, h)

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// NewRouter returns the fully wired catalog router. Exposed for end-to-end tests.
func NewRouter(cfg *config.API, log *slog.Logger, verifiers Verifiers, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(chimw.CleanPath)
	r.Use(middleware.RequestID())
	r.Use(middleware.ClientIP(cfg.TrustedProxyHops))
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Metrics(constants.APIServiceName))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))

	// # Infrastructure Endpoints
	r.Get("/health", h.Health.Liveness)
	r.Get("/ready", h.Health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.BlockBots(cfg.BlockBots))
		api.Use(middleware.RateLimit("api", constants.APIRateLimit, constants.APIRateWindow))

		// Public catalog
		api.Mount("/comics", h.Comic.Routes(h.Chapter.ComicRoutes))
		api.Mount("/genres", h.Comic.GenreRoutes())
		api.Mount("/chapters", h.Chapter.Routes())
		api.Mount("/config", h.Chapter.ConfigRoutes())
		api.Mount("/huggingface", h.HuggingFace.Routes())

		// Reader scheme
		api.Route("/auth", func(readers chi.Router) {
			readers.Use(middleware.Authenticate(verifiers.Users))
			readers.Mount("/", h.Auth.Routes())
		})
		api.Route("/user", func(readers chi.Router) {
			readers.Use(middleware.Authenticate(verifiers.Users))
			readers.Mount("/", h.Library.Routes(func(owner chi.Router) {
				owner.With(middleware.RequireRole(sec.RoleGroup)).Get("/comics", h.Comic.OwnedComics)
			}))
		})

		// Admin scheme
		api.Route("/admin", func(admin chi.Router) {
			h.Auth.RegisterAdmin(admin)

			admin.Group(func(guarded chi.Router) {
				guarded.Use(middleware.Authenticate(verifiers.Admins))
				guarded.Use(middleware.RequireAdmin)
				guarded.Mount("/comics", h.Comic.AdminRoutes())
				guarded.Mount("/chapters", h.Chapter.AdminRoutes())
			})
		})
	})

	return r
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
