// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package health provides the liveness and readiness handlers shared by both services.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
)

// checkTimeout bounds a single readiness check.
const checkTimeout = 2 * time.Second

// Check is one named readiness dependency.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Handlers serves /health and /ready.
type Handlers struct {
	checks []Check
	extra  func() map[string]any
	now    func() time.Time
	logger *slog.Logger
}

// New creates the probe handlers. extra adds fields to the /health body and may be nil.
func New(logger *slog.Logger, extra func() map[string]any, checks ...Check) *Handlers {
	return &Handlers{checks: checks, extra: extra, now: time.Now, logger: logger}
}

// Liveness handles GET /health. It answers 200 while the process is alive.
func (handlers *Handlers) Liveness(writer http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		constants.FieldStatus: "ok",
		"timestamp":           handlers.now().UTC().Format(time.RFC3339Nano),
	}
	if handlers.extra != nil {
		for key, value := range handlers.extra() {
			body[key] = value
		}
	}
	respond.JSON(writer, http.StatusOK, body)
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Readiness handles GET /ready. Any failing check turns the answer into 503.
func (handlers *Handlers) Readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handlers.checks))
	ready := true

	for _, check := range handlers.checks {
		ctx, cancel := context.WithTimeout(request.Context(), checkTimeout)
		err := check.Run(ctx)
		cancel()

		result := checkResult{Name: check.Name, IsOK: err == nil}
		if err != nil {
			ready = false
			result.Error = err.Error()
			handlers.logger.Error("readiness_check_failed", slog.String("dependency", check.Name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	respond.JSON(writer, code, map[string]any{
		constants.FieldStatus:  status,
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
		constants.FieldChecks:  results,
	})
}
