// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicshelf/internal/platform/metrics"
)

// Metrics records request counts and latency labelled by the matched chi route
// pattern, so path parameters never inflate label cardinality.
//
// Mount it on the root router, before any sub-router.
func Metrics(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()
			recorder := record(writer)

			next.ServeHTTP(recorder, request)

			route := "unmatched"
			if routeCtx := chi.RouteContext(request.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			metrics.HTTPRequestsTotal.
				WithLabelValues(service, request.Method, route, strconv.Itoa(recorder.status)).
				Inc()
			metrics.HTTPRequestDuration.
				WithLabelValues(service, request.Method, route).
				Observe(time.Since(start).Seconds())
		})
	}
}
