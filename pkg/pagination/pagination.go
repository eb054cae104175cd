// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared limit/offset handling for list endpoints.
//
// # Overview
//
// Clients may send any `limit` and `offset`. Bad values are never rejected:
// they are replaced with the route default (limit) or zero (offset).
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if a route sets none.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page.
	MaxLimit = 100
)

// Params holds the sanitized limit and offset of a list request.
type Params struct {
	Limit  int
	Offset int
}

// FromRequest parses "limit" and "offset" from the query string.
//
// # Clamping
//
// A limit that is missing, unparseable or outside [1, MaxLimit] becomes
// defaultLimit. An offset that is missing, unparseable or negative becomes 0.
func FromRequest(r *http.Request, defaultLimit int) Params {
	if defaultLimit < 1 || defaultLimit > MaxLimit {
		defaultLimit = DefaultLimit
	}

	limit := parseIntParam(r, "limit", defaultLimit)
	if limit < 1 || limit > MaxLimit {
		limit = defaultLimit
	}

	offset := parseIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Bounded parses a positive integer query parameter, falling back to def when
// it is missing, unparseable or outside [1, max].
func Bounded(r *http.Request, key string, def, max int) int {
	n := parseIntParam(r, key, def)
	if n < 1 || n > max {
		return def
	}
	return n
}

func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return n
}
