// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides the router's parameter extraction and the common body decoding
patterns so every handler fails the same way on bad input.
*/
package requestutil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/sec"
	"github.com/taibuivan/comicshelf/internal/platform/validate"
)

// maxJSONBody caps JSON request bodies. Sync payloads are the largest.
const maxJSONBody = 2 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: used to cap the body size
  - request: *http.Request
  - target: pointer to the destination struct

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	body := http.MaxBytesReader(writer, request.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID parses a positive integer URL parameter.

Returns:
  - int64: the parsed id
  - error: VALIDATION_ERROR naming the parameter
*/
func ID(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.RequiredError(name, "Invalid "+name)
	}
	return id, nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Wildcard returns the trailing `*` segment of a chi route, without a leading slash.
func Wildcard(request *http.Request) string {
	return strings.TrimPrefix(chi.URLParam(request, "*"), "/")
}

/*
Claims extracts the authenticated claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the claims.

Returns:
  - *sec.AuthClaims: the authenticated claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
RequiredUserID returns the account id of the authenticated reader.

Returns:
  - int64: account id
  - error: apperr.Unauthorized if not authenticated or the token carries no account
*/
func RequiredUserID(request *http.Request) (int64, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return 0, err
	}
	if claims.UserID <= 0 {
		return 0, apperr.Unauthorized("Account token required")
	}
	return claims.UserID, nil
}
