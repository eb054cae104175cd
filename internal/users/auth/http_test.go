// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/internal/platform/middleware"
	"github.com/taibuivan/comicshelf/internal/users/auth"
)

func newRouter(t *testing.T) (http.Handler, *fixture) {
	t.Helper()
	f := newFixture(t)
	handler := auth.NewHandler(f.service)

	router := chi.NewRouter()
	router.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.Authenticate(f.users))
		r.Mount("/", handler.Routes())
	})
	router.Route("/api/admin", handler.RegisterAdmin)
	return router, f
}

func serve(router http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHTTP_RegisterLoginMe(t *testing.T) {
	router, f := newRouter(t)

	rec := serve(router, http.MethodPost, "/api/auth/register",
		`{"username":"reader","email":"reader@example.com","password":"hunter22"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = serve(router, http.MethodPost, "/api/auth/register",
		`{"username":"reader2","email":"reader@example.com","password":"hunter22"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(router, http.MethodPost, "/api/auth/login",
		`{"email":"reader@example.com","password":"hunter22"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Data auth.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.Token)

	rec = serve(router, http.MethodGet, "/api/auth/me", "", login.Data.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"username":"reader"`)

	rec = serve(router, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	adminToken, err := f.admins.GenerateAccessToken(0, "root", "admin")
	require.NoError(t, err)
	rec = serve(router, http.MethodGet, "/api/auth/me", "", adminToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHTTP_LoginFailures(t *testing.T) {
	router, _ := newRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid_json", `{`, http.StatusBadRequest},
		{"missing_password", `{"email":"a@example.com"}`, http.StatusBadRequest},
		{"unknown_account", `{"email":"a@example.com","password":"whatever"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodPost, "/api/auth/login", tt.body, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHTTP_AdminLogin(t *testing.T) {
	router, f := newRouter(t)

	rec := serve(router, http.MethodPost, "/api/admin/login", `{"username":"root","password":"s3cret-pass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Data auth.AdminSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	_, err := f.admins.VerifyToken(payload.Data.Token)
	assert.NoError(t, err)

	rec = serve(router, http.MethodPost, "/api/admin/login", `{"username":"root","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}
