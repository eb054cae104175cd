// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package imageserver_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/internal/asset"
	"github.com/taibuivan/comicshelf/internal/imageserver"
	"github.com/taibuivan/comicshelf/internal/platform/config"
	"github.com/taibuivan/comicshelf/internal/platform/sec"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	router http.Handler
	store  *asset.Store
	users  *sec.TokenService
	admins *sec.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	processor := asset.NewProcessor(asset.ProcessorOptions{MaxBytes: 1 << 20, MaxWidth: 1200, WebPQuality: 85})
	store, err := asset.NewStore(t.TempDir(), processor, 10)
	require.NoError(t, err)

	users, err := sec.NewTokenService("user-secret-0123456789", "comicshelf", sec.ScopeUser, time.Hour)
	require.NoError(t, err)
	admins, err := sec.NewTokenService("admin-secret-0123456789", "comicshelf", sec.ScopeAdmin, time.Hour)
	require.NoError(t, err)

	return &fixture{
		router: imageserver.NewRouter(&config.ImageServer{}, discard, admins, store),
		store:  store,
		users:  users,
		admins: admins,
	}
}

func (f *fixture) write(t *testing.T, virtual string) string {
	t.Helper()
	full := filepath.Join(f.store.Root(), filepath.FromSlash(virtual))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("img"), 0o644))
	return full
}

func (f *fixture) do(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(""))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	f := newFixture(t)
	f.write(t, "covers/public.jpg")

	rec := f.do(http.MethodGet, "/images/covers/public.jpg", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"uploadDir"`)

	rec = f.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminGuardRunsBeforeDisk(t *testing.T) {
	f := newFixture(t)
	full := f.write(t, "covers/keep.jpg")

	userToken, err := f.users.GenerateAccessToken(1, "reader", sec.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"garbage", "not-a-token", http.StatusUnauthorized},
		{"user_scheme", userToken, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, call := range []struct{ method, target string }{
				{http.MethodDelete, "/images/covers/keep.jpg"},
				{http.MethodDelete, "/folder/covers"},
				{http.MethodGet, "/browse/covers"},
				{http.MethodGet, "/stats"},
				{http.MethodPost, "/folder"},
			} {
				rec := f.do(call.method, call.target, tt.token)
				assert.Equal(t, tt.status, rec.Code, call.target)
			}
			assert.FileExists(t, full)
		})
	}
}

func TestRouter_AdminCanDelete(t *testing.T) {
	f := newFixture(t)
	full := f.write(t, "covers/gone.jpg")

	token, err := f.admins.GenerateAccessToken(0, "root", sec.RoleAdmin)
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/browse/covers", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "gone.jpg")

	rec = f.do(http.MethodDelete, "/images/covers/gone.jpg", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NoFileExists(t, full)

	rec = f.do(http.MethodGet, "/images/covers/gone.jpg", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
