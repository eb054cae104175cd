// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/sec"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite/sqlitetest"
	"github.com/taibuivan/comicshelf/internal/users/auth"
)

var (
	t0      = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
	admin   = auth.AdminCredentials{Username: "root", Password: "s3cret-pass"}
)

type fixture struct {
	service *auth.Service
	users   *sec.TokenService
	admins  *sec.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := sqlitetest.New(t)
	clock := sqlitetest.NewClock(t0)

	users, err := sec.NewTokenService("user-secret-0123456789", "comicshelf", sec.ScopeUser, 7*24*time.Hour)
	require.NoError(t, err)
	admins, err := sec.NewTokenService("admin-secret-0123456789", "comicshelf", sec.ScopeAdmin, 12*time.Hour)
	require.NoError(t, err)

	repo := auth.NewSQLiteRepository(db, clock.Now)
	return &fixture{
		service: auth.NewService(repo, users, admins, admin, discard),
		users:   users,
		admins:  admins,
	}
}

func (f *fixture) register(t *testing.T, username, email string) *auth.Session {
	t.Helper()
	session, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: username, Email: email, Password: "hunter22",
	})
	require.NoError(t, err)
	return session
}

func TestRegister_IssuesUserToken(t *testing.T) {
	f := newFixture(t)

	session := f.register(t, "reader", "  Reader@Example.com ")
	assert.Positive(t, session.User.ID)
	assert.Equal(t, "reader@example.com", session.User.Email)
	assert.Equal(t, sec.RoleUser, session.User.Role)
	assert.Equal(t, t0, session.User.CreatedAt)
	assert.NotEqual(t, "hunter22", session.User.PasswordHash)

	claims, err := f.users.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, sec.ScopeUser, claims.Scope)

	_, err = f.admins.VerifyToken(session.Token)
	assert.Error(t, err)
}

func TestRegister_Rejects(t *testing.T) {
	f := newFixture(t)
	f.register(t, "taken", "taken@example.com")

	tests := []struct {
		name  string
		input auth.RegisterInput
		code  string
	}{
		{"missing_fields", auth.RegisterInput{}, "VALIDATION_ERROR"},
		{"short_password", auth.RegisterInput{Username: "a", Email: "a@example.com", Password: "12345"}, "VALIDATION_ERROR"},
		{"bad_email", auth.RegisterInput{Username: "a", Email: "not-an-email", Password: "123456"}, "VALIDATION_ERROR"},
		{"email_taken", auth.RegisterInput{Username: "other", Email: "TAKEN@example.com", Password: "123456"}, "CONFLICT"},
		{"username_taken", auth.RegisterInput{Username: "taken", Email: "new@example.com", Password: "123456"}, "CONFLICT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(context.Background(), tt.input)
			assert.True(t, apperr.HasCode(err, tt.code), err)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, "reader", "reader@example.com")
	ctx := context.Background()

	byEmail, err := f.service.Login(ctx, auth.LoginInput{Email: "READER@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byEmail.User.ID)

	byName, err := f.service.Login(ctx, auth.LoginInput{Username: "reader", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, byName.Token)

	_, err = f.service.Login(ctx, auth.LoginInput{Email: "reader@example.com", Password: "wrong-pass"})
	wrongPassword := apperr.As(err)
	require.NotNil(t, wrongPassword)

	_, err = f.service.Login(ctx, auth.LoginInput{Email: "ghost@example.com", Password: "hunter22"})
	unknown := apperr.As(err)
	require.NotNil(t, unknown)

	assert.Equal(t, "UNAUTHORIZED", wrongPassword.Code)
	assert.Equal(t, wrongPassword.Message, unknown.Message)

	_, err = f.service.Login(ctx, auth.LoginInput{Password: "hunter22"})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, "reader", "reader@example.com")

	user, err := f.service.Me(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", user.Username)

	_, err = f.service.Me(context.Background(), 999)
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.service.AdminLogin(ctx, auth.AdminLoginInput{Username: "root", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, int64((12 * time.Hour).Seconds()), session.ExpiresIn)

	claims, err := f.admins.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, claims.Role)
	assert.Equal(t, sec.ScopeAdmin, claims.Scope)

	_, err = f.users.VerifyToken(session.Token)
	assert.Error(t, err)

	for _, input := range []auth.AdminLoginInput{
		{Username: "root", Password: "wrong"},
		{Username: "admin", Password: "s3cret-pass"},
	} {
		_, err := f.service.AdminLogin(ctx, input)
		assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))
	}

	_, err = f.service.AdminLogin(ctx, auth.AdminLoginInput{Username: "root"})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}
