// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/internal/platform/sec"
)

func newServices(t *testing.T) (*sec.TokenService, *sec.TokenService) {
	t.Helper()
	users, err := sec.NewTokenService("user-secret", "comicshelf", sec.ScopeUser, 7*24*time.Hour)
	require.NoError(t, err)
	admins, err := sec.NewTokenService("admin-secret", "comicshelf", sec.ScopeAdmin, 12*time.Hour)
	require.NoError(t, err)
	return users, admins
}

func TestTokenService_RoundTrip(t *testing.T) {
	users, _ := newServices(t)

	token, err := users.GenerateAccessToken(7, "reader", sec.RoleUser)
	require.NoError(t, err)

	claims, err := users.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "reader", claims.Username)
	assert.Equal(t, sec.ScopeUser, claims.Scope)
}

/*
TestTokenService_SchemesAreNotInterchangeable checks that neither service
accepts tokens minted by the other.
*/
func TestTokenService_SchemesAreNotInterchangeable(t *testing.T) {
	users, admins := newServices(t)

	userToken, err := users.GenerateAccessToken(1, "reader", sec.RoleAdmin)
	require.NoError(t, err)
	adminToken, err := admins.GenerateAccessToken(0, "admin", sec.RoleAdmin)
	require.NoError(t, err)

	_, err = admins.VerifyToken(userToken)
	assert.Error(t, err)
	_, err = users.VerifyToken(adminToken)
	assert.Error(t, err)

	// Same secret, different scope.
	shared, err := sec.NewTokenService("admin-secret", "comicshelf", sec.ScopeUser, time.Hour)
	require.NoError(t, err)
	sharedToken, err := shared.GenerateAccessToken(1, "reader", sec.RoleAdmin)
	require.NoError(t, err)
	_, err = admins.VerifyToken(sharedToken)
	assert.ErrorIs(t, err, sec.ErrScopeMismatch)
}

func TestTokenService_Expiry(t *testing.T) {
	_, admins := newServices(t)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	token, err := admins.WithClock(func() time.Time { return issued }).GenerateAccessToken(0, "admin", sec.RoleAdmin)
	require.NoError(t, err)

	_, err = admins.WithClock(func() time.Time { return issued.Add(11 * time.Hour) }).VerifyToken(token)
	assert.NoError(t, err)

	_, err = admins.WithClock(func() time.Time { return issued.Add(13 * time.Hour) }).VerifyToken(token)
	assert.Error(t, err)
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "comicshelf", sec.ScopeUser, time.Hour)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("secret1", hash))
	assert.False(t, sec.CheckPasswordHash("secret2", hash))
}

func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleGroup))
	assert.True(t, sec.RoleGroup.AtLeast(sec.RoleGroup))
	assert.False(t, sec.RoleUser.AtLeast(sec.RoleGroup))
	assert.False(t, sec.UserRole("moderator").Valid())
}
