// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides password hashing and bearer token management.
//
// # Architecture
//
// Two [TokenService] instances run side by side: one for reader accounts and one
// for the admin panel. Each signs with its own secret and stamps its own scope,
// so a token minted by one never verifies against the other.
package sec

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes.
const (
	ScopeUser  = "user"
	ScopeAdmin = "admin"
)

// ErrScopeMismatch is returned when a token was issued for another scheme.
var ErrScopeMismatch = errors.New("sec: token scope mismatch")

// AuthClaims represents the payload embedded inside a bearer token.
//
// Claim names are abbreviated to keep the token small.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   int64    `json:"uid,omitempty"`
	Username string   `json:"unm"`
	Role     UserRole `json:"rol"`
	Scope    string   `json:"scp"`
}

// TokenService issues and verifies HS256 tokens for a single scope.
type TokenService struct {
	secret []byte
	issuer string
	scope  string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. An empty secret is rejected.
func NewTokenService(secret, issuer, scope string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: empty signing secret for scope %q", scope)
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		scope:  scope,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the service that reads time from now.
func (service *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *service
	clone.now = now
	return &clone
}

// TTL returns the lifetime of tokens issued by this service.
func (service *TokenService) TTL() time.Duration { return service.ttl }

/*
GenerateAccessToken signs a new token for the given identity.

Parameters:
  - userID: numeric account id, 0 for the config-backed admin
  - username: display name carried in the token
  - role: account role at issue time

Returns:
  - string: the signed token
  - error: signing failure
*/
func (service *TokenService) GenerateAccessToken(userID int64, username string, role UserRole) (string, error) {
	issuedAt := service.now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(service.ttl)),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
		Scope:    service.scope,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the signature, expiry, issuer and scope of a token.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return service.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}
	if claims.Scope != service.scope {
		return nil, ErrScopeMismatch
	}
	return claims, nil
}
