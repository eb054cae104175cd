// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements reader accounts and the two login flows.

Reader accounts live in the catalog database and receive user-scope tokens.
The admin panel has a single config-backed login that receives admin-scope
tokens. The two token schemes never verify against each other.
*/
package auth

import (
	"time"

	"github.com/taibuivan/comicshelf/internal/platform/sec"
)

// # Domain Entities

// User is a registered reader account.
type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	AvatarURL    *string      `json:"avatar_url"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Session is returned by register and login.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// AdminSession is returned by the admin login.
type AdminSession struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// AdminCredentials is the config-backed admin login.
type AdminCredentials struct {
	Username string
	Password string
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

const maxUsernameLength = 50
