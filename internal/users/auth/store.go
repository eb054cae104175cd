// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # User Data Access

// UserRepository defines the data access contract for reader accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: NOT_FOUND or database failures
	*/
	FindByID(context context.Context, id int64) (*User, error)

	// FindByEmail returns the account registered with email.
	FindByEmail(context context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given username.
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a new account and fills in its ID and creation time.

		Returns:
		  - error: CONFLICT when the username or email is taken
	*/
	Create(context context.Context, user *User) error
}
