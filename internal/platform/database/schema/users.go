// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	AvatarURL    string
	Role         string
	CreatedAt    string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:        "users",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "password_hash",
	AvatarURL:    "avatar_url",
	Role:         "role",
	CreatedAt:    "created_at",
}

// Columns returns all standard column names
func (t UsersTable) Columns() []string {
	return []string{t.ID, t.Username, t.Email, t.PasswordHash, t.AvatarURL, t.Role, t.CreatedAt}
}

// Select returns the column list qualified with alias.
func (t UsersTable) Select(alias string) string {
	return qualify(alias, t.Columns())
}
