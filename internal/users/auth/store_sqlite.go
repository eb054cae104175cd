// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taibuivan/comicshelf/internal/platform/database/schema"
	"github.com/taibuivan/comicshelf/internal/platform/dberr"
	"github.com/taibuivan/comicshelf/internal/platform/sec"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite"
)

// # SQLite Repository

type sqliteRepository struct {
	db    *sql.DB
	clock sqlite.Clock
}

// NewSQLiteRepository constructs a SQLite backed account store.
func NewSQLiteRepository(db *sql.DB, clock sqlite.Clock) UserRepository {
	return &sqliteRepository{db: db, clock: clock}
}

var (
	userTable   = schema.Users
	userColumns = userTable.Select("u")
)

func scanUser(row *sql.Row) (*User, error) {
	var (
		user      User
		avatarURL sql.NullString
		role      string
		createdAt sqlite.NullTime
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &avatarURL, &role, &createdAt)
	if err != nil {
		return nil, err
	}

	if avatarURL.Valid {
		user.AvatarURL = &avatarURL.String
	}
	user.Role = sec.UserRole(role)
	user.CreatedAt = createdAt.Time
	return &user, nil
}

func (repository *sqliteRepository) findBy(ctx context.Context, column string, value any) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s u WHERE u.%s = ?`, userColumns, userTable.Table, column)

	user, err := scanUser(repository.db.QueryRowContext(ctx, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

// FindByID implements [UserRepository].
func (repository *sqliteRepository) FindByID(context context.Context, id int64) (*User, error) {
	return repository.findBy(context, userTable.ID, id)
}

// FindByEmail implements [UserRepository]. Emails compare case-insensitively.
func (repository *sqliteRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s u WHERE lower(u.%s) = lower(?)`, userColumns, userTable.Table, userTable.Email)

	user, err := scanUser(repository.db.QueryRowContext(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

// FindByUsername implements [UserRepository].
func (repository *sqliteRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findBy(context, userTable.Username, username)
}

// Create implements [UserRepository].
func (repository *sqliteRepository) Create(context context.Context, user *User) error {
	if user.Role == "" {
		user.Role = sec.RoleUser
	}
	now := repository.clock.Now()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userTable.Table,
		userTable.Username, userTable.Email, userTable.PasswordHash,
		userTable.AvatarURL, userTable.Role, userTable.CreatedAt,
	)

	result, err := repository.db.ExecContext(context, query,
		user.Username, user.Email, user.PasswordHash, user.AvatarURL, string(user.Role), sqlite.FormatTime(now),
	)
	if err != nil {
		return dberr.Wrap(err, "Account")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return dberr.Wrap(err, "Account")
	}
	user.ID = id
	user.CreatedAt = now.UTC()
	return nil
}
