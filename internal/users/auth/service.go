// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/sec"
	"github.com/taibuivan/comicshelf/internal/platform/validate"
)

// adminAccountID marks admin tokens; the admin login is not a stored account.
const adminAccountID int64 = 0

var errBadCredentials = apperr.Unauthorized("Invalid email or password")

// Service implements registration, login and the admin login.
type Service struct {
	repo   UserRepository
	users  *sec.TokenService
	admins *sec.TokenService
	admin  AdminCredentials
	logger *slog.Logger
}

// NewService constructs a new [Service]. users and admins must use different secrets.
func NewService(repo UserRepository, users, admins *sec.TokenService, admin AdminCredentials, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		admins: admins,
		admin:  admin,
		logger: logger,
	}
}

// # Reader Accounts

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register creates a reader account and signs the caller in.

Returns:
  - *Session: the account and a user-scope token
  - error: VALIDATION_ERROR for bad input, CONFLICT when the email or username is taken
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MaxLen(FieldUsername, input.Username, maxUsernameLength).
		Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)
	if input.Email != "" {
		validator.Email(FieldEmail, input.Email)
	}
	if input.Password != "" {
		validator.MinLen(FieldPassword, input.Password, constants.MinPasswordLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email already registered")
	} else if !apperr.HasCode(err, "NOT_FOUND") {
		return nil, err
	}
	if _, err := service.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperr.Conflict("Username already taken")
	} else if !apperr.HasCode(err, "NOT_FOUND") {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         sec.RoleUser,
	}
	if err := service.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).Info("user_registered", slog.Int64("user_id", user.ID))
	return service.session(user)
}

// LoginInput accepts either an email or a username as the identifier.
type LoginInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
Login verifies a reader's credentials.

Every failure past validation returns the same UNAUTHORIZED error so the
response does not reveal which accounts exist.
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	identifier := strings.TrimSpace(input.Email)
	field := FieldEmail
	if identifier == "" {
		identifier = strings.TrimSpace(input.Username)
		field = FieldUsername
	}

	validator := &validate.Validator{}
	validator.Required(field, identifier).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	var (
		user *User
		err  error
	)
	if field == FieldEmail {
		user, err = service.repo.FindByEmail(ctx, identifier)
	} else {
		user, err = service.repo.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		ctxutil.GetLogger(ctx).Warn("login_failed", slog.Int64("user_id", user.ID))
		return nil, errBadCredentials
	}

	return service.session(user)
}

// Me returns the account behind a verified token.
func (service *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return service.repo.FindByID(ctx, userID)
}

func (service *Service) session(user *User) (*Session, error) {
	token, err := service.users.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{User: user, Token: token}, nil
}

// # Admin Login

// AdminLoginInput is the admin panel login payload.
type AdminLoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
AdminLogin checks the configured admin credentials and issues an admin-scope token.

Both fields are compared in constant time and both comparisons always run.
*/
func (service *Service) AdminLogin(ctx context.Context, input AdminLoginInput) (*AdminSession, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	usernameOK := sec.EqualConstantTime(input.Username, service.admin.Username)
	passwordOK := sec.EqualConstantTime(input.Password, service.admin.Password)
	if !usernameOK || !passwordOK {
		ctxutil.GetLogger(ctx).Warn("admin_login_failed")
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	token, err := service.admins.GenerateAccessToken(adminAccountID, service.admin.Username, sec.RoleAdmin)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	ctxutil.GetLogger(ctx).Info("admin_logged_in")
	return &AdminSession{Token: token, ExpiresIn: int64(service.admins.TTL().Seconds())}, nil
}
