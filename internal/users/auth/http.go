// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/comicshelf/internal/platform/request"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for reader accounts and the admin login.
type Handler struct {
	service *Service
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/*
Routes returns the /api/auth router.

The caller must mount it behind [middleware.Authenticate] with the reader
token verifier so that /me can see the claims.
*/
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(limited chi.Router) {
		limited.Use(middleware.RateLimit("auth", constants.AuthRateLimit, constants.AuthRateWindow))
		limited.Post("/register", handler.register)
		limited.Post("/login", handler.login)
	})

	router.With(middleware.RequireAuth).Get("/me", handler.me)
	return router
}

// RegisterAdmin adds POST /login to the /api/admin router.
func (handler *Handler) RegisterAdmin(router chi.Router) {
	router.With(middleware.RateLimit("admin_auth", constants.AuthRateLimit, constants.AuthRateWindow)).
		Post("/login", handler.adminLogin)
}

// # Reader Endpoints

/*
POST /api/auth/register.

Request:
  - body: {username, email, password}

Response:
  - 201: {data: {user, token}}
  - 400: VALIDATION_ERROR
  - 409: CONFLICT: email or username taken
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, session)
}

/*
POST /api/auth/login.

Request:
  - body: {email or username, password}

Response:
  - 200: {data: {user, token}}
  - 401: UNAUTHORIZED
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session)
}

// me handles GET /api/auth/me.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

// # Admin Endpoints

/*
POST /api/admin/login.

Response:
  - 200: {data: {token, expires_in}}
  - 401: UNAUTHORIZED: "Invalid credentials"
*/
func (handler *Handler) adminLogin(writer http.ResponseWriter, request *http.Request) {
	var input AdminLoginInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.AdminLogin(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session)
}
