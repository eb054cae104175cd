// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicshelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/comicshelf/internal/platform/request"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
	"github.com/taibuivan/comicshelf/pkg/pagination"
)

// Handler implements the HTTP layer for /api/user.
type Handler struct {
	service *Service
}

// NewHandler constructs a new library [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/*
Routes returns the /api/user router. Every route requires a reader token.

extensions register further per-user routes owned by other packages.
The caller must mount the router behind [middleware.Authenticate].
*/
func (handler *Handler) Routes(extensions ...func(chi.Router)) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/history", handler.listHistory)
	router.Post("/history", handler.recordRead)
	router.Delete("/history", handler.clearHistory)
	router.Delete("/history/{comicID}", handler.removeHistory)

	router.Get("/follows", handler.listFollows)
	router.Get("/follows/{comicID}", handler.isFollowing)
	router.Post("/follows/{comicID}", handler.follow)
	router.Delete("/follows/{comicID}", handler.unfollow)

	router.Post("/sync", handler.sync)

	for _, extend := range extensions {
		extend(router)
	}
	return router
}

// # History Endpoints

/*
GET /api/user/history.

Request:
  - query: limit (default 50), offset

Response:
  - 200: {data: []HistoryEntry, total}
*/
func (handler *Handler) listHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, total, err := handler.service.History(request.Context(), userID, pagination.FromRequest(request, DefaultHistoryLimit))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Page(writer, entries, total)
}

/*
POST /api/user/history.

Request:
  - body: {comic_id, chapter_number}

Response:
  - 204: recorded
  - 404: NOT_FOUND: unknown comic
*/
func (handler *Handler) recordRead(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input RecordInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RecordRead(request.Context(), userID, input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// removeHistory handles DELETE /api/user/history/{comicID}.
func (handler *Handler) removeHistory(writer http.ResponseWriter, request *http.Request) {
	userID, comicID, err := userAndComic(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveHistory(request.Context(), userID, comicID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// clearHistory handles DELETE /api/user/history.
func (handler *Handler) clearHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ClearHistory(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Follow Endpoints

// listFollows handles GET /api/user/follows.
func (handler *Handler) listFollows(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	follows, err := handler.service.Follows(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Page(writer, follows, len(follows))
}

/*
GET /api/user/follows/{comicID}.

Response:
  - 200: {data: {following: bool}}
*/
func (handler *Handler) isFollowing(writer http.ResponseWriter, request *http.Request) {
	userID, comicID, err := userAndComic(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	following, err := handler.service.IsFollowing(request.Context(), userID, comicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]bool{"following": following})
}

/*
POST /api/user/follows/{comicID}.

Response:
  - 204: following (also when already following)
  - 404: NOT_FOUND: unknown comic
*/
func (handler *Handler) follow(writer http.ResponseWriter, request *http.Request) {
	userID, comicID, err := userAndComic(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Follow(request.Context(), userID, comicID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// unfollow handles DELETE /api/user/follows/{comicID}.
func (handler *Handler) unfollow(writer http.ResponseWriter, request *http.Request) {
	userID, comicID, err := userAndComic(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Unfollow(request.Context(), userID, comicID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Sync Endpoint

/*
POST /api/user/sync.

Request:
  - body: {history: [{comic_id, chapter_number}], follows: [{id}]}

Response:
  - 200: {data: {history, follows}}
  - 400: VALIDATION_ERROR: too many entries
*/
func (handler *Handler) sync(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input SyncInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Sync(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func userAndComic(request *http.Request) (int64, int64, error) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		return 0, 0, err
	}
	comicID, err := requestutil.ID(request, "comicID")
	if err != nil {
		return 0, 0, err
	}
	return userID, comicID, nil
}
