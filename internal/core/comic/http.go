// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic provides the HTTP interface for discovery and management of the catalog.

# Routing Strategy

  - Public: discovery endpoints under /api/comics and /api/genres.
  - Admin: mutations under /api/admin/comics, mounted behind the admin scheme.
  - Owner: /api/user/comics for group and admin accounts.

The handler translates between the JSON layer and the domain [Service].
*/
package comic

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/comicshelf/internal/platform/request"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
	"github.com/taibuivan/comicshelf/pkg/pagination"
)

// Per-route default page sizes.
const (
	listDefaultLimit   = 20
	topDefaultLimit    = 10
	recentDefaultLimit = 12
	genreDefaultLimit  = 20
)

// # Handler Implementation

// Handler implements the HTTP layer for comic discovery and management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new comic [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the public /api/comics router. Extensions register routes
// that share the prefix but belong to other domains (chapter reads).
func (handler *Handler) Routes(extensions ...func(chi.Router)) chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listComics)
	router.Get("/top", handler.listTop)
	router.Get("/recent", handler.listRecent)
	router.Get("/featured", handler.listFeatured)
	router.Get("/slug/{slug}", handler.getComicBySlug)
	router.Get("/{id}", handler.getComic)

	for _, extend := range extensions {
		extend(router)
	}
	return router
}

// GenreRoutes returns the /api/genres router.
func (handler *Handler) GenreRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listGenres)
	router.Get("/{genre}/comics", handler.listByGenre)
	return router
}

// AdminRoutes returns the /api/admin/comics router. The caller mounts it
// behind the admin scheme guard.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.createComic)
	router.Put("/{id}", handler.updateComic)
	router.Delete("/{id}", handler.deleteComic)
	return router
}

// # Discovery Endpoints

/*
GET /api/comics.

Description: Paginated catalog ordered by last update.

Request:
  - search: string (title or author substring)
  - limit: int (default 20)
  - offset: int

Response:
  - 200: {data: []Comic, total}
*/
func (handler *Handler) listComics(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request, listDefaultLimit)

	comics, total, err := handler.service.ListComics(request.Context(), request.URL.Query().Get("search"), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Page(writer, comics, total)
}

/*
GET /api/comics/top.

Request:
  - limit: int (default 10)
  - offset: int

Response:
  - 200: {data: []Comic, total}
*/
func (handler *Handler) listTop(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request, topDefaultLimit)

	comics, total, err := handler.service.ListTop(request.Context(), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Page(writer, comics, total)
}

/*
GET /api/comics/recent.

Description: Comics ordered by the creation time of their highest-numbered
chapter, each with up to three chapter previews.

Request:
  - limit: int (default 12)
  - offset: int

Response:
  - 200: {data: []RecentComic, total}
*/
func (handler *Handler) listRecent(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request, recentDefaultLimit)

	comics, total, err := handler.service.ListRecent(request.Context(), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Page(writer, comics, total)
}

/*
GET /api/comics/featured.

Request:
  - count: int (default 10)
  - fromTop: int (default 30)

Response:
  - 200: {data: []Comic}
*/
func (handler *Handler) listFeatured(writer http.ResponseWriter, request *http.Request) {
	count := pagination.Bounded(request, "count", constants.FeaturedCount, pagination.MaxLimit)
	fromTop := pagination.Bounded(request, "fromTop", constants.FeaturedFromTop, pagination.MaxLimit)

	comics, err := handler.service.Featured(request.Context(), count, fromTop)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comics)
}

/*
GET /api/comics/{id}.

Response:
  - 200: {data: Comic}
  - 400: VALIDATION_ERROR: malformed id
  - 404: NOT_FOUND
*/
func (handler *Handler) getComic(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.ViewByID(request.Context(), id, middleware.RealIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comic)
}

// getComicBySlug handles GET /api/comics/slug/{slug}.
func (handler *Handler) getComicBySlug(writer http.ResponseWriter, request *http.Request) {
	comic, err := handler.service.ViewBySlug(request.Context(), requestutil.Param(request, "slug"), middleware.RealIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comic)
}

// # Genre Endpoints

// listGenres handles GET /api/genres.
func (handler *Handler) listGenres(writer http.ResponseWriter, request *http.Request) {
	genres, err := handler.service.Genres(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, genres)
}

/*
GET /api/genres/{genre}/comics.

Description: Genre membership is a substring match on the stored JSON, so
"Action" also matches a comic tagged only "Action-Comedy".

Response:
  - 200: {data: []Comic, total}
*/
func (handler *Handler) listByGenre(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request, genreDefaultLimit)

	genre := requestutil.Param(request, "genre")
	if unescaped, err := url.PathUnescape(genre); err == nil {
		genre = unescaped
	}

	comics, total, err := handler.service.ListByGenre(request.Context(), genre, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Page(writer, comics, total)
}

// # Owner Endpoints

/*
OwnedComics handles GET /api/user/comics.

Description: Comics created by the calling account. Mounted by the API
server behind the user scheme with a group-or-admin role requirement.

Response:
  - 200: {data: []Comic, total}
*/
func (handler *Handler) OwnedComics(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request, listDefaultLimit)
	comics, total, err := handler.service.ListOwned(request.Context(), userID, request.URL.Query().Get("search"), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Page(writer, comics, total)
}

// # Mutation Endpoints

/*
POST /api/admin/comics.

Request:
  - body: CreateInput

Response:
  - 201: {data: Comic}
  - 400: VALIDATION_ERROR
  - 409: CONFLICT: slug taken
*/
func (handler *Handler) createComic(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.CreateComic(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, comic)
}

// updateComic handles PUT /api/admin/comics/{id}.
func (handler *Handler) updateComic(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comic, err := handler.service.UpdateComic(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comic)
}

/*
DELETE /api/admin/comics/{id}.

Description: Deletes the comic and its chapters, then removes their images
from the image server in the background.

Response:
  - 204: deleted
  - 404: NOT_FOUND
*/
func (handler *Handler) deleteComic(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteComic(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
