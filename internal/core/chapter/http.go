// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/comicshelf/internal/platform/request"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for chapter reads and management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ComicRoutes registers the chapter reads nested under /api/comics.
// Pass it to the comic router as an extension.
func (handler *Handler) ComicRoutes(router chi.Router) {
	router.Get("/{id}/chapters", handler.listByComic)
	router.Get("/slug/{slug}/chapter/{number}", handler.getBySlugAndNumber)
}

// Routes returns the public /api/chapters router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{id}", handler.getChapter)
	return router
}

// AdminRoutes returns the /api/admin/chapters router.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.createChapter)
	router.Put("/{id}", handler.updateChapter)
	router.Delete("/{id}", handler.deleteChapter)
	return router
}

// ConfigRoutes returns the /api/config router.
func (handler *Handler) ConfigRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/tiktok-base-url", handler.tiktokBaseURL)
	return router
}

// # Reader Endpoints

/*
GET /api/comics/{id}/chapters.

Description: Every chapter of the comic in ascending number order. An unknown
comic yields an empty list.

Response:
  - 200: {data: []Chapter}
*/
func (handler *Handler) listByComic(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapters, err := handler.service.ListByComic(request.Context(), comicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapters)
}

/*
GET /api/chapters/{id}.

Response:
  - 200: {data: Chapter with prev_chapter and next_chapter}
  - 404: NOT_FOUND
*/
func (handler *Handler) getChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

/*
GET /api/comics/slug/{slug}/chapter/{number}.

Response:
  - 200: {data: Chapter with neighbors, comic_slug and comic_title}
  - 400: VALIDATION_ERROR: malformed number
  - 404: NOT_FOUND
*/
func (handler *Handler) getBySlugAndNumber(writer http.ResponseWriter, request *http.Request) {
	detail, err := handler.service.GetBySlugAndNumber(request.Context(),
		requestutil.Param(request, "slug"),
		requestutil.Param(request, "number"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

// tiktokBaseURL handles GET /api/config/tiktok-base-url.
func (handler *Handler) tiktokBaseURL(writer http.ResponseWriter, _ *http.Request) {
	respond.JSON(writer, http.StatusOK, map[string]string{"baseUrl": handler.service.TikTokBaseURL()})
}

// # Admin Endpoints

/*
POST /api/admin/chapters.

Request:
  - body: CreateInput (image_urls may be grouped or a flat array)

Response:
  - 201: {data: Chapter}
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND: comic
*/
func (handler *Handler) createChapter(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, chapter)
}

// updateChapter handles PUT /api/admin/chapters/{id}.
func (handler *Handler) updateChapter(writer http.ResponseWriter, request *http.Request) {
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

	chapter, err := handler.service.Update(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// deleteChapter handles DELETE /api/admin/chapters/{id}.
func (handler *Handler) deleteChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
