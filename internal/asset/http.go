// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	requestutil "github.com/taibuivan/comicshelf/internal/platform/request"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
	"github.com/taibuivan/comicshelf/pkg/slice"
)

// Multipart field names.
const (
	fieldCover         = "cover"
	fieldImages        = "images"
	fieldImage         = "image"
	fieldComicSlug     = "comic_slug"
	fieldChapterNumber = "chapter_number"
)

// Handler exposes the asset store over HTTP.
type Handler struct {
	store *Store
}

// NewHandler constructs a new [Handler].
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// ServeImage is the public static route, GET /images/*.
func (handler *Handler) ServeImage() http.HandlerFunc {
	return handler.serveImage
}

// Register adds the admin routes to router. The caller applies the admin guard.
func (handler *Handler) Register(router chi.Router) {
	router.Post("/upload/cover", handler.uploadCover)
	router.Post("/upload/chapter", handler.uploadChapter)
	router.Put("/replace/*", handler.replaceImage)
	router.Delete("/images/*", handler.deleteImage)
	router.Delete("/chapters/{slug}/{number}", handler.deleteChapter)
	router.Get("/stats", handler.stats)
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type coverResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	FullURL string `json:"fullUrl"`
}

type chapterResponse struct {
	Success  bool     `json:"success"`
	Count    int      `json:"count"`
	URLs     []string `json:"urls"`
	FullURLs []string `json:"fullUrls"`
}

type replaceResponse struct {
	Success bool   `json:"success"`
	NewPath string `json:"newPath"`
	URL     string `json:"url"`
}

// # Uploads

/*
POST /upload/cover.

Request:
  - multipart: cover (file), comic_slug

Response:
  - 200: {success, url, fullUrl}
  - 400: VALIDATION_ERROR, PAYLOAD_TOO_LARGE
*/
func (handler *Handler) uploadCover(writer http.ResponseWriter, request *http.Request) {
	uploads, err := ParseUploads(writer, request, fieldCover, 1, handler.store.processor.MaxBytes())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if len(uploads) == 0 {
		respond.Error(writer, request, apperr.ValidationError("No file uploaded"))
		return
	}

	url, err := handler.store.SaveCover(request.Context(), request.FormValue(fieldComicSlug), uploads[0].Data)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, coverResponse{Success: true, URL: url, FullURL: absoluteURL(request, url)})
}

/*
POST /upload/chapter.

Request:
  - multipart: images (files, natural filename order), comic_slug, chapter_number

Response:
  - 200: {success, count, urls, fullUrls}
  - 400: VALIDATION_ERROR, PAYLOAD_TOO_LARGE
*/
func (handler *Handler) uploadChapter(writer http.ResponseWriter, request *http.Request) {
	uploads, err := ParseUploads(writer, request, fieldImages, handler.store.maxFiles, handler.store.processor.MaxBytes())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	urls, err := handler.store.SaveChapterImages(request.Context(),
		request.FormValue(fieldComicSlug),
		request.FormValue(fieldChapterNumber),
		uploads,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, chapterResponse{
		Success:  true,
		Count:    len(urls),
		URLs:     urls,
		FullURLs: slice.Map(urls, func(url string) string { return absoluteURL(request, url) }),
	})
}

/*
PUT /replace/*.

Request:
  - multipart: image (file)

Response:
  - 200: {success, newPath, url}
  - 404: NOT_FOUND: original file missing
*/
func (handler *Handler) replaceImage(writer http.ResponseWriter, request *http.Request) {
	uploads, err := ParseUploads(writer, request, fieldImage, 1, handler.store.processor.MaxBytes())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if len(uploads) == 0 {
		respond.Error(writer, request, apperr.ValidationError("No file uploaded"))
		return
	}

	newPath, err := handler.store.ReplaceImage(request.Context(), requestutil.Wildcard(request), uploads[0].Data)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, replaceResponse{Success: true, NewPath: newPath, URL: URL(newPath)})
}

// # Deletes

/*
DELETE /images/*.

Response:
  - 200: {success, message}
  - 403: PATH_ESCAPE
  - 404: NOT_FOUND
*/
func (handler *Handler) deleteImage(writer http.ResponseWriter, request *http.Request) {
	if err := handler.store.DeletePath(request.Context(), requestutil.Wildcard(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, successResponse{Success: true, Message: "Image deleted"})
}

/*
DELETE /chapters/{slug}/{number}.

Response:
  - 200: {success, message}
  - 404: NOT_FOUND: no such chapter folder
*/
func (handler *Handler) deleteChapter(writer http.ResponseWriter, request *http.Request) {
	err := handler.store.DeleteChapterFolder(request.Context(),
		requestutil.Param(request, "slug"),
		requestutil.Param(request, "number"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, successResponse{Success: true, Message: "Chapter images deleted"})
}

/*
GET /stats.

Response:
  - 200: {covers, chapters, total} each {size, sizeFormatted}
*/
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.store.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, stats)
}

// absoluteURL prefixes a root-relative URL with the scheme and host the
// client used.
func absoluteURL(request *http.Request, url string) string {
	scheme := "http"
	if request.TLS != nil {
		scheme = "https"
	}
	if forwarded := request.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + request.Host + url
}
