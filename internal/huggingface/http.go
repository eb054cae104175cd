// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package huggingface

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/comicshelf/internal/platform/request"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
)

// Handler exposes the folder listing to the admin panel.
type Handler struct {
	client *Client
}

// NewHandler constructs a new [Handler].
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Routes returns the /api/huggingface router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/fetch-images", handler.fetchImages)
	return router
}

type fetchRequest struct {
	FolderURL string `json:"folder_url"`
}

/*
POST /api/huggingface/fetch-images.

Request:
  - body: {folder_url}

Response:
  - 200: {folder_url, count, image_urls}
  - 400: VALIDATION_ERROR: malformed folder URL
  - 4xx/5xx: UPSTREAM_ERROR with the upstream status
  - 503: SERVICE_UNAVAILABLE: breaker open or request budget exhausted
*/
func (handler *Handler) fetchImages(writer http.ResponseWriter, request *http.Request) {
	var body fetchRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.client.FetchImages(request.Context(), body.FolderURL)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, result)
}
