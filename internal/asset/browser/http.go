// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package browser

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicshelf/internal/asset"
	requestutil "github.com/taibuivan/comicshelf/internal/platform/request"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
)

// Handler exposes the [Browser] to the admin panel.
type Handler struct {
	browser *Browser
	store   *asset.Store
}

// NewHandler constructs a new [Handler].
func NewHandler(browser *Browser, store *asset.Store) *Handler {
	return &Handler{browser: browser, store: store}
}

// Register adds the file manager routes to router. The caller applies the
// admin guard.
func (handler *Handler) Register(router chi.Router) {
	router.Get("/browse", handler.list)
	router.Get("/browse/*", handler.list)
	router.Post("/folder", handler.createFolder)
	router.Delete("/folder/*", handler.deleteFolder)
	router.Put("/rename", handler.rename)
	router.Post("/upload/to-folder", handler.uploadToFolder)
}

/*
GET /browse/*.

Response:
  - 200: {path, parentPath, folders, files, totalFolders, totalFiles}
  - 403: PATH_ESCAPE
  - 404: NOT_FOUND
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	listing, err := handler.browser.List(request.Context(), requestutil.Wildcard(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, listing)
}

type folderRequest struct {
	Path string `json:"path"`
}

type folderResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
}

/*
POST /folder.

Request:
  - body: {path}

Response:
  - 200: {success, path}
  - 409: CONFLICT: folder exists
*/
func (handler *Handler) createFolder(writer http.ResponseWriter, request *http.Request) {
	var body folderRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.browser.CreateFolder(request.Context(), body.Path); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, folderResponse{Success: true, Path: body.Path})
}

/*
DELETE /folder/*.

Response:
  - 200: {success, message}
  - 403: FORBIDDEN for covers, chapters and temp
*/
func (handler *Handler) deleteFolder(writer http.ResponseWriter, request *http.Request) {
	if err := handler.browser.DeleteFolder(request.Context(), requestutil.Wildcard(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, folderResponse{Success: true, Message: "Folder deleted"})
}

type renameRequest struct {
	OldPath string `json:"oldPath"`
	NewName string `json:"newName"`
}

type renameResponse struct {
	Success bool   `json:"success"`
	NewPath string `json:"newPath"`
}

/*
PUT /rename.

Request:
  - body: {oldPath, newName}

Response:
  - 200: {success, newPath}
  - 404: NOT_FOUND
  - 409: CONFLICT: destination exists
*/
func (handler *Handler) rename(writer http.ResponseWriter, request *http.Request) {
	var body renameRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	newPath, err := handler.browser.Rename(request.Context(), body.OldPath, body.NewName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, renameResponse{Success: true, NewPath: newPath})
}

type uploadResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Files   []UploadedFile `json:"files"`
}

/*
POST /upload/to-folder.

Request:
  - multipart: images (files), folder_path

Response:
  - 200: {success, count, files: [{name, url}]}
*/
func (handler *Handler) uploadToFolder(writer http.ResponseWriter, request *http.Request) {
	uploads, err := asset.ParseUploads(writer, request, "images", handler.store.MaxFiles(), handler.store.Processor().MaxBytes())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	files, err := handler.browser.UploadToFolder(request.Context(), request.FormValue("folder_path"), uploads)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, uploadResponse{Success: true, Count: len(files), Files: files})
}
