// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
	requestutil "github.com/taibuivan/comicshelf/internal/platform/request"
	"github.com/taibuivan/comicshelf/internal/platform/respond"
)

/*
GET /images/*.

Description: Serves one stored file with a 30 day Cache-Control, a weak ETag
built from size and modification time, and Last-Modified. Conditional and
range requests are answered by [http.ServeContent]. Folders are never listed.

Response:
  - 200/206/304: file bytes
  - 403: PATH_ESCAPE
  - 404: NOT_FOUND
*/
func (handler *Handler) serveImage(writer http.ResponseWriter, request *http.Request) {
	full, err := handler.store.Resolve(requestutil.Wildcard(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	file, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		respond.Error(writer, request, apperr.NotFound("Image"))
		return
	}
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	if info.IsDir() {
		respond.Error(writer, request, apperr.NotFound("Image"))
		return
	}

	header := writer.Header()
	header.Set("Cache-Control", constants.StaticCacheControl)
	header.Set("ETag", fmt.Sprintf(`W/"%x-%x"`, info.Size(), info.ModTime().UnixNano()))
	http.ServeContent(writer, request, info.Name(), info.ModTime(), file)
}
