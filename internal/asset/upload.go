// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before parts spill to temp files.
const multipartMemory = 32 << 20

// multipartOverhead covers form fields and part headers on top of file bytes.
const multipartOverhead = 1 << 20

/*
ParseUploads parses a multipart request and reads the files of one field.

Parameters:
  - writer: used to cap the body size
  - request: multipart/form-data request
  - field: form field holding the files
  - maxFiles: ceiling on the number of files
  - maxBytes: per-file ceiling

Returns:
  - []Upload: files in submission order (may be empty)
  - error: VALIDATION_ERROR for a malformed body or too many files,
    PAYLOAD_TOO_LARGE for an oversized file
*/
func ParseUploads(writer http.ResponseWriter, request *http.Request, field string, maxFiles int, maxBytes int64) ([]Upload, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, int64(maxFiles)*maxBytes+multipartOverhead)

	if err := request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.PayloadTooLarge(maxBytes)
		}
		return nil, apperr.ValidationError("Expected a multipart/form-data body").WithCause(err)
	}

	headers := request.MultipartForm.File[field]
	if len(headers) > maxFiles {
		return nil, apperr.ValidationError(fmt.Sprintf("At most %d files per upload", maxFiles))
	}

	uploads := make([]Upload, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxBytes {
			return nil, apperr.PayloadTooLarge(maxBytes)
		}
		data, err := readPart(header)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("asset: read upload %q: %w", header.Filename, err))
		}
		uploads = append(uploads, Upload{Name: header.Filename, Data: data})
	}
	return uploads, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
