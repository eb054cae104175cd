// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"bytes"
	"fmt"
	"image"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/metrics"
)

// Accepted upload types, by sniffed MIME.
const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimeWebP = "image/webp"
	mimeGIF  = "image/gif"
)

// Output extensions.
const (
	ExtJPEG = "jpg"
	ExtWebP = "webp"
	ExtGIF  = "gif"
)

// ErrUnsupportedType is returned for uploads that are not JPEG, PNG, WebP or GIF.
var ErrUnsupportedType = apperr.ValidationError("Invalid file type. Only JPEG, PNG, WebP and GIF are allowed.")

// ProcessorOptions configures the image pipeline.
type ProcessorOptions struct {
	MaxBytes      int64
	MaxWidth      int
	ConvertToWebP bool
	WebPQuality   int
}

// Processor normalizes uploads before they are written to disk.
type Processor struct {
	opts ProcessorOptions
}

// Image is a processed upload ready to be written.
type Image struct {
	Data []byte
	Ext  string
}

// NewProcessor constructs a [Processor].
func NewProcessor(opts ProcessorOptions) *Processor {
	return &Processor{opts: opts}
}

// OutputExt is the extension a non-GIF upload is written with.
func (processor *Processor) OutputExt() string {
	if processor.opts.ConvertToWebP {
		return ExtWebP
	}
	return ExtJPEG
}

// MaxBytes is the per-file size ceiling.
func (processor *Processor) MaxBytes() int64 {
	return processor.opts.MaxBytes
}

/*
Process sniffs, downscales and re-encodes one upload.

Description: GIFs are stored byte-for-byte so animations survive. Everything
else is decoded, shrunk to MaxWidth when wider (never enlarged) and encoded as
WebP when conversion is on, JPEG otherwise.

Returns:
  - *Image: encoded bytes and their extension
  - error: PAYLOAD_TOO_LARGE, VALIDATION_ERROR for unsupported or corrupt input
*/
func (processor *Processor) Process(data []byte) (*Image, error) {
	if int64(len(data)) > processor.opts.MaxBytes {
		return nil, apperr.PayloadTooLarge(processor.opts.MaxBytes)
	}

	detected := mimetype.Detect(data)
	switch {
	case detected.Is(mimeGIF):
		metrics.ImagesProcessed.WithLabelValues(ExtGIF).Inc()
		return &Image{Data: data, Ext: ExtGIF}, nil
	case detected.Is(mimeJPEG), detected.Is(mimePNG), detected.Is(mimeWebP):
	default:
		return nil, ErrUnsupportedType
	}

	start := time.Now()
	defer func() { metrics.ImageProcessingDuration.Observe(time.Since(start).Seconds()) }()

	img, err := decode(data, detected)
	if err != nil {
		return nil, apperr.ValidationError("Image could not be decoded").WithCause(err)
	}

	if img.Bounds().Dx() > processor.opts.MaxWidth {
		img = imaging.Resize(img, processor.opts.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	ext := processor.OutputExt()
	if ext == ExtWebP {
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(processor.opts.WebPQuality)})
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(constants.JPEGQuality))
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("asset: encode %s: %w", ext, err))
	}

	metrics.ImagesProcessed.WithLabelValues(ext).Inc()
	return &Image{Data: buf.Bytes(), Ext: ext}, nil
}

func decode(data []byte, detected *mimetype.MIME) (image.Image, error) {
	if detected.Is(mimeWebP) {
		return webp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}
