// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset_test

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	_ "image/jpeg"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/internal/asset"
	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/metrics"
)

const testMaxBytes = 1 << 20

func options(webpOutput bool) asset.ProcessorOptions {
	return asset.ProcessorOptions{
		MaxBytes:      testMaxBytes,
		MaxWidth:      1200,
		ConvertToWebP: webpOutput,
		WebPQuality:   85,
	}
}

func pngOfWidth(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x), G: 80, B: 160, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifOfWidth(t *testing.T, width int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, width, 4), palette.Plan9), nil))
	return buf.Bytes()
}

// widthOf decodes any stored format, WebP included.
func widthOf(t *testing.T, data []byte) int {
	t.Helper()
	if cfg, err := webp.DecodeConfig(bytes.NewReader(data)); err == nil {
		return cfg.Width
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width
}

func TestProcessor_Process(t *testing.T) {
	tests := []struct {
		name      string
		webp      bool
		input     func(t *testing.T) []byte
		wantExt   string
		wantWidth int
	}{
		{"wide_png_downscaled_to_jpeg", false, func(t *testing.T) []byte { return pngOfWidth(t, 2000, 40) }, asset.ExtJPEG, 1200},
		{"narrow_png_never_upscaled", false, func(t *testing.T) []byte { return pngOfWidth(t, 300, 40) }, asset.ExtJPEG, 300},
		{"webp_conversion", true, func(t *testing.T) []byte { return pngOfWidth(t, 1600, 40) }, asset.ExtWebP, 1200},
		{"gif_kept_under_webp_policy", true, func(t *testing.T) []byte { return gifOfWidth(t, 2400) }, asset.ExtGIF, 2400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := asset.NewProcessor(options(tt.webp))
			img, err := processor.Process(tt.input(t))
			require.NoError(t, err)

			assert.Equal(t, tt.wantExt, img.Ext)
			assert.Equal(t, tt.wantWidth, widthOf(t, img.Data))
		})
	}
}

func TestProcessor_GIFPassthroughIsByteIdentical(t *testing.T) {
	data := gifOfWidth(t, 64)
	before := testutil.ToFloat64(metrics.ImagesProcessed.WithLabelValues(asset.ExtGIF))

	img, err := asset.NewProcessor(options(false)).Process(data)
	require.NoError(t, err)

	assert.Equal(t, data, img.Data)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ImagesProcessed.WithLabelValues(asset.ExtGIF)))
}

func TestProcessor_WebPInputDecodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1500, 10)), &webp.Options{Quality: 80}))

	img, err := asset.NewProcessor(options(false)).Process(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, asset.ExtJPEG, img.Ext)
	assert.Equal(t, 1200, widthOf(t, img.Data))
}

func TestProcessor_Rejects(t *testing.T) {
	processor := asset.NewProcessor(options(false))

	tests := []struct {
		name  string
		input []byte
		code  string
	}{
		{"text", []byte("definitely not an image"), "VALIDATION_ERROR"},
		{"pdf", []byte("%PDF-1.7\n%âãÏÓ\n"), "VALIDATION_ERROR"},
		{"truncated_png", pngOfWidth(t, 50, 50)[:40], "VALIDATION_ERROR"},
		{"over_ceiling", bytes.Repeat([]byte{0xff}, testMaxBytes+1), "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := processor.Process(tt.input)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.code), err)
		})
	}
}
