// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/validate"
	"github.com/taibuivan/comicshelf/pkg/convert"
	"github.com/taibuivan/comicshelf/pkg/natsort"
	"github.com/taibuivan/comicshelf/pkg/slug"
)

// Upload is one file taken from a multipart request.
type Upload struct {
	Name string
	Data []byte
}

// coverExts are every extension a cover may have been written with.
var coverExts = []string{ExtJPEG, ExtWebP, ExtGIF}

// # Covers

/*
SaveCover processes an upload and stores it as the cover of a comic.

Description: The slug input is normalized, so a title works as well. A cover
stored earlier under another extension is removed.

Returns:
  - string: public URL (/images/covers/<slug>.<ext>)
  - error: VALIDATION_ERROR, PAYLOAD_TOO_LARGE
*/
func (store *Store) SaveCover(ctx context.Context, comicSlug string, data []byte) (string, error) {
	name := slug.From(comicSlug)
	if name == "" {
		return "", validate.RequiredError("comic_slug", "comic_slug is required")
	}

	img, err := store.processor.Process(data)
	if err != nil {
		return "", err
	}

	virtual := path.Join(constants.FolderCovers, name+"."+img.Ext)
	full, err := store.Resolve(virtual)
	if err != nil {
		return "", err
	}
	if err := WriteFile(full, img.Data); err != nil {
		return "", apperr.Internal(fmt.Errorf("asset: write cover: %w", err))
	}

	for _, ext := range coverExts {
		if ext == img.Ext {
			continue
		}
		stale := filepath.Join(filepath.Dir(full), name+"."+ext)
		if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "stale_cover_remove_failed",
				slog.String("path", stale),
				slog.String("error", err.Error()),
			)
		}
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "cover_saved", slog.String("path", virtual))
	return URL(virtual), nil
}

// # Chapters

/*
SaveChapterImages replaces the pages of one chapter.

Description: Files are ordered by natural filename order and written as
001.<ext>, 002.<ext>, ... after the chapter folder is cleared. Every file is
processed before the folder is touched, so a bad upload leaves the previous
pages in place.

Returns:
  - []string: public URLs in page order
  - error: VALIDATION_ERROR, PAYLOAD_TOO_LARGE
*/
func (store *Store) SaveChapterImages(ctx context.Context, comicSlug, number string, files []Upload) ([]string, error) {
	name := slug.From(comicSlug)
	parsed, numberErr := convert.ParseChapterNumber(number)

	var v validate.Validator
	v.Required("comic_slug", name)
	v.Required("chapter_number", number)
	v.Custom("chapter_number", number != "" && numberErr != nil, "chapter_number must be a non-negative number")
	v.Custom("images", len(files) == 0, "No files uploaded")
	v.Custom("images", len(files) > store.maxFiles, fmt.Sprintf("At most %d files per upload", store.maxFiles))
	if err := v.Err(); err != nil {
		return nil, err
	}

	ordered := make([]Upload, len(files))
	copy(ordered, files)
	natsort.SortBy(ordered, func(upload Upload) string { return upload.Name })

	images := make([]*Image, 0, len(ordered))
	for _, upload := range ordered {
		img, err := store.processor.Process(upload.Data)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	folder := path.Join(constants.FolderChapters, name, convert.FormatChapterNumber(parsed))
	dir, err := store.Resolve(folder)
	if err != nil {
		return nil, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return nil, apperr.Internal(fmt.Errorf("asset: clear chapter folder: %w", err))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Internal(fmt.Errorf("asset: create chapter folder: %w", err))
	}

	urls := make([]string, 0, len(images))
	for i, img := range images {
		file := fmt.Sprintf("%03d.%s", i+1, img.Ext)
		if err := WriteFile(filepath.Join(dir, file), img.Data); err != nil {
			return nil, apperr.Internal(fmt.Errorf("asset: write page: %w", err))
		}
		urls = append(urls, URL(path.Join(folder, file)))
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "chapter_images_saved",
		slog.String("folder", folder),
		slog.Int("count", len(urls)),
	)
	return urls, nil
}

/*
DeleteChapterFolder removes every page of one chapter.

Description: The number is re-formatted so "7.50" and "7.5" address the same
folder the catalog API asks to delete.

Returns:
  - error: NOT_FOUND when the folder does not exist, PATH_ESCAPE for crafted slugs
*/
func (store *Store) DeleteChapterFolder(ctx context.Context, comicSlug, number string) error {
	if comicSlug == "" || comicSlug == "." || comicSlug == ".." || strings.ContainsAny(comicSlug, `/\`) {
		return apperr.PathEscape(comicSlug)
	}
	parsed, err := convert.ParseChapterNumber(number)
	if err != nil {
		return validate.RequiredError("chapter_number", "chapter_number must be a non-negative number")
	}

	folder := path.Join(constants.FolderChapters, comicSlug, convert.FormatChapterNumber(parsed))
	dir, err := store.Resolve(folder)
	if err != nil {
		return err
	}

	info, err := Stat(dir, "Chapter folder")
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return apperr.NotFound("Chapter folder")
	}
	if err := os.RemoveAll(dir); err != nil {
		return apperr.Internal(fmt.Errorf("asset: remove chapter folder: %w", err))
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "chapter_folder_deleted", slog.String("folder", folder))
	return nil
}

// # Single Files

/*
DeletePath removes one file.

Returns:
  - error: NOT_FOUND when missing, VALIDATION_ERROR for folders, PATH_ESCAPE
*/
func (store *Store) DeletePath(ctx context.Context, virtual string) error {
	full, err := store.Resolve(virtual)
	if err != nil {
		return err
	}

	info, err := Stat(full, "Image")
	if err != nil {
		return err
	}
	if info.IsDir() {
		return apperr.ValidationError("Path is a folder")
	}
	if err := os.Remove(full); err != nil {
		return apperr.Internal(fmt.Errorf("asset: remove file: %w", err))
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "image_deleted", slog.String("path", store.Virtual(full)))
	return nil
}

/*
ReplaceImage swaps one stored image for a new upload under the same base name.

Description: The extension follows the encoder, so "001.png" may come back as
"001.jpg". The upload is processed before the original is removed.

Returns:
  - string: new virtual path (no leading slash)
  - error: NOT_FOUND when the original is missing, PATH_ESCAPE
*/
func (store *Store) ReplaceImage(ctx context.Context, virtual string, data []byte) (string, error) {
	full, err := store.Resolve(virtual)
	if err != nil {
		return "", err
	}

	info, err := Stat(full, "Original file")
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", apperr.ValidationError("Path is a folder")
	}

	img, err := store.processor.Process(data)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(full), filepath.Ext(full))
	target := filepath.Join(filepath.Dir(full), base+"."+img.Ext)

	if err := os.Remove(full); err != nil {
		return "", apperr.Internal(fmt.Errorf("asset: remove original: %w", err))
	}
	if err := WriteFile(target, img.Data); err != nil {
		return "", apperr.Internal(fmt.Errorf("asset: write replacement: %w", err))
	}

	newPath := store.Virtual(target)
	ctxutil.GetLogger(ctx).InfoContext(ctx, "image_replaced",
		slog.String("old_path", store.Virtual(full)),
		slog.String("new_path", newPath),
	)
	return newPath, nil
}

// # Usage

// Usage is the byte total of one area of the upload root.
type Usage struct {
	Size          int64  `json:"size"`
	SizeFormatted string `json:"sizeFormatted"`
}

// Stats reports disk usage per area.
type Stats struct {
	Covers   Usage `json:"covers"`
	Chapters Usage `json:"chapters"`
	Total    Usage `json:"total"`
}

// Stats walks the covers and chapters folders. Nothing is cached.
func (store *Store) Stats(ctx context.Context) (*Stats, error) {
	covers, err := store.folderSize(ctx, constants.FolderCovers)
	if err != nil {
		return nil, err
	}
	chapters, err := store.folderSize(ctx, constants.FolderChapters)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Covers:   usage(covers),
		Chapters: usage(chapters),
		Total:    usage(covers + chapters),
	}, nil
}

func (store *Store) folderSize(ctx context.Context, folder string) (int64, error) {
	var total int64
	err := filepath.WalkDir(filepath.Join(store.root, folder), func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.Type().IsRegular() {
			info, err := entry.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("asset: size of %s: %w", folder, err))
	}
	return total, nil
}

func usage(size int64) Usage {
	return Usage{Size: size, SizeFormatted: FormatSize(size)}
}

// FormatSize renders a byte count for people ("1.5 MB").
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}
