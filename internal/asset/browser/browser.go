// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package browser is the admin panel's file manager over the upload root.

Paths are virtual: "/" is the upload root and every path is resolved through
[asset.Store.Resolve]. The root view only shows covers and chapters.
*/
package browser

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
	"time"

	"github.com/taibuivan/comicshelf/internal/asset"
	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
	"github.com/taibuivan/comicshelf/internal/platform/ctxutil"
	"github.com/taibuivan/comicshelf/internal/platform/validate"
	"github.com/taibuivan/comicshelf/pkg/natsort"
)

// Entry types.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
)

// imageExts are the files a listing shows.
var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// Folder is a listed directory.
type Folder struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Path       string     `json:"path"`
	Modified   *time.Time `json:"modified"`
	ChildCount int        `json:"childCount"`
}

// File is a listed image.
type File struct {
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Path          string    `json:"path"`
	URL           string    `json:"url"`
	Size          int64     `json:"size"`
	SizeFormatted string    `json:"sizeFormatted"`
	Modified      time.Time `json:"modified"`
}

// Listing is the content of one folder.
type Listing struct {
	Path         string   `json:"path"`
	ParentPath   *string  `json:"parentPath"`
	Folders      []Folder `json:"folders"`
	Files        []File   `json:"files"`
	TotalFolders int      `json:"totalFolders"`
	TotalFiles   int      `json:"totalFiles"`
}

// UploadedFile is one file written by [Browser.UploadToFolder].
type UploadedFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Browser implements the file manager operations.
type Browser struct {
	store *asset.Store
}

// New constructs a [Browser] over store.
func New(store *asset.Store) *Browser {
	return &Browser{store: store}
}

// clean normalizes a virtual path to its slash form without leading or
// trailing slashes. The root is "".
func clean(virtual string) string {
	return strings.Trim(path.Clean("/"+filepath.ToSlash(virtual)), "/")
}

func display(virtual string) string {
	return "/" + virtual
}

// # Listing

/*
List returns the folders and images directly under virtual.

Description: Both lists are in natural order. The root lists only covers and
chapters, even when other folders exist on disk.

Returns:
  - *Listing: entries, parent path and totals
  - error: NOT_FOUND, PATH_ESCAPE
*/
func (browser *Browser) List(ctx context.Context, virtual string) (*Listing, error) {
	full, err := browser.store.Resolve(virtual)
	if err != nil {
		return nil, err
	}

	rel := clean(virtual)
	if rel == "" {
		return browser.listRoot()
	}

	info, err := asset.Stat(full, "Folder")
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, apperr.NotFound("Folder")
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("browser: read %q: %w", rel, err))
	}

	listing := &Listing{Path: display(rel), Folders: []Folder{}, Files: []File{}}
	parent := display(clean(path.Dir(rel)))
	listing.ParentPath = &parent

	for _, entry := range entries {
		child := path.Join(rel, entry.Name())
		switch {
		case entry.IsDir():
			folder, err := browser.folder(filepath.Join(full, entry.Name()), child)
			if err != nil {
				return nil, err
			}
			listing.Folders = append(listing.Folders, *folder)
		case entry.Type().IsRegular() && imageExts[strings.ToLower(filepath.Ext(entry.Name()))]:
			info, err := entry.Info()
			if err != nil {
				return nil, apperr.Internal(err)
			}
			listing.Files = append(listing.Files, File{
				Name:          entry.Name(),
				Type:          TypeFile,
				Path:          display(child),
				URL:           asset.URL(child),
				Size:          info.Size(),
				SizeFormatted: asset.FormatSize(info.Size()),
				Modified:      info.ModTime(),
			})
		}
	}

	natsort.SortBy(listing.Folders, func(folder Folder) string { return folder.Name })
	natsort.SortBy(listing.Files, func(file File) string { return file.Name })

	listing.TotalFolders = len(listing.Folders)
	listing.TotalFiles = len(listing.Files)

	ctxutil.GetLogger(ctx).DebugContext(ctx, "folder_listed",
		slog.String("path", listing.Path),
		slog.Int("folders", listing.TotalFolders),
		slog.Int("files", listing.TotalFiles),
	)
	return listing, nil
}

func (browser *Browser) listRoot() (*Listing, error) {
	listing := &Listing{Path: "/", Folders: []Folder{}, Files: []File{}}
	for _, name := range []string{constants.FolderCovers, constants.FolderChapters} {
		folder, err := browser.folder(filepath.Join(browser.store.Root(), name), name)
		if err != nil {
			return nil, err
		}
		listing.Folders = append(listing.Folders, *folder)
	}
	listing.TotalFolders = len(listing.Folders)
	return listing, nil
}

// folder describes one directory. A missing directory is listed without a
// modification time.
func (browser *Browser) folder(full, virtual string) (*Folder, error) {
	folder := &Folder{Name: path.Base(virtual), Type: TypeFolder, Path: display(virtual)}

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return folder, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	modified := info.ModTime()
	folder.Modified = &modified

	children, err := os.ReadDir(full)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("browser: read %q: %w", virtual, err))
	}
	folder.ChildCount = len(children)
	return folder, nil
}

// # Folder Management

/*
CreateFolder makes a folder and any missing parents.

Returns:
  - error: VALIDATION_ERROR, CONFLICT when it exists, PATH_ESCAPE
*/
func (browser *Browser) CreateFolder(ctx context.Context, virtual string) error {
	if strings.TrimSpace(virtual) == "" {
		return validate.RequiredError("path", "path is required")
	}

	full, err := browser.store.Resolve(virtual)
	if err != nil {
		return err
	}
	if clean(virtual) == "" {
		return apperr.Conflict("Folder already exists")
	}

	if _, err := os.Stat(full); err == nil {
		return apperr.Conflict("Folder already exists")
	} else if !errors.Is(err, fs.ErrNotExist) {
		return apperr.Internal(err)
	}

	if err := os.MkdirAll(full, 0o755); err != nil {
		return apperr.Internal(fmt.Errorf("browser: mkdir %q: %w", virtual, err))
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "folder_created", slog.String("path", display(clean(virtual))))
	return nil
}

/*
DeleteFolder removes a folder and everything in it.

Returns:
  - error: FORBIDDEN for the root folders, NOT_FOUND, PATH_ESCAPE
*/
func (browser *Browser) DeleteFolder(ctx context.Context, virtual string) error {
	full, err := browser.store.Resolve(virtual)
	if err != nil {
		return err
	}
	if asset.IsRootFolder(virtual) {
		return apperr.Forbidden("Cannot delete root folders")
	}

	info, err := asset.Stat(full, "Folder")
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return apperr.NotFound("Folder")
	}

	if err := os.RemoveAll(full); err != nil {
		return apperr.Internal(fmt.Errorf("browser: remove %q: %w", virtual, err))
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "folder_deleted", slog.String("path", display(clean(virtual))))
	return nil
}

/*
Rename gives a file or folder a new name in the same parent.

Parameters:
  - oldPath: virtual path of the entry
  - newName: a single path element

Returns:
  - string: new virtual path, without a leading slash
  - error: VALIDATION_ERROR, NOT_FOUND, CONFLICT, FORBIDDEN for root folders, PATH_ESCAPE
*/
func (browser *Browser) Rename(ctx context.Context, oldPath, newName string) (string, error) {
	if strings.TrimSpace(oldPath) == "" || strings.TrimSpace(newName) == "" {
		return "", apperr.ValidationError("oldPath and newName are required")
	}
	if newName == "." || newName == ".." || strings.ContainsAny(newName, "/\\\x00") {
		return "", validate.RequiredError("newName", "newName must be a single name")
	}

	source, err := browser.store.Resolve(oldPath)
	if err != nil {
		return "", err
	}
	rel := clean(oldPath)
	target := path.Join(path.Dir(rel), newName)
	destination, err := browser.store.Resolve(target)
	if err != nil {
		return "", err
	}
	if asset.IsRootFolder(rel) {
		return "", apperr.Forbidden("Cannot rename root folders")
	}

	if _, err := asset.Stat(source, "File or folder"); err != nil {
		return "", err
	}
	if _, err := os.Lstat(destination); err == nil {
		return "", apperr.Conflict("A file or folder with that name already exists")
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", apperr.Internal(err)
	}

	if err := os.Rename(source, destination); err != nil {
		return "", apperr.Internal(fmt.Errorf("browser: rename %q: %w", rel, err))
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "entry_renamed",
		slog.String("old_path", display(rel)),
		slog.String("new_path", display(target)),
	)
	return target, nil
}

/*
UploadToFolder processes files into an arbitrary folder, keeping each file's
base name. The extension follows the encoder.

Returns:
  - []UploadedFile: written names and URLs in submission order
  - error: VALIDATION_ERROR, PAYLOAD_TOO_LARGE, PATH_ESCAPE
*/
func (browser *Browser) UploadToFolder(ctx context.Context, virtual string, files []asset.Upload) ([]UploadedFile, error) {
	if len(files) == 0 {
		return nil, apperr.ValidationError("No files uploaded")
	}
	if strings.TrimSpace(virtual) == "" {
		return nil, validate.RequiredError("folder_path", "folder_path is required")
	}

	dir, err := browser.store.Resolve(virtual)
	if err != nil {
		return nil, err
	}
	rel := clean(virtual)

	uploaded := make([]UploadedFile, 0, len(files))
	for _, upload := range files {
		base := baseName(upload.Name)
		if base == "" {
			return nil, validate.RequiredError("images", "Every file needs a name")
		}

		img, err := browser.store.Processor().Process(upload.Data)
		if err != nil {
			return nil, err
		}

		name := base + "." + img.Ext
		if err := asset.WriteFile(filepath.Join(dir, name), img.Data); err != nil {
			return nil, apperr.Internal(fmt.Errorf("browser: write %q: %w", name, err))
		}
		uploaded = append(uploaded, UploadedFile{Name: name, URL: asset.URL(path.Join(rel, name))})
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "folder_upload_saved",
		slog.String("path", display(rel)),
		slog.Int("count", len(uploaded)),
	)
	return uploaded, nil
}

// baseName strips any client directory and the extension from an upload name.
func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
