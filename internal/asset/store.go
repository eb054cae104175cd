// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package asset implements the image server's storage: processed cover and
chapter uploads on the local filesystem, static delivery and deletion.

# Path Safety

Every operation that takes a client path goes through [Store.Resolve]. A path
that does not canonicalize to a descendant of the upload root is rejected with
PATH_ESCAPE before any filesystem call is made.

# Layout

	<root>/covers/<slug>.<ext>
	<root>/chapters/<slug>/<number>/001.<ext>
	<root>/temp/
*/
package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/taibuivan/comicshelf/internal/platform/apperr"
	"github.com/taibuivan/comicshelf/internal/platform/constants"
)

// RootFolders are created at startup and can never be deleted or renamed.
var RootFolders = []string{constants.FolderCovers, constants.FolderChapters, constants.FolderTemp}

// Store owns the upload root.
type Store struct {
	root      string
	processor *Processor
	maxFiles  int
}

/*
NewStore prepares the upload root and its fixed folders.

Parameters:
  - root: upload directory, created if missing
  - processor: image pipeline for every write
  - maxFiles: ceiling on files per multi-file upload

Returns:
  - *Store: ready to serve
  - error: when the root cannot be created or resolved
*/
func NewStore(root string, processor *Processor, maxFiles int) (*Store, error) {
	for _, folder := range RootFolders {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("asset: create %s: %w", folder, err)
		}
	}

	absolute, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("asset: resolve root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return nil, fmt.Errorf("asset: resolve root: %w", err)
	}

	return &Store{root: resolved, processor: processor, maxFiles: maxFiles}, nil
}

// Root returns the canonical upload directory.
func (store *Store) Root() string { return store.root }

// Processor returns the image pipeline shared by every upload route.
func (store *Store) Processor() *Processor { return store.processor }

// MaxFiles is the ceiling on files per multi-file upload.
func (store *Store) MaxFiles() int { return store.maxFiles }

// # Path Resolution

/*
Resolve maps a virtual path ("chapters/solo/1", "/covers/x.jpg") to an
absolute path inside the upload root.

Description: The empty path and "/" resolve to the root itself. Symlinks on the
way are followed and the real location is checked again.

Returns:
  - string: absolute filesystem path
  - error: PATH_ESCAPE when the result falls outside the root
*/
func (store *Store) Resolve(virtual string) (string, error) {
	if strings.ContainsRune(virtual, 0) {
		return "", apperr.PathEscape(virtual)
	}

	full := filepath.Join(store.root, filepath.FromSlash(virtual))
	if !store.contains(full) {
		return "", apperr.PathEscape(virtual)
	}

	resolved, err := store.realPath(full)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("asset: resolve %q: %w", virtual, err))
	}
	if !store.contains(resolved) {
		return "", apperr.PathEscape(virtual)
	}
	return full, nil
}

// realPath follows symlinks on the deepest existing ancestor of full, so a
// linked parent cannot redirect a write that creates new entries.
func (store *Store) realPath(full string) (string, error) {
	var missing []string
	current := full
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return full, nil
		}
		missing = append([]string{filepath.Base(current)}, missing...)
		current = parent
	}
}

func (store *Store) contains(full string) bool {
	rel, err := filepath.Rel(store.root, full)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Virtual converts an absolute path under the root back to its slash-separated
// form without a leading slash.
func (store *Store) Virtual(full string) string {
	rel, err := filepath.Rel(store.root, full)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// URL returns the public static URL of a virtual path.
func URL(virtual string) string {
	return path.Join("/", strings.TrimSuffix(constants.ImageURLPrefix, "/"), virtual)
}

// IsRootFolder reports whether virtual names one of [RootFolders] or the root.
func IsRootFolder(virtual string) bool {
	clean := strings.Trim(path.Clean("/"+virtual), "/")
	if clean == "" {
		return true
	}
	for _, folder := range RootFolders {
		if clean == folder {
			return true
		}
	}
	return false
}

// # File Helpers

// WriteFile writes data atomically through a temp file in the same directory.
func WriteFile(full string, data []byte) error {
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), full)
}

// Stat returns the FileInfo of an existing path or NOT_FOUND naming resource.
func Stat(full, resource string) (fs.FileInfo, error) {
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound(resource)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return info, nil
}
