// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package asset_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/internal/asset"
	"github.com/taibuivan/comicshelf/internal/platform/apperr"
)

func newStore(t *testing.T, root string, webpOutput bool) *asset.Store {
	t.Helper()
	store, err := asset.NewStore(root, asset.NewProcessor(options(webpOutput)), 5)
	require.NoError(t, err)
	return store
}

func writeRaw(t *testing.T, store *asset.Store, virtual string, data []byte) string {
	t.Helper()
	full := filepath.Join(store.Root(), filepath.FromSlash(virtual))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o644))
	return full
}

func TestNewStore_CreatesRootFolders(t *testing.T) {
	store := newStore(t, filepath.Join(t.TempDir(), "uploads"), false)
	for _, folder := range asset.RootFolders {
		assert.DirExists(t, filepath.Join(store.Root(), folder))
	}
}

func TestResolve(t *testing.T) {
	store := newStore(t, t.TempDir(), false)

	tests := []struct {
		virtual string
		want    string
	}{
		{"", ""},
		{"/", ""},
		{"covers/x.jpg", "covers/x.jpg"},
		{"/chapters/solo/1/", "chapters/solo/1"},
		{"chapters/../covers/a.jpg", "covers/a.jpg"},
		{"/etc/passwd", "etc/passwd"},
	}
	for _, tt := range tests {
		t.Run(tt.virtual, func(t *testing.T) {
			full, err := store.Resolve(tt.virtual)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(store.Root(), filepath.FromSlash(tt.want)), full)
		})
	}
}

func TestResolve_RejectsEscapes(t *testing.T) {
	store := newStore(t, t.TempDir(), false)

	for _, virtual := range []string{
		"..",
		"../outside.jpg",
		"covers/../../outside",
		"chapters/a/../../../x",
		"covers/x\x00.jpg",
	} {
		t.Run(virtual, func(t *testing.T) {
			_, err := store.Resolve(virtual)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, "PATH_ESCAPE"))
		})
	}
}

func TestResolve_AbsolutePathsStayUnderRoot(t *testing.T) {
	store := newStore(t, t.TempDir(), false)

	for _, virtual := range []string{"/etc/passwd", "//etc/passwd", "/covers/../etc/passwd"} {
		t.Run(virtual, func(t *testing.T) {
			full, err := store.Resolve(virtual)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(store.Root(), "etc", "passwd"), full)
		})
	}

	for _, virtual := range []string{"/../etc/passwd", "//../../etc/passwd"} {
		t.Run(virtual, func(t *testing.T) {
			_, err := store.Resolve(virtual)
			assert.True(t, apperr.HasCode(err, "PATH_ESCAPE"))
		})
	}

	err := store.DeletePath(context.Background(), "/etc/passwd")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"), "confined to the root, where no such file exists")
}

func TestResolve_RejectsSymlinkOut(t *testing.T) {
	store := newStore(t, t.TempDir(), false)
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(store.Root(), "covers", "link")))

	for _, virtual := range []string{"covers/link", "covers/link/secret.jpg", "covers/link/new/deeper.jpg"} {
		_, err := store.Resolve(virtual)
		assert.True(t, apperr.HasCode(err, "PATH_ESCAPE"), virtual)
	}
}

func TestSaveCover(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	jpegStore := newStore(t, root, false)

	url, err := jpegStore.SaveCover(ctx, "Solo Leveling", pngOfWidth(t, 1800, 20))
	require.NoError(t, err)
	assert.Equal(t, "/images/covers/solo-leveling.jpg", url)

	jpegPath := filepath.Join(jpegStore.Root(), "covers", "solo-leveling.jpg")
	data, err := os.ReadFile(jpegPath)
	require.NoError(t, err)
	assert.Equal(t, 1200, widthOf(t, data))

	// Same root, new policy: the old extension must not linger.
	webpStore := newStore(t, root, true)
	url, err = webpStore.SaveCover(ctx, "solo-leveling", pngOfWidth(t, 600, 20))
	require.NoError(t, err)
	assert.Equal(t, "/images/covers/solo-leveling.webp", url)
	assert.NoFileExists(t, jpegPath)
	assert.FileExists(t, filepath.Join(webpStore.Root(), "covers", "solo-leveling.webp"))
}

func TestSaveCover_Validation(t *testing.T) {
	store := newStore(t, t.TempDir(), false)

	_, err := store.SaveCover(context.Background(), "  !!  ", pngOfWidth(t, 10, 10))
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = store.SaveCover(context.Background(), "ok", []byte("plain text"))
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

func TestSaveChapterImages_NaturalOrderAndNumbering(t *testing.T) {
	store := newStore(t, t.TempDir(), false)
	stale := writeRaw(t, store, "chapters/tower/7.5/099.jpg", []byte("old page"))

	urls, err := store.SaveChapterImages(context.Background(), "Tower", "7.50", []asset.Upload{
		{Name: "page10.png", Data: pngOfWidth(t, 110, 5)},
		{Name: "page2.png", Data: pngOfWidth(t, 102, 5)},
		{Name: "Page1.png", Data: pngOfWidth(t, 101, 5)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/images/chapters/tower/7.5/001.jpg",
		"/images/chapters/tower/7.5/002.jpg",
		"/images/chapters/tower/7.5/003.jpg",
	}, urls)
	assert.NoFileExists(t, stale)

	for i, width := range []int{101, 102, 110} {
		data, err := os.ReadFile(filepath.Join(store.Root(), "chapters", "tower", "7.5", []string{"001.jpg", "002.jpg", "003.jpg"}[i]))
		require.NoError(t, err)
		assert.Equal(t, width, widthOf(t, data))
	}
}

func TestSaveChapterImages_BadFileKeepsExistingPages(t *testing.T) {
	store := newStore(t, t.TempDir(), false)
	existing := writeRaw(t, store, "chapters/tower/1/001.jpg", []byte("keep me"))

	_, err := store.SaveChapterImages(context.Background(), "tower", "1", []asset.Upload{
		{Name: "1.png", Data: pngOfWidth(t, 10, 10)},
		{Name: "2.txt", Data: []byte("not an image")},
	})
	require.Error(t, err)
	assert.FileExists(t, existing)
}

func TestSaveChapterImages_Validation(t *testing.T) {
	store := newStore(t, t.TempDir(), false)
	one := []asset.Upload{{Name: "1.png", Data: pngOfWidth(t, 10, 10)}}
	six := make([]asset.Upload, 6)
	for i := range six {
		six[i] = one[0]
	}

	tests := []struct {
		name   string
		slug   string
		number string
		files  []asset.Upload
	}{
		{"missing_slug", "", "1", one},
		{"missing_number", "tower", "", one},
		{"negative_number", "tower", "-1", one},
		{"non_numeric_number", "tower", "one", one},
		{"no_files", "tower", "1", nil},
		{"too_many_files", "tower", "1", six},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveChapterImages(context.Background(), tt.slug, tt.number, tt.files)
			assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"), err)
		})
	}
}

func TestDeleteChapterFolder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir(), false)
	writeRaw(t, store, "chapters/tower/2/001.jpg", []byte("x"))

	err := store.DeleteChapterFolder(ctx, "tower", "2.0")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(store.Root(), "chapters", "tower", "2"))

	err = store.DeleteChapterFolder(ctx, "tower", "2")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	err = store.DeleteChapterFolder(ctx, "..", "2")
	assert.True(t, apperr.HasCode(err, "PATH_ESCAPE"))

	err = store.DeleteChapterFolder(ctx, "tower", "abc")
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

func TestDeletePath(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir(), false)
	full := writeRaw(t, store, "covers/gone.jpg", []byte("x"))

	require.NoError(t, store.DeletePath(ctx, "covers/gone.jpg"))
	assert.NoFileExists(t, full)

	assert.True(t, apperr.HasCode(store.DeletePath(ctx, "covers/gone.jpg"), "NOT_FOUND"))
	assert.True(t, apperr.HasCode(store.DeletePath(ctx, "../covers"), "PATH_ESCAPE"))
	assert.True(t, apperr.HasCode(store.DeletePath(ctx, "covers"), "VALIDATION_ERROR"))
	assert.DirExists(t, filepath.Join(store.Root(), "covers"))
}

func TestReplaceImage(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir(), false)
	original := writeRaw(t, store, "chapters/tower/1/004.png", pngOfWidth(t, 20, 20))

	newPath, err := store.ReplaceImage(ctx, "/chapters/tower/1/004.png", pngOfWidth(t, 1300, 20))
	require.NoError(t, err)

	assert.Equal(t, "chapters/tower/1/004.jpg", newPath)
	assert.NoFileExists(t, original)
	data, err := os.ReadFile(filepath.Join(store.Root(), "chapters", "tower", "1", "004.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 1200, widthOf(t, data))

	_, err = store.ReplaceImage(ctx, "chapters/tower/1/404.png", pngOfWidth(t, 20, 20))
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

func TestReplaceImage_BadUploadKeepsOriginal(t *testing.T) {
	store := newStore(t, t.TempDir(), false)
	original := writeRaw(t, store, "covers/keep.jpg", []byte("original"))

	_, err := store.ReplaceImage(context.Background(), "covers/keep.jpg", []byte("garbage"))
	require.Error(t, err)
	assert.FileExists(t, original)
}

func TestStats(t *testing.T) {
	store := newStore(t, t.TempDir(), false)
	writeRaw(t, store, "covers/a.jpg", make([]byte, 1000))
	writeRaw(t, store, "chapters/x/1/001.jpg", make([]byte, 2000))
	writeRaw(t, store, "chapters/x/2/001.jpg", make([]byte, 500))
	writeRaw(t, store, "temp/ignored.jpg", make([]byte, 9999))

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1000), stats.Covers.Size)
	assert.Equal(t, int64(2500), stats.Chapters.Size)
	assert.Equal(t, int64(3500), stats.Total.Size)
	assert.Equal(t, "3.5 kB", stats.Total.SizeFormatted)

	writeRaw(t, store, "covers/b.jpg", make([]byte, 1000))
	stats, err = store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2000), stats.Covers.Size)
}
