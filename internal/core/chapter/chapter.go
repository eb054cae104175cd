// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter manages comic chapters and their page images.

# Image Layout

A chapter's pages are stored as an [ImageSet]: one or more server groups, each
an ordered list of image URLs. Rows written before server groups existed hold a
flat URL array; those decode into a single group named "Server 1".

Entries of the form "tiktok:<id>" are stored as-is and only expanded against
the configured CDN base when a chapter is read.
*/
package chapter

import (
	"bytes"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/taibuivan/comicshelf/internal/platform/constants"
)

// Field names used in validation details.
const (
	FieldComicID       = "comic_id"
	FieldChapterNumber = "chapter_number"
	FieldTitle         = "title"
	FieldImageURLs     = "image_urls"

	maxTitleLength = 255
)

// # Image Sets

// ServerGroup is one mirror of a chapter's pages.
type ServerGroup struct {
	ServerName string   `json:"server_name"`
	ImageURLs  []string `json:"image_urls"`
}

// ImageSet is the ordered list of server groups of a chapter.
type ImageSet []ServerGroup

// UnmarshalJSON accepts both the grouped shape and the legacy flat array.
func (set *ImageSet) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if len(items) == 0 {
		*set = ImageSet{}
		return nil
	}

	if first := bytes.TrimSpace(items[0]); len(first) > 0 && first[0] == '"' {
		var urls []string
		if err := json.Unmarshal(data, &urls); err != nil {
			return err
		}
		*set = ImageSet{{ServerName: constants.LegacyServerName, ImageURLs: urls}}
		return nil
	}

	var groups []ServerGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}
	for i := range groups {
		if groups[i].ImageURLs == nil {
			groups[i].ImageURLs = []string{}
		}
	}
	*set = groups
	return nil
}

// MarshalJSON renders a nil set as an empty array.
func (set ImageSet) MarshalJSON() ([]byte, error) {
	if set == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]ServerGroup(set))
}

// Resolve returns a copy with every "tiktok:<id>" entry expanded to baseURL/<id>.
func (set ImageSet) Resolve(baseURL string) ImageSet {
	base := strings.TrimRight(baseURL, "/")

	resolved := make(ImageSet, len(set))
	for i, group := range set {
		urls := make([]string, len(group.ImageURLs))
		for j, url := range group.ImageURLs {
			if id, ok := strings.CutPrefix(url, constants.TikTokScheme); ok {
				url = base + "/" + id
			}
			urls[j] = url
		}
		resolved[i] = ServerGroup{ServerName: group.ServerName, ImageURLs: urls}
	}
	return resolved
}

// Count returns the number of images across all groups.
func (set ImageSet) Count() int {
	total := 0
	for _, group := range set {
		total += len(group.ImageURLs)
	}
	return total
}

// decodeImages tolerates malformed rows by treating them as image-less.
func decodeImages(raw string) ImageSet {
	var set ImageSet
	if raw == "" || json.Unmarshal([]byte(raw), &set) != nil || set == nil {
		return ImageSet{}
	}
	return set
}

// # Domain Models

// Chapter is a single numbered installment of a comic.
type Chapter struct {
	ID            int64     `json:"id"`
	ComicID       int64     `json:"comic_id"`
	ChapterNumber float64   `json:"chapter_number"` // Fractional numbers (10.5) are extras
	Title         string    `json:"title"`
	ImageURLs     ImageSet  `json:"image_urls"`
	CreatedAt     time.Time `json:"created_at"`
}

// Neighbor identifies the previous or next chapter of the same comic.
type Neighbor struct {
	ID            int64   `json:"id"`
	ChapterNumber float64 `json:"chapter_number"`
}

// ComicRef is the slice of a comic a chapter read or delete needs.
type ComicRef struct {
	ID    int64
	Slug  string
	Title string
}

// Detail is a chapter as served to the reader.
type Detail struct {
	Chapter
	PrevChapter *Neighbor `json:"prev_chapter"`
	NextChapter *Neighbor `json:"next_chapter"`
	ComicSlug   string    `json:"comic_slug,omitempty"`
	ComicTitle  string    `json:"comic_title,omitempty"`
}

// # Inputs

// CreateInput carries a new chapter. Image URLs may use either stored shape.
type CreateInput struct {
	ComicID       int64    `json:"comic_id"`
	ChapterNumber *float64 `json:"chapter_number"`
	Title         string   `json:"title"`
	ImageURLs     ImageSet `json:"image_urls"`
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	ChapterNumber *float64  `json:"chapter_number"`
	Title         *string   `json:"title"`
	ImageURLs     *ImageSet `json:"image_urls"`
}
