// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ChaptersTable represents the 'chapters' table
type ChaptersTable struct {
	Table         string
	ID            string
	ComicID       string
	ChapterNumber string
	Title         string
	ImageURLs     string
	CreatedAt     string
}

// Chapters is the schema definition for chapters
var Chapters = ChaptersTable{
	Table:         "chapters",
	ID:            "id",
	ComicID:       "comic_id",
	ChapterNumber: "chapter_number",
	Title:         "title",
	ImageURLs:     "image_urls",
	CreatedAt:     "created_at",
}

// Columns returns all standard column names
func (t ChaptersTable) Columns() []string {
	return []string{t.ID, t.ComicID, t.ChapterNumber, t.Title, t.ImageURLs, t.CreatedAt}
}

// Select returns the column list qualified with alias.
func (t ChaptersTable) Select(alias string) string {
	return qualify(alias, t.Columns())
}
