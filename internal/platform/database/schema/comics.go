// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ComicsTable represents the 'comics' table
type ComicsTable struct {
	Table       string
	ID          string
	Title       string
	Slug        string
	Description string
	CoverURL    string
	Author      string
	Status      string
	Genres      string
	Views       string
	CreatedBy   string
	CreatedAt   string
	UpdatedAt   string
}

// Comics is the schema definition for comics
var Comics = ComicsTable{
	Table:       "comics",
	ID:          "id",
	Title:       "title",
	Slug:        "slug",
	Description: "description",
	CoverURL:    "cover_url",
	Author:      "author",
	Status:      "status",
	Genres:      "genres",
	Views:       "views",
	CreatedBy:   "created_by",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

// Columns returns all standard column names
func (t ComicsTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.CoverURL, t.Author,
		t.Status, t.Genres, t.Views, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	}
}

// Select returns the column list qualified with alias.
func (t ComicsTable) Select(alias string) string {
	return qualify(alias, t.Columns())
}
