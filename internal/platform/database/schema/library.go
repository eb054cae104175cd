// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserHistoryTable represents the 'user_history' table
type UserHistoryTable struct {
	Table         string
	ID            string
	UserID        string
	ComicID       string
	ChapterNumber string
	ReadAt        string
}

// UserHistory is the schema definition for user_history
var UserHistory = UserHistoryTable{
	Table:         "user_history",
	ID:            "id",
	UserID:        "user_id",
	ComicID:       "comic_id",
	ChapterNumber: "chapter_number",
	ReadAt:        "read_at",
}

// UserFollowsTable represents the 'user_follows' table
type UserFollowsTable struct {
	Table      string
	ID         string
	UserID     string
	ComicID    string
	FollowedAt string
}

// UserFollows is the schema definition for user_follows
var UserFollows = UserFollowsTable{
	Table:      "user_follows",
	ID:         "id",
	UserID:     "user_id",
	ComicID:    "comic_id",
	FollowedAt: "followed_at",
}
