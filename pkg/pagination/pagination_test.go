// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicshelf/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 12, 0},
		{"limit=50&offset=10", 50, 10},
		{"limit=0", 12, 0},
		{"limit=101", 12, 0},
		{"limit=100", 100, 0},
		{"limit=abc&offset=xyz", 12, 0},
		{"limit=-5&offset=-1", 12, 0},
		{"limit=1&offset=99999", 1, 99999},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/comics/recent?"+tt.query, nil)
			p := pagination.FromRequest(r, 12)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestBounded(t *testing.T) {
	r := httptest.NewRequest("GET", "/?count=5&fromTop=1000", nil)
	assert.Equal(t, 5, pagination.Bounded(r, "count", 10, 100))
	assert.Equal(t, 30, pagination.Bounded(r, "fromTop", 30, 100))
	assert.Equal(t, 7, pagination.Bounded(r, "missing", 7, 100))
}
