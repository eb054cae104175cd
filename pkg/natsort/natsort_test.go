// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package natsort_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicshelf/pkg/natsort"
)

func TestStrings(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "numeric_aware",
			input: []string{"img10.png", "img2.png", "img1.png"},
			want:  []string{"img1.png", "img2.png", "img10.png"},
		},
		{
			name:  "case_insensitive",
			input: []string{"b.jpg", "A1.jpg", "a10.jpg", "a9.jpg"},
			want:  []string{"A1.jpg", "a9.jpg", "a10.jpg", "b.jpg"},
		},
		{
			name:  "chapter_folders",
			input: []string{"10", "1.5", "2", "1"},
			want:  []string{"1", "1.5", "2", "10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]string(nil), tt.input...)
			natsort.Strings(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortBy(t *testing.T) {
	type file struct{ name string }
	files := []file{{"page-003"}, {"page-1"}, {"page-20"}}

	natsort.SortBy(files, func(f file) string { return f.name })

	assert.Equal(t, []file{{"page-1"}, {"page-003"}, {"page-20"}}, files)
}
