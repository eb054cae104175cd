// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicshelf/pkg/slug"
)

func TestFrom_Golden(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Đấu La Đại Lục", "au-la-ai-luc"},
		{"Solo Leveling", "solo-leveling"},
		{"  Hello,  World!! ", "hello-world"},
		{"Café Crème", "cafe-creme"},
		{"One Piece 1000", "one-piece-1000"},
		{"---", ""},
		{"進撃の巨人", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

func TestFrom_Properties(t *testing.T) {
	shape := regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)

	for _, input := range []string{
		"Đấu La Đại Lục", "Tôi Thăng Cấp Một Mình", "A -- B", "x_y.z", "ÀÉÎÕÜ", "  lead & trail  ",
	} {
		got := slug.From(input)
		assert.Regexp(t, shape, got, input)
		assert.Equal(t, got, slug.From(got), "idempotent for %q", input)
	}
}
