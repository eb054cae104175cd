// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicshelf/pkg/convert"
)

func TestChapterNumberRoundTrip(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1", "1"},
		{"1.0", "1"},
		{"12.5", "12.5"},
		{" 003 ", "3"},
		{"0", "0"},
	}

	for _, tt := range tests {
		n, err := convert.ParseChapterNumber(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, convert.FormatChapterNumber(n), tt.raw)
	}
}

func TestParseChapterNumber_Rejects(t *testing.T) {
	for _, raw := range []string{"", "abc", "-1", "NaN", "Inf", "1/2"} {
		_, err := convert.ParseChapterNumber(raw)
		assert.ErrorIs(t, err, convert.ErrInvalidChapterNumber, raw)
	}
}

func TestToIntD(t *testing.T) {
	assert.Equal(t, 7, convert.ToIntD("7", 3))
	assert.Equal(t, 3, convert.ToIntD("", 3))
	assert.Equal(t, 3, convert.ToIntD("x", 3))
}
