// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides the lenient conversions used at the HTTP boundary.

Chapter numbers travel as path segments and multipart fields on one side and
as REAL columns on the other. [FormatChapterNumber] is the one place that
decides their textual form, so the catalog API and the image server always
agree on a chapter's folder name.
*/
package convert

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidChapterNumber is returned for empty, non-numeric, negative or non-finite input.
var ErrInvalidChapterNumber = errors.New("convert: invalid chapter number")

// ToIntD converts a string to an int, returning def if it is empty or malformed.
func ToIntD(str string, def int) int {
	if str == "" {
		return def
	}
	if v, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
		return v
	}
	return def
}

// FormatChapterNumber renders n in its shortest form: 1 → "1", 1.5 → "1.5".
func FormatChapterNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ParseChapterNumber parses a chapter number such as "12" or "12.5".
func ParseChapterNumber(raw string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, ErrInvalidChapterNumber
	}
	return n, nil
}
