// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs identify comics in URLs and name their asset folders
// (e.g., "solo-leveling" for covers/solo-leveling.webp).
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
//  1. Normalizes to NFD (é becomes e plus a combining acute).
//  2. Removes combining marks.
//  3. Converts to lowercase.
//  4. Replaces every run outside [a-z0-9] with a single hyphen.
//  5. Trims leading and trailing hyphens.
//
// Letters without a decomposition (Đ, ß, CJK) are dropped in step 4.
// The result is stable under a second application.
func From(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	result = strings.ToLower(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
