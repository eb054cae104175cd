// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package natsort orders file and folder names the way people read them:
// "img2.png" before "img10.png", ignoring letter case.
package natsort

import (
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// Less reports whether a sorts before b in case-insensitive natural order.
// Names equal under case folding fall back to a byte comparison so the order
// is total.
func Less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return natural.Less(la, lb)
	}
	return a < b
}

// Compare is the three-way form of [Less].
func Compare(a, b string) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}

// Strings sorts names in place.
func Strings(names []string) {
	slices.SortStableFunc(names, Compare)
}

// SortBy sorts items in place by the natural order of key(item).
func SortBy[T any](items []T, key func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return Compare(key(a), key(b))
	})
}
