// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice holds the generic Map and Filter helpers that [slices] lacks.
package slice

// Map returns transform applied to every element. A nil input stays nil.
func Map[T, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	out := make([]U, len(input))
	for i, v := range input {
		out[i] = transform(v)
	}
	return out
}

// Filter returns the elements for which keep is true, in order.
func Filter[T any](input []T, keep func(T) bool) []T {
	var out []T
	for _, v := range input {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
