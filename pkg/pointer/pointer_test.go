// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicshelf/pkg/pointer"
)

func TestFallback(t *testing.T) {
	assert.Equal(t, "kept", pointer.Fallback(nil, "kept"))
	assert.Equal(t, "new", pointer.Fallback(pointer.To("new"), "kept"))
	assert.Equal(t, "", pointer.Fallback(pointer.To(""), "kept"), "an explicit zero value still replaces")
}
