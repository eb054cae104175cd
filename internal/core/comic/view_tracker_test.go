// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicshelf/internal/core/comic"
	"github.com/taibuivan/comicshelf/internal/platform/sqlite/sqlitetest"
)

func TestViewTracker_Cooldown(t *testing.T) {
	clock := sqlitetest.NewClock(t0)
	tracker := comic.NewViewTracker(time.Hour, 100, clock.Now)

	assert.True(t, tracker.ShouldCount("1.1.1.1", 1))
	assert.False(t, tracker.ShouldCount("1.1.1.1", 1))
	assert.True(t, tracker.ShouldCount("1.1.1.1", 2), "keys are per comic")
	assert.True(t, tracker.ShouldCount("2.2.2.2", 1), "keys are per client")

	clock.Advance(time.Hour + time.Nanosecond)
	assert.True(t, tracker.ShouldCount("1.1.1.1", 1))
}

func TestViewTracker_SweepsExpiredPastThreshold(t *testing.T) {
	clock := sqlitetest.NewClock(t0)
	tracker := comic.NewViewTracker(time.Hour, 2, clock.Now)

	tracker.ShouldCount("a", 1)
	tracker.ShouldCount("b", 1)
	assert.Equal(t, 2, tracker.Len())

	clock.Advance(2 * time.Hour)
	tracker.ShouldCount("c", 1)
	assert.Equal(t, 1, tracker.Len(), "stale keys are swept once the map outgrows the threshold")
}
