// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"strconv"
	"sync"
	"time"
)

// ViewTracker deduplicates view increments per (client IP, comic id).
//
// It is a best-effort anti-inflation heuristic held in process memory: it
// resets on restart and is not shared between processes.
type ViewTracker struct {
	mu             sync.Mutex
	seen           map[string]time.Time
	cooldown       time.Duration
	sweepThreshold int
	now            func() time.Time
}

// NewViewTracker returns a tracker that counts one view per key per cooldown.
// Expired entries are swept once the map grows past sweepThreshold.
func NewViewTracker(cooldown time.Duration, sweepThreshold int, now func() time.Time) *ViewTracker {
	if now == nil {
		now = time.Now
	}
	return &ViewTracker{
		seen:           make(map[string]time.Time),
		cooldown:       cooldown,
		sweepThreshold: sweepThreshold,
		now:            now,
	}
}

// ShouldCount records the view and reports whether it should increment the counter.
func (tracker *ViewTracker) ShouldCount(clientIP string, comicID int64) bool {
	key := clientIP + "-" + strconv.FormatInt(comicID, 10)

	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	now := tracker.now()
	if last, ok := tracker.seen[key]; ok && now.Sub(last) <= tracker.cooldown {
		return false
	}

	tracker.seen[key] = now
	if len(tracker.seen) > tracker.sweepThreshold {
		cutoff := now.Add(-tracker.cooldown)
		for k, at := range tracker.seen {
			if at.Before(cutoff) {
				delete(tracker.seen, k)
			}
		}
	}
	return true
}

// Len reports the number of tracked keys.
func (tracker *ViewTracker) Len() int {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return len(tracker.seen)
}
