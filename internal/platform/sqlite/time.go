// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sqlite

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for every timestamp column.
// Fixed width keeps lexical order identical to chronological order.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Clock returns the current time. Repositories take one so tests can pin it.
type Clock func() time.Time

// Now returns the current time from c, falling back to the wall clock.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// Stamp returns the current time formatted for storage.
func (c Clock) Stamp() string {
	return FormatTime(c.Now())
}

// FormatTime renders t in the storage layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NullTime scans timestamp columns regardless of how the driver surfaces them.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements [sql.Scanner].
func (nt *NullTime) Scan(value any) error {
	nt.Time, nt.Valid = time.Time{}, false

	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		nt.Time, nt.Valid = v.UTC(), true
		return nil
	case string:
		return nt.parse(v)
	case []byte:
		return nt.parse(string(v))
	default:
		return fmt.Errorf("sqlite: cannot scan %T into NullTime", value)
	}
}

// Value implements [driver.Valuer].
func (nt NullTime) Value() (driver.Value, error) {
	if !nt.Valid {
		return nil, nil
	}
	return FormatTime(nt.Time), nil
}

// Ptr returns nil for NULL, otherwise a pointer to the time.
func (nt NullTime) Ptr() *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

var acceptedLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

func (nt *NullTime) parse(raw string) error {
	for _, layout := range acceptedLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			nt.Time, nt.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("sqlite: unrecognized timestamp %q", raw)
}
