// Package aggregate reduces already-fetched record lists into the summary
// values shown on dashboards and reports. Every function here is pure.
package aggregate

import (
	"fmt"
	"time"
)

// Window names a time range that runs from a computed boundary up to now.
type Window string

const (
	Daily   Window = "daily"
	Weekly  Window = "weekly"
	Monthly Window = "monthly"
	Yearly  Window = "yearly"
)

// ParseWindow validates a selector value.
func ParseWindow(raw string) (Window, error) {
	switch w := Window(raw); w {
	case Daily, Weekly, Monthly, Yearly:
		return w, nil
	}
	return "", fmt.Errorf("unknown window %q", raw)
}

// WindowStart returns the inclusive lower boundary of w at now, in loc.
// Weekly is a rolling 7×24h span; the other windows are calendar aligned.
// Yearly on 1 January therefore covers a single day.
func WindowStart(w Window, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	switch w {
	case Daily:
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	case Weekly:
		return local.Add(-7 * 24 * time.Hour)
	case Monthly:
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	case Yearly:
		return time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// CalendarDay re-anchors a stored date column at midnight in loc. Date
// columns carry no zone, so the stored year, month and day are taken as-is.
func CalendarDay(d time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// FilterByWindow keeps the items whose date is on or after the window start.
// There is no upper bound.
func FilterByWindow[T any](items []T, w Window, now time.Time, loc *time.Location, dateOf func(T) time.Time) []T {
	start := WindowStart(w, now, loc)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !CalendarDay(dateOf(item), loc).Before(start) {
			out = append(out, item)
		}
	}
	return out
}
