// Package schedule computes the calendar's visible date ranges and
// event grid layouts. Ranges drive what the agenda provider fetches;
// the grid layouts are pure coordinate math the dashboard renders
// directly.
package schedule

import (
	"fmt"
	"time"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// ViewMode selects the calendar view.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
	ViewYear  ViewMode = "year"
)

// ParseViewMode validates a view-mode string.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewDay, ViewWeek, ViewMonth, ViewYear:
		return ViewMode(s), nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// Range computes the inclusive [start, end] date range visible for a
// pivot date in the given view. Weeks start on Monday; a Sunday pivot
// belongs to the week that started six days earlier, per ISO
// convention, not the week starting the next day.
func Range(pivot time.Time, view ViewMode) (time.Time, time.Time) {
	day := utils.StartOfDay(pivot)

	switch view {
	case ViewWeek:
		start := WeekStart(day)
		return start, start.AddDate(0, 0, 6)
	case ViewMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		end := start.AddDate(0, 1, -1)
		return start, end
	case ViewYear:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		end := time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, day.Location())
		return start, end
	default: // ViewDay
		return day, day
	}
}

// WeekStart returns the Monday on or before the given day.
func WeekStart(day time.Time) time.Time {
	day = utils.StartOfDay(day)
	offset := int(day.Weekday()) - int(time.Monday)
	if day.Weekday() == time.Sunday {
		offset = 6
	}
	return day.AddDate(0, 0, -offset)
}

// SameDay reports whether two instants fall on the same calendar day
// in a's location.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
