package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestParseViewMode(t *testing.T) {
	for _, valid := range []string{"day", "week", "month", "year"} {
		mode, err := ParseViewMode(valid)
		assert.NoError(t, err)
		assert.Equal(t, ViewMode(valid), mode)
	}
	_, err := ParseViewMode("decade")
	assert.Error(t, err)
}

func TestRange_Day(t *testing.T) {
	pivot := time.Date(2024, 6, 15, 14, 30, 0, 0, time.Local)
	start, end := Range(pivot, ViewDay)
	assert.Equal(t, date(2024, 6, 15), start)
	assert.Equal(t, date(2024, 6, 15), end)
}

func TestRange_Week(t *testing.T) {
	tests := []struct {
		name          string
		pivot         time.Time
		expectedStart time.Time
	}{
		{"monday pivot", date(2024, 6, 10), date(2024, 6, 10)},
		{"wednesday pivot", date(2024, 6, 12), date(2024, 6, 10)},
		{"saturday pivot", date(2024, 6, 15), date(2024, 6, 10)},
		// Sunday belongs to the week that began six days earlier.
		{"sunday pivot", date(2024, 6, 16), date(2024, 6, 10)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := Range(tc.pivot, ViewWeek)
			assert.Equal(t, tc.expectedStart, start)
			assert.Equal(t, tc.expectedStart.AddDate(0, 0, 6), end)
		})
	}
}

func TestRange_Month(t *testing.T) {
	start, end := Range(date(2024, 2, 14), ViewMonth)
	assert.Equal(t, date(2024, 2, 1), start)
	assert.Equal(t, date(2024, 2, 29), end) // leap year
}

func TestRange_Year(t *testing.T) {
	start, end := Range(date(2024, 7, 4), ViewYear)
	assert.Equal(t, date(2024, 1, 1), start)
	assert.Equal(t, date(2024, 12, 31), end)
}

func TestWeekStart_AllWeekdays(t *testing.T) {
	// 2024-06-10 is a Monday; every day of that week maps back to it.
	monday := date(2024, 6, 10)
	for i := 0; i < 7; i++ {
		assert.Equal(t, monday, WeekStart(monday.AddDate(0, 0, i)), "offset %d", i)
	}
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(
		time.Date(2024, 6, 15, 0, 0, 1, 0, time.Local),
		time.Date(2024, 6, 15, 23, 59, 0, 0, time.Local),
	))
	assert.False(t, SameDay(date(2024, 6, 15), date(2024, 6, 16)))
}
