package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

func event(id string, start time.Time, duration time.Duration) model.AgendaItem {
	return model.AgendaItem{ID: id, Title: id, Start: start, End: start.Add(duration)}
}

func TestDayGrid_PositionsAndFilters(t *testing.T) {
	day := date(2024, 6, 15)
	events := []model.AgendaItem{
		event("morning", day.Add(9*time.Hour+30*time.Minute), 90*time.Minute),
		event("other-day", day.AddDate(0, 0, 1).Add(9*time.Hour), time.Hour),
	}

	blocks := DayGrid(day, events)
	require.Len(t, blocks, 1)
	assert.Equal(t, "morning", blocks[0].Event.ID)
	assert.InDelta(t, 9.5*HourUnit, blocks[0].Top, 0.0001)
	assert.InDelta(t, 1.5*HourUnit, blocks[0].Height, 0.0001)
	assert.Equal(t, 0, blocks[0].Column)
}

func TestDayGrid_MinimumHeightFloor(t *testing.T) {
	day := date(2024, 6, 15)
	blocks := DayGrid(day, []model.AgendaItem{
		event("blink", day.Add(8*time.Hour), 5*time.Minute),
	})
	require.Len(t, blocks, 1)
	assert.InDelta(t, MinBlockHeight, blocks[0].Height, 0.0001)
}

func TestWeekGrid_MondayFirstColumns(t *testing.T) {
	weekStart := date(2024, 6, 10) // Monday
	events := []model.AgendaItem{
		event("mon", weekStart.Add(10*time.Hour), time.Hour),
		event("sun", weekStart.AddDate(0, 0, 6).Add(10*time.Hour), time.Hour),
		event("outside", weekStart.AddDate(0, 0, 7).Add(10*time.Hour), time.Hour),
	}

	blocks := WeekGrid(weekStart, events)
	require.Len(t, blocks, 2)

	columns := map[string]int{}
	for _, b := range blocks {
		columns[b.Event.ID] = b.Column
	}
	assert.Equal(t, 0, columns["mon"])
	assert.Equal(t, 6, columns["sun"])
}

func TestMonthGrid_CompleteWeeks(t *testing.T) {
	// June 2024: the 1st is a Saturday, the 30th a Sunday.
	cells := MonthGrid(date(2024, 6, 15), nil)

	assert.Equal(t, 0, len(cells)%7, "grid must hold complete weeks")
	assert.Equal(t, time.Sunday, cells[0].Date.Weekday())
	assert.Equal(t, time.Saturday, cells[len(cells)-1].Date.Weekday())

	// The month's first and last days are covered.
	var hasFirst, hasLast bool
	for _, cell := range cells {
		if SameDay(cell.Date, date(2024, 6, 1)) {
			hasFirst = true
			assert.True(t, cell.InMonth)
		}
		if SameDay(cell.Date, date(2024, 6, 30)) {
			hasLast = true
		}
	}
	assert.True(t, hasFirst)
	assert.True(t, hasLast)
}

func TestMonthGrid_EventLimitAndOverflow(t *testing.T) {
	day := date(2024, 6, 12)
	events := []model.AgendaItem{
		event("e1", day.Add(9*time.Hour), time.Hour),
		event("e2", day.Add(10*time.Hour), time.Hour),
		event("e3", day.Add(11*time.Hour), time.Hour),
		event("e4", day.Add(12*time.Hour), time.Hour),
	}

	cells := MonthGrid(date(2024, 6, 1), events)
	for _, cell := range cells {
		if SameDay(cell.Date, day) {
			assert.Len(t, cell.Events, MonthCellEventLimit)
			assert.Equal(t, 2, cell.Overflow)
			return
		}
	}
	t.Fatal("day cell not found")
}

func TestYearGrid_MarksEventDays(t *testing.T) {
	events := []model.AgendaItem{
		event("jan", date(2024, 1, 5).Add(9*time.Hour), time.Hour),
		event("jun", date(2024, 6, 20).Add(9*time.Hour), time.Hour),
		event("prev-year", date(2023, 6, 20).Add(9*time.Hour), time.Hour),
	}

	months := YearGrid(date(2024, 3, 1), events)
	require.Len(t, months, 12)
	assert.True(t, months[0].HasDays[5])
	assert.True(t, months[5].HasDays[20])
	assert.False(t, months[5].HasDays[21])
	assert.Equal(t, 29, months[1].Days) // leap February
}

func TestNowIndicator(t *testing.T) {
	offset, visible := NowIndicator(time.Date(2024, 6, 15, 12, 30, 0, 0, time.Local))
	assert.True(t, visible)
	assert.InDelta(t, 12.5*HourUnit, offset, 0.0001)

	_, visible = NowIndicator(time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local))
	assert.True(t, visible)
}

func TestSlotAt(t *testing.T) {
	day := date(2024, 6, 15)

	assert.Equal(t, day.Add(14*time.Hour+30*time.Minute), SlotAt(day, 14, 0.5))
	assert.Equal(t, day.Add(9*time.Hour), SlotAt(day, 9, 0))
	// clamped
	assert.Equal(t, day.Add(9*time.Hour+59*time.Minute), SlotAt(day, 9, 1.5))
	assert.Equal(t, day.Add(9*time.Hour), SlotAt(day, 9, -1))
}

func TestDraftAt(t *testing.T) {
	slot := date(2024, 6, 15).Add(15 * time.Hour)
	draft := DraftAt(slot)
	assert.Empty(t, draft.ID)
	assert.False(t, draft.HasID())
	assert.Equal(t, slot, draft.Start)
	assert.Equal(t, slot.Add(time.Hour), draft.End)
}
