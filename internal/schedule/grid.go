package schedule

import (
	"time"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// Layout units. One hour of the vertical axis measures HourUnit; a
// block never renders shorter than MinBlockHeight so brief events stay
// clickable.
const (
	HourUnit       = 3.0
	MinBlockHeight = 1.5

	// MonthCellEventLimit caps how many events a month cell renders;
	// the rest collapse into an overflow count.
	MonthCellEventLimit = 2

	// DefaultEventDuration is the span of a new-event draft.
	DefaultEventDuration = time.Hour
)

// TimeBlock positions one event on the 24-hour vertical axis. Column
// is the Monday-first day-of-week index and only meaningful in week
// layouts; day layouts always use column 0.
type TimeBlock struct {
	Event  model.AgendaItem
	Top    float64
	Height float64
	Column int
}

func blockFor(event model.AgendaItem, column int) TimeBlock {
	start := event.Start
	top := (float64(start.Hour()) + float64(start.Minute())/60) * HourUnit
	durationMinutes := event.End.Sub(event.Start).Minutes()
	height := durationMinutes / 60 * HourUnit
	if height < MinBlockHeight {
		height = MinBlockHeight
	}
	return TimeBlock{Event: event, Top: top, Height: height, Column: column}
}

// DayGrid lays out the events of one calendar day on the 24-hour axis.
func DayGrid(day time.Time, events []model.AgendaItem) []TimeBlock {
	blocks := make([]TimeBlock, 0)
	for _, event := range events {
		if SameDay(event.Start, day) {
			blocks = append(blocks, blockFor(event, 0))
		}
	}
	return blocks
}

// WeekGrid lays out events across the seven Monday-first columns of the
// week starting at weekStart. Events outside the week are skipped.
func WeekGrid(weekStart time.Time, events []model.AgendaItem) []TimeBlock {
	blocks := make([]TimeBlock, 0)
	for _, event := range events {
		column := -1
		for i := 0; i < 7; i++ {
			if SameDay(event.Start, weekStart.AddDate(0, 0, i)) {
				column = i
				break
			}
		}
		if column < 0 {
			continue
		}
		blocks = append(blocks, blockFor(event, column))
	}
	return blocks
}

// MonthCell is one day cell of the month grid.
type MonthCell struct {
	Date     time.Time
	InMonth  bool
	Events   []model.AgendaItem
	Overflow int
}

// MonthGrid builds the month view's cell list for the pivot's month:
// from the Sunday on or before the first day through the Saturday on
// or after the last day, so the grid always holds complete weeks.
func MonthGrid(pivot time.Time, events []model.AgendaItem) []MonthCell {
	monthStart := time.Date(pivot.Year(), pivot.Month(), 1, 0, 0, 0, 0, pivot.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	gridStart := monthStart.AddDate(0, 0, -int(monthStart.Weekday()))
	gridEnd := monthEnd.AddDate(0, 0, 6-int(monthEnd.Weekday()))

	cells := make([]MonthCell, 0, 42)
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		cell := MonthCell{Date: day, InMonth: day.Month() == pivot.Month()}
		for _, event := range events {
			if !SameDay(event.Start, day) {
				continue
			}
			if len(cell.Events) < MonthCellEventLimit {
				cell.Events = append(cell.Events, event)
			} else {
				cell.Overflow++
			}
		}
		cells = append(cells, cell)
	}
	return cells
}

// MiniMonth is one month of the year view: per-day event marks only.
type MiniMonth struct {
	Month   time.Month
	Days    int
	HasDays map[int]bool
}

// YearGrid builds the twelve mini-month summaries for the pivot's year.
func YearGrid(pivot time.Time, events []model.AgendaItem) []MiniMonth {
	months := make([]MiniMonth, 0, 12)
	for m := time.January; m <= time.December; m++ {
		first := time.Date(pivot.Year(), m, 1, 0, 0, 0, 0, pivot.Location())
		days := first.AddDate(0, 1, -1).Day()
		mini := MiniMonth{Month: m, Days: days, HasDays: make(map[int]bool)}
		for _, event := range events {
			if event.Start.Year() == pivot.Year() && event.Start.Month() == m {
				mini.HasDays[event.Start.Day()] = true
			}
		}
		months = append(months, mini)
	}
	return months
}

// NowIndicator computes the vertical offset of the current-time line.
// Visible only while the moment falls within the 24-hour span; callers
// refresh it on a timer of about a minute.
func NowIndicator(now time.Time) (float64, bool) {
	offset := (float64(now.Hour()) + float64(now.Minute())/60) * HourUnit
	return offset, offset <= 24*HourUnit
}

// SlotAt converts a click inside an hour cell into a concrete instant.
// fraction is the click's vertical offset within the cell, 0..1, and
// maps linearly onto the hour's minutes.
func SlotAt(day time.Time, hour int, fraction float64) time.Time {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	minute := int(fraction * 60)
	if minute > 59 {
		minute = 59
	}
	base := utils.StartOfDay(day)
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// DraftAt produces a new-event draft of default duration starting at
// the clicked slot. The draft carries no id, which routes its save to
// the create path rather than update.
func DraftAt(slot time.Time) model.AgendaItem {
	return model.AgendaItem{
		Start: slot,
		End:   slot.Add(DefaultEventDuration),
	}
}
