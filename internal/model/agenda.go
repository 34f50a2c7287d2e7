package model

import "time"

// AgendaItem is a calendar event. The event itself is owned by the
// external calendar; this struct only mirrors it for the visible range.
type AgendaItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
	IsAllDay    bool      `json:"isAllDay"`
}

// HasID reports whether the item already exists on the remote calendar.
// Save paths split into create (no id) and update (id present) on this.
func (a AgendaItem) HasID() bool {
	return a.ID != ""
}
