package agenda

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

// FakeProvider is an in-memory Provider used in tests and local runs
// without calendar credentials.
type FakeProvider struct {
	mu     sync.Mutex
	events map[string][]model.AgendaItem // calendar id -> events
}

// NewFakeProvider creates an empty in-memory provider.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{events: make(map[string][]model.AgendaItem)}
}

// List returns events overlapping [from, to), ordered by start time.
func (f *FakeProvider) List(_ context.Context, calendarID string, from, to time.Time) ([]model.AgendaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []model.AgendaItem
	for _, item := range f.events[calendarID] {
		if item.End.After(from) && item.Start.Before(to) {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

// Create stores the event under a generated id.
func (f *FakeProvider) Create(_ context.Context, calendarID string, item model.AgendaItem) (model.AgendaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item.ID = uuid.NewString()
	f.events[calendarID] = append(f.events[calendarID], item)
	return item, nil
}

// Update replaces the stored event with the same id.
func (f *FakeProvider) Update(_ context.Context, calendarID string, item model.AgendaItem) (model.AgendaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.events[calendarID] {
		if existing.ID == item.ID {
			f.events[calendarID][i] = item
			return item, nil
		}
	}
	return model.AgendaItem{}, fmt.Errorf("%w: event %s", apperrors.ErrNotFound, item.ID)
}

// Delete removes the stored event with the given id.
func (f *FakeProvider) Delete(_ context.Context, calendarID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.events[calendarID]
	for i, existing := range items {
		if existing.ID == eventID {
			f.events[calendarID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: event %s", apperrors.ErrNotFound, eventID)
}
