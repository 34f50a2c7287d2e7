// Package agenda bridges the calendar module to an external calendar
// account. Events live on the remote calendar; this package only
// mirrors the visible range and pushes edits back.
package agenda

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
)

// maxResults is the Google Calendar API max page size.
const maxResults = 250

// Provider lists and mutates calendar events for one calendar id.
type Provider interface {
	List(ctx context.Context, calendarID string, from, to time.Time) ([]model.AgendaItem, error)
	Create(ctx context.Context, calendarID string, item model.AgendaItem) (model.AgendaItem, error)
	Update(ctx context.Context, calendarID string, item model.AgendaItem) (model.AgendaItem, error)
	Delete(ctx context.Context, calendarID, eventID string) error
}

// GoogleProvider implements Provider on the Google Calendar API.
type GoogleProvider struct {
	service *calendar.Service
}

// NewGoogleProvider creates a calendar provider from an OAuth token.
func NewGoogleProvider(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*GoogleProvider, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	client := config.Client(ctx, token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &GoogleProvider{service: service}, nil
}

// NewGoogleProviderFromFile creates a calendar provider from a service
// account credentials file.
func NewGoogleProviderFromFile(ctx context.Context, credentialsFile string) (*GoogleProvider, error) {
	service, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleProvider{service: service}, nil
}

// List fetches events overlapping [from, to), expanded to single
// events and ordered by start time.
func (p *GoogleProvider) List(ctx context.Context, calendarID string, from, to time.Time) ([]model.AgendaItem, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	var items []model.AgendaItem
	pageToken := ""
	for {
		call := p.service.Events.List(calendarID).
			MaxResults(maxResults).
			SingleEvents(true).
			OrderBy("startTime").
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list calendar events: %w", apperrors.ErrProvider, err)
		}

		for _, ev := range events.Items {
			if ev == nil || ev.Status == "cancelled" {
				continue
			}
			item, ok := fromEvent(ev)
			if !ok {
				logger.FromContext(ctx).Debug("Skipping calendar event without usable times", zap.String("event_id", ev.Id))
				continue
			}
			items = append(items, item)
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return items, nil
}

// Create inserts a new event and returns it with the remote id filled in.
func (p *GoogleProvider) Create(ctx context.Context, calendarID string, item model.AgendaItem) (model.AgendaItem, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	created, err := p.service.Events.Insert(calendarID, toEvent(item)).Context(ctx).Do()
	if err != nil {
		return model.AgendaItem{}, fmt.Errorf("%w: failed to create calendar event: %w", apperrors.ErrProvider, err)
	}

	result, _ := fromEvent(created)
	return result, nil
}

// Update replaces an existing event.
func (p *GoogleProvider) Update(ctx context.Context, calendarID string, item model.AgendaItem) (model.AgendaItem, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	if !item.HasID() {
		return model.AgendaItem{}, fmt.Errorf("%w: event id required for update", apperrors.ErrBadRequest)
	}

	updated, err := p.service.Events.Update(calendarID, item.ID, toEvent(item)).Context(ctx).Do()
	if err != nil {
		return model.AgendaItem{}, fmt.Errorf("%w: failed to update calendar event %s: %w", apperrors.ErrProvider, item.ID, err)
	}

	result, _ := fromEvent(updated)
	return result, nil
}

// Delete removes an event from the remote calendar.
func (p *GoogleProvider) Delete(ctx context.Context, calendarID, eventID string) error {
	if calendarID == "" {
		calendarID = "primary"
	}
	if eventID == "" {
		return fmt.Errorf("%w: event id required for delete", apperrors.ErrBadRequest)
	}

	if err := p.service.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: failed to delete calendar event %s: %w", apperrors.ErrProvider, eventID, err)
	}
	return nil
}

// toEvent maps an AgendaItem onto the wire format. All-day items use
// the date-only fields the API expects.
func toEvent(item model.AgendaItem) *calendar.Event {
	ev := &calendar.Event{
		Summary:     item.Title,
		Description: item.Description,
	}
	if item.IsAllDay {
		ev.Start = &calendar.EventDateTime{Date: item.Start.Format("2006-01-02")}
		ev.End = &calendar.EventDateTime{Date: item.End.Format("2006-01-02")}
	} else {
		ev.Start = &calendar.EventDateTime{DateTime: item.Start.Format(time.RFC3339)}
		ev.End = &calendar.EventDateTime{DateTime: item.End.Format(time.RFC3339)}
	}
	return ev
}

// fromEvent maps a wire event back to an AgendaItem. Events without
// parseable times report ok=false.
func fromEvent(ev *calendar.Event) (model.AgendaItem, bool) {
	if ev == nil || ev.Start == nil || ev.End == nil {
		return model.AgendaItem{}, false
	}

	item := model.AgendaItem{
		ID:          ev.Id,
		Title:       ev.Summary,
		Description: ev.Description,
	}

	if ev.Start.Date != "" {
		start, err := time.ParseInLocation("2006-01-02", ev.Start.Date, time.Local)
		if err != nil {
			return model.AgendaItem{}, false
		}
		end, err := time.ParseInLocation("2006-01-02", ev.End.Date, time.Local)
		if err != nil {
			return model.AgendaItem{}, false
		}
		item.Start = start
		item.End = end
		item.IsAllDay = true
		return item, true
	}

	start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return model.AgendaItem{}, false
	}
	end, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return model.AgendaItem{}, false
	}
	item.Start = start
	item.End = end
	return item, true
}
