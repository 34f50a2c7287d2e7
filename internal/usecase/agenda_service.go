package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/agenda"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/schedule"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/validator"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// AgendaService exposes the calendar to the action gateway. The events
// live on the external calendar; the service only resolves which
// calendar to talk to and validates the payloads.
type AgendaService struct {
	provider agenda.Provider
	settings storage.SettingsRepo
}

// NewAgendaService creates the calendar service.
func NewAgendaService(provider agenda.Provider, settings storage.SettingsRepo) *AgendaService {
	return &AgendaService{provider: provider, settings: settings}
}

// resolveCalendarID falls back to the calendar saved in settings when
// the caller did not name one.
func (s *AgendaService) resolveCalendarID(ctx context.Context, calendarID string) (string, error) {
	if calendarID != "" {
		return calendarID, nil
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve calendar id: %w", err)
	}
	if settings.GoogleCalendarID == "" {
		return "", fmt.Errorf("%w: no calendar configured", apperrors.ErrBadRequest)
	}
	return settings.GoogleCalendarID, nil
}

// Events lists the events between two dates, both inclusive.
func (s *AgendaService) Events(ctx context.Context, calendarID, startDate, endDate string) ([]model.AgendaItem, error) {
	calendarID, err := s.resolveCalendarID(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	from, err := utils.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", apperrors.ErrBadRequest, startDate)
	}
	to, err := utils.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q", apperrors.ErrBadRequest, endDate)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date before start date", apperrors.ErrBadRequest)
	}

	return s.provider.List(ctx, calendarID, from, to.Add(24*time.Hour))
}

// Grid lays the visible events out for one calendar view. The pivot
// date anchors the view: its day, week, month or year becomes the
// fetched range.
func (s *AgendaService) Grid(ctx context.Context, calendarID, viewMode, pivotDate string) (interface{}, error) {
	calendarID, err := s.resolveCalendarID(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	view, err := schedule.ParseViewMode(viewMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
	}
	pivot, err := utils.ParseDate(pivotDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pivot date %q", apperrors.ErrBadRequest, pivotDate)
	}

	from, to := schedule.Range(pivot, view)
	events, err := s.provider.List(ctx, calendarID, from, to.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	switch view {
	case schedule.ViewDay:
		return schedule.DayGrid(pivot, events), nil
	case schedule.ViewWeek:
		return schedule.WeekGrid(schedule.WeekStart(pivot), events), nil
	case schedule.ViewMonth:
		return schedule.MonthGrid(pivot, events), nil
	default:
		return schedule.YearGrid(pivot, events), nil
	}
}

// Create adds an event to the calendar.
func (s *AgendaService) Create(ctx context.Context, calendarID string, item model.AgendaItem) (model.AgendaItem, error) {
	calendarID, err := s.resolveCalendarID(ctx, calendarID)
	if err != nil {
		return model.AgendaItem{}, err
	}
	if err := validator.Validate(item); err != nil {
		return model.AgendaItem{}, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	return s.provider.Create(ctx, calendarID, item)
}

// Update replaces an existing event on the calendar.
func (s *AgendaService) Update(ctx context.Context, calendarID string, item model.AgendaItem) (model.AgendaItem, error) {
	calendarID, err := s.resolveCalendarID(ctx, calendarID)
	if err != nil {
		return model.AgendaItem{}, err
	}
	if !item.HasID() {
		return model.AgendaItem{}, fmt.Errorf("%w: event id is required", apperrors.ErrBadRequest)
	}
	if err := validator.Validate(item); err != nil {
		return model.AgendaItem{}, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	return s.provider.Update(ctx, calendarID, item)
}

// Delete removes an event from the calendar.
func (s *AgendaService) Delete(ctx context.Context, calendarID, eventID string) error {
	calendarID, err := s.resolveCalendarID(ctx, calendarID)
	if err != nil {
		return err
	}
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", apperrors.ErrBadRequest)
	}
	return s.provider.Delete(ctx, calendarID, eventID)
}
