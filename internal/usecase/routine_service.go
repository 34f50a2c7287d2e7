package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/agenda"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/prefstore"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/validator"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// RoutineService handles the routine checklist: the persisted task
// document, daily-resetting completion marks, and pushing a task onto
// the calendar.
type RoutineService struct {
	routines storage.RoutineRepo
	prefs    *prefstore.Store
	calendar agenda.Provider
}

// NewRoutineService creates a routine service
func NewRoutineService(routines storage.RoutineRepo, prefs *prefstore.Store, calendar agenda.Provider) *RoutineService {
	return &RoutineService{
		routines: routines,
		prefs:    prefs,
		calendar: calendar,
	}
}

// Doc returns the persisted routine document.
func (s *RoutineService) Doc(ctx context.Context) (model.RoutineDoc, error) {
	return s.routines.Get(ctx)
}

// UpdateDoc replaces the routine document after validating every task.
func (s *RoutineService) UpdateDoc(ctx context.Context, doc model.RoutineDoc) error {
	for i, task := range doc.CustomTasks {
		if task.Repetitions < 1 {
			doc.CustomTasks[i].Repetitions = 1
			task.Repetitions = 1
		}
		if err := validator.Validate(task); err != nil {
			return apperrors.NewFatal(err, "routine task %d is invalid", i)
		}
	}
	return s.routines.Save(ctx, doc)
}

// Completions returns today's completion marks, resetting them first if
// the stored marks belong to a previous day.
func (s *RoutineService) Completions(ctx context.Context) (model.TaskCompletions, error) {
	return s.prefs.Completions(utils.Now())
}

// ToggleCompletion flips one task's completion. A task below its daily
// repetition target gains a mark; a fully completed task is cleared.
func (s *RoutineService) ToggleCompletion(ctx context.Context, taskID string) ([]int64, error) {
	doc, err := s.routines.Get(ctx)
	if err != nil {
		return nil, err
	}

	repetitions := 1
	for _, task := range doc.CustomTasks {
		if task.ID == taskID {
			repetitions = task.Repetitions
			break
		}
	}

	return s.prefs.ToggleCompletion(taskID, repetitions, utils.Now())
}

// ViewMode returns the stored calendar view-mode preference.
func (s *RoutineService) ViewMode(fallback string) string {
	return s.prefs.ViewMode(fallback)
}

// SetViewMode stores the calendar view-mode preference.
func (s *RoutineService) SetViewMode(mode string) error {
	return s.prefs.SetViewMode(mode)
}

// AddTaskToCalendar schedules the next occurrence of a routine task as
// a one-hour calendar event.
func (s *RoutineService) AddTaskToCalendar(ctx context.Context, task model.RoutineTask, calendarID string) error {
	if task.Text == "" {
		return fmt.Errorf("%w: task text is required", apperrors.ErrBadRequest)
	}
	if calendarID == "" {
		return fmt.Errorf("%w: calendar id is required", apperrors.ErrBadRequest)
	}

	start := nextOccurrence(task, utils.Now())
	_, err := s.calendar.Create(ctx, calendarID, model.AgendaItem{
		Title:       task.Text,
		Description: "Tarefa da rotina",
		Start:       start,
		End:         start.Add(time.Hour),
	})
	return err
}

// nextOccurrence finds when the task next runs: today or tomorrow at
// the task's time for daily tasks, the next matching weekday for
// weekly ones. A missing or malformed time defaults to 09:00.
func nextOccurrence(task model.RoutineTask, now time.Time) time.Time {
	hour, minute := 9, 0
	if task.Time != "" {
		if parsed, err := time.Parse("15:04", task.Time); err == nil {
			hour, minute = parsed.Hour(), parsed.Minute()
		}
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	if task.Frequency == model.FrequencyWeekly {
		daysAhead := (task.DayOfWeek - int(now.Weekday()) + 7) % 7
		candidate = candidate.AddDate(0, 0, daysAhead)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate
	}

	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
