package prefstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	logger.Log = zaptest.NewLogger(t).Named("test")
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_ViewMode(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, "week", store.ViewMode("week"))

	require.NoError(t, store.SetViewMode("month"))
	assert.Equal(t, "month", store.ViewMode("week"))
}

func TestStore_Completions_EmptyByDefault(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)

	completions, err := store.Completions(now)
	require.NoError(t, err)
	assert.Empty(t, completions)
}

func TestStore_ToggleCompletion_AddsMarks(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)

	marks, err := store.ToggleCompletion("task-1", 3, now)
	require.NoError(t, err)
	assert.Len(t, marks, 1)

	marks, err = store.ToggleCompletion("task-1", 3, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, marks, 2)

	completions, err := store.Completions(now)
	require.NoError(t, err)
	assert.Len(t, completions["task-1"], 2)
}

func TestStore_ToggleCompletion_ClearsWhenComplete(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)

	// Single-repetition task: first toggle checks, second unchecks.
	marks, err := store.ToggleCompletion("task-1", 1, now)
	require.NoError(t, err)
	assert.Len(t, marks, 1)

	marks, err = store.ToggleCompletion("task-1", 1, now)
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestStore_Completions_ResetOnNewDay(t *testing.T) {
	store := newTestStore(t)
	day1 := time.Date(2026, 9, 1, 22, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 9, 2, 1, 0, 0, 0, time.Local)

	_, err := store.ToggleCompletion("task-1", 2, day1)
	require.NoError(t, err)

	completions, err := store.Completions(day1)
	require.NoError(t, err)
	assert.Len(t, completions["task-1"], 1)

	// Crossing midnight discards the previous day's marks.
	completions, err = store.Completions(day2)
	require.NoError(t, err)
	assert.Empty(t, completions)
}

func TestStore_ToggleCompletion_MinRepetitions(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)

	marks, err := store.ToggleCompletion("task-1", 0, now)
	require.NoError(t, err)
	assert.Len(t, marks, 1)

	marks, err = store.ToggleCompletion("task-1", 0, now)
	require.NoError(t, err)
	assert.Empty(t, marks)
}
