// Package prefstore keeps small per-user dashboard preferences in a
// local Badger database: the calendar view mode and the routine
// checklist completion marks. Completions reset per calendar day; the
// reset happens lazily by comparing the stored reset date on access.
package prefstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

const (
	keyViewMode      = "calendar:viewMode"
	keyCompletions   = "routine:completions"
	keyLastResetDate = "routine:lastResetDate"
)

// Store is a Badger-backed preference store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the preference database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral store, used in tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory preference store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key string) ([]byte, error) {
	var result []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (s *Store) set(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// ViewMode returns the saved calendar view mode, or fallback when none
// is saved.
func (s *Store) ViewMode(fallback string) string {
	value, err := s.get(keyViewMode)
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logger.Log.Warn("Failed to read view mode preference", zap.Error(err))
		}
		return fallback
	}
	return string(value)
}

// SetViewMode saves the calendar view mode.
func (s *Store) SetViewMode(mode string) error {
	return s.set(keyViewMode, []byte(mode))
}

// Completions returns today's task completions. If the stored marks
// belong to an earlier day they are discarded first.
func (s *Store) Completions(ref time.Time) (model.TaskCompletions, error) {
	today := utils.FormatDate(ref)

	lastReset, err := s.get(keyLastResetDate)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to read reset date: %w", err)
	}

	if string(lastReset) != today {
		if err := s.resetCompletions(today); err != nil {
			return nil, err
		}
		return model.TaskCompletions{}, nil
	}

	raw, err := s.get(keyCompletions)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return model.TaskCompletions{}, nil
		}
		return nil, fmt.Errorf("failed to read completions: %w", err)
	}

	var completions model.TaskCompletions
	if err := utils.UnmarshalJSON(raw, &completions); err != nil {
		logger.Log.Warn("Corrupt completions record, resetting", zap.Error(err))
		if err := s.resetCompletions(today); err != nil {
			return nil, err
		}
		return model.TaskCompletions{}, nil
	}
	return completions, nil
}

func (s *Store) resetCompletions(today string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyCompletions), utils.MustMarshalJSON(model.TaskCompletions{})); err != nil {
			return err
		}
		return txn.Set([]byte(keyLastResetDate), []byte(today))
	})
}

// ToggleCompletion marks one more completion of the task for today, or
// clears the task's marks once it already reached its repetition target.
// Returns the task's marks after the toggle.
func (s *Store) ToggleCompletion(taskID string, repetitions int, ref time.Time) ([]int64, error) {
	if repetitions < 1 {
		repetitions = 1
	}

	completions, err := s.Completions(ref)
	if err != nil {
		return nil, err
	}

	marks := completions[taskID]
	if len(marks) >= repetitions {
		marks = nil
	} else {
		marks = append(marks, ref.UnixMilli())
	}
	completions[taskID] = marks

	if err := s.set(keyCompletions, utils.MustMarshalJSON(completions)); err != nil {
		return nil, fmt.Errorf("failed to save completions: %w", err)
	}
	return marks, nil
}
