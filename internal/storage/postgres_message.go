package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/observer"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// SaveRawMessage stores an inbound or outbound chat message. Redelivery
// of the same message id updates the mutable columns instead of
// inserting a duplicate.
func (r *PostgresRepo) SaveRawMessage(ctx context.Context, msg model.RawChatMessage) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	if companyID != msg.CompanyID {
		return fmt.Errorf("%w: message CompanyID %s does not match tenant ID %s", apperrors.ErrBadRequest, msg.CompanyID, companyID)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}},
			DoUpdates: clause.AssignmentColumns(msg.GetUpdatableFields()),
		}).Create(&msg)

		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveRawMessage Commit", operation)
	observer.ObserveDbOperationDuration("upsert", "message", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save raw message after retries", zap.String("message_id", msg.MessageID), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}

// FindRawMessages lists all stored messages for the tenant in arrival
// order. The conversation view derives threads from this flat list.
func (r *PostgresRepo) FindRawMessages(ctx context.Context) ([]model.RawChatMessage, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}
	loggerCtx := logger.FromContext(ctx)

	var messages []model.RawChatMessage
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("company_id = ?", companyID).
			Order("timestamp ASC").
			Find(&messages)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindRawMessages", operation)
	observer.ObserveDbOperationDuration("find", "message", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		loggerCtx.Error("Failed to list raw messages after retries", zap.String("company_id", companyID), zap.Error(findErr))
		return nil, findErr // Already wrapped
	}

	return messages, nil
}

// FindRawMessagesByChatID returns the messages of one thread in
// chronological order. ChatID is matched as stored, so callers pass the
// raw identifier variants they know about.
func (r *PostgresRepo) FindRawMessagesByChatID(ctx context.Context, chatIDs []string) ([]model.RawChatMessage, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}
	loggerCtx := logger.FromContext(ctx)

	var messages []model.RawChatMessage
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("chat_id IN ? AND company_id = ?", chatIDs, companyID).
			Order("timestamp ASC").
			Find(&messages)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindRawMessagesByChatID", operation)
	observer.ObserveDbOperationDuration("find_by_chat_id", "message", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		loggerCtx.Error("Failed to find messages by chat_id after retries",
			zap.Strings("chat_ids", chatIDs),
			zap.String("company_id", companyID),
			zap.Error(findErr))
		return nil, findErr // Already wrapped
	}

	return messages, nil
}

// UpdateRawMessageAttendanceMode flips the attendance flag for every
// stored message of the given chat id variants. The conversation view
// reads the mode from the most recent message, so this effectively
// switches the whole thread.
func (r *PostgresRepo) UpdateRawMessageAttendanceMode(ctx context.Context, chatIDs []string, mode string) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}
	if len(chatIDs) == 0 {
		return nil
	}

	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.RawChatMessage{}).
			Where("chat_id IN ? AND company_id = ?", chatIDs, companyID).
			Update("attendance_mode", mode)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: no messages found for attendance mode update", apperrors.ErrNotFound)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateRawMessageAttendanceMode Commit", operation)
	observer.ObserveDbOperationDuration("update", "message", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update attendance mode after retries",
			zap.Strings("chat_ids", chatIDs),
			zap.String("mode", mode),
			zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}
