package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/observer"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// AppendWebhookLog records one raw ingestion log line.
func (r *PostgresRepo) AppendWebhookLog(ctx context.Context, entry model.WebhookLog) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	entry.CompanyID = companyID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = utils.Now()
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Create(&entry)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "AppendWebhookLog Commit", operation)
	observer.ObserveDbOperationDuration("insert", "webhook_log", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to append webhook log after retries", zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}

// FindRecentWebhookLogs returns the newest log lines, newest first.
func (r *PostgresRepo) FindRecentWebhookLogs(ctx context.Context, limit int) ([]model.WebhookLog, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}
	loggerCtx := logger.FromContext(ctx)

	var logs []model.WebhookLog
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("company_id = ?", companyID).
			Order("timestamp DESC").
			Limit(limit).
			Find(&logs)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindRecentWebhookLogs", operation)
	observer.ObserveDbOperationDuration("find", "webhook_log", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		loggerCtx.Error("Failed to list webhook logs after retries", zap.String("company_id", companyID), zap.Error(findErr))
		return nil, findErr // Already wrapped
	}

	return logs, nil
}
