package storage

import (
	"context"
	"errors"
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

// GetSettings loads the per-company integration settings. A missing row
// yields empty settings, not an error.
func (r *PostgresRepo) GetSettings(ctx context.Context) (model.Settings, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	var settings model.Settings
	operation := func() error {
		result := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&settings)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "GetSettings", operation)
	observer.ObserveDbOperationDuration("find", "settings", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return model.Settings{CompanyID: companyID}, nil
		}
		logger.FromContext(ctx).Error("Failed to load settings after retries", zap.String("company_id", companyID), zap.Error(findErr))
		return model.Settings{}, findErr // Already wrapped
	}

	return settings, nil
}

// SaveSettings upserts the per-company integration settings.
func (r *PostgresRepo) SaveSettings(ctx context.Context, settings model.Settings) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	settings.CompanyID = companyID
	settings.UpdatedAt = utils.Now()

	operation := func() error {
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "company_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"google_calendar_id", "zapi_instance_id", "zapi_token", "zapi_client_token", "updated_at",
			}),
		}).Create(&settings)

		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveSettings Commit", operation)
	observer.ObserveDbOperationDuration("upsert", "settings", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save settings after retries", zap.String("company_id", companyID), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}
