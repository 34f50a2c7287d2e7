package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/observer"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// GetRoutineDoc loads the routine configuration document. A missing row
// yields an empty document, not an error.
func (r *PostgresRepo) GetRoutineDoc(ctx context.Context) (model.RoutineDoc, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return model.RoutineDoc{}, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	var cfg model.RoutineConfig
	operation := func() error {
		result := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&cfg)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "GetRoutineDoc", operation)
	observer.ObserveDbOperationDuration("find", "routine", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return model.RoutineDoc{CustomTasks: []model.RoutineTask{}, ArchivedDefaultTaskIDs: []string{}}, nil
		}
		logger.FromContext(ctx).Error("Failed to load routine doc after retries", zap.String("company_id", companyID), zap.Error(findErr))
		return model.RoutineDoc{}, findErr // Already wrapped
	}

	var doc model.RoutineDoc
	if err := utils.UnmarshalJSON(cfg.Doc, &doc); err != nil {
		return model.RoutineDoc{}, fmt.Errorf("%w: corrupt routine doc: %w", apperrors.ErrDatabase, err)
	}
	if doc.CustomTasks == nil {
		doc.CustomTasks = []model.RoutineTask{}
	}
	if doc.ArchivedDefaultTaskIDs == nil {
		doc.ArchivedDefaultTaskIDs = []string{}
	}
	return doc, nil
}

// SaveRoutineDoc replaces the routine configuration document.
func (r *PostgresRepo) SaveRoutineDoc(ctx context.Context, doc model.RoutineDoc) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	cfg := model.RoutineConfig{
		CompanyID: companyID,
		Doc:       datatypes.JSON(utils.MustMarshalJSON(doc)),
		UpdatedAt: utils.Now(),
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"doc", "updated_at"}),
		}).Create(&cfg)

		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveRoutineDoc Commit", operation)
	observer.ObserveDbOperationDuration("upsert", "routine", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save routine doc after retries", zap.String("company_id", companyID), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}
