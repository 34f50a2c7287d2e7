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

// SaveLead upserts a CRM lead keyed by the normalized chat identifier.
func (r *PostgresRepo) SaveLead(ctx context.Context, lead model.Lead) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	if companyID != lead.CompanyID {
		return fmt.Errorf("%w: lead CompanyID %s does not match tenant ID %s", apperrors.ErrBadRequest, lead.CompanyID, companyID)
	}

	lead.UpdatedAt = utils.Now()

	operation := func() error {
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(lead.GetUpdatableFields()),
		}).Create(&lead)

		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveLead Commit", operation)
	observer.ObserveDbOperationDuration("upsert", "lead", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save lead after retries", zap.String("lead_id", lead.ID), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}

// FindLeads lists leads for the tenant in creation order.
func (r *PostgresRepo) FindLeads(ctx context.Context) ([]model.Lead, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}
	loggerCtx := logger.FromContext(ctx)

	var leads []model.Lead
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("company_id = ?", companyID).
			Order("created_at ASC").
			Find(&leads)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindLeads", operation)
	observer.ObserveDbOperationDuration("find", "lead", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		loggerCtx.Error("Failed to list leads after retries", zap.String("company_id", companyID), zap.Error(findErr))
		return nil, findErr // Already wrapped
	}

	return leads, nil
}

// UpdateLeadStage moves a lead to a different pipeline stage.
func (r *PostgresRepo) UpdateLeadStage(ctx context.Context, leadID, stage string) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.Lead{}).
			Where("id = ? AND company_id = ?", leadID, companyID).
			Updates(map[string]interface{}{"stage": stage, "updated_at": utils.Now()})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: lead not found for stage update (ID: %s)", apperrors.ErrNotFound, leadID)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateLeadStage Commit", operation)
	observer.ObserveDbOperationDuration("update", "lead", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update lead stage after retries",
			zap.String("lead_id", leadID),
			zap.String("stage", stage),
			zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}
