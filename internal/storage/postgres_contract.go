package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/observer"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// SaveContract stores a contract in the database
func (r *PostgresRepo) SaveContract(ctx context.Context, contract model.Contract) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	if companyID != contract.CompanyID {
		return fmt.Errorf("%w: contract CompanyID %s does not match tenant ID %s", apperrors.ErrBadRequest, contract.CompanyID, companyID)
	}

	contract.UpdatedAt = utils.Now() // Ensure UpdatedAt is set for potential update

	operation := func() error {
		// Use Clauses for ON CONFLICT behavior (UPSERT)
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(contract.GetUpdatableFields()),
		}).Create(&contract)

		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveContract Commit", operation)
	observer.ObserveDbOperationDuration("upsert", "contract", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save contract after retries", zap.String("contract_id", contract.ID), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}

// FindContracts lists contracts for the tenant, most recently created first.
// Archived contracts are included; the caller filters when needed.
func (r *PostgresRepo) FindContracts(ctx context.Context) ([]model.Contract, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}
	loggerCtx := logger.FromContext(ctx)

	var contracts []model.Contract
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("company_id = ?", companyID).
			Order("created_at DESC").
			Find(&contracts)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil // Success, even if no records found
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindContracts", operation)
	observer.ObserveDbOperationDuration("find", "contract", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		loggerCtx.Error("Failed to list contracts after retries", zap.String("company_id", companyID), zap.Error(findErr))
		return nil, findErr // Already wrapped
	}

	return contracts, nil
}

// FindContractByID finds a contract by ID
func (r *PostgresRepo) FindContractByID(ctx context.Context, id string) (*model.Contract, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	var contract model.Contract
	operation := func() error {
		result := r.db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).First(&contract)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindContractByID", operation)
	observer.ObserveDbOperationDuration("find", "contract", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		logger.FromContext(ctx).Error("Failed to find contract by id after retries",
			zap.String("contract_id", id),
			zap.String("company_id", companyID),
			zap.Error(findErr))
		return nil, findErr // Already wrapped
	}

	return &contract, nil
}

// UpdateContractFields applies a partial update to a contract, touching
// only the given columns. Used for the date, contact, package, material
// and archive update paths.
func (r *PostgresRepo) UpdateContractFields(ctx context.Context, id string, fields map[string]interface{}) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}
	if len(fields) == 0 {
		return nil
	}

	fields["updated_at"] = utils.Now()

	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.Contract{}).
			Where("id = ? AND company_id = ?", id, companyID).
			Updates(fields)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: contract not found for update (ID: %s)", apperrors.ErrNotFound, id)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "UpdateContractFields Commit", operation)
	observer.ObserveDbOperationDuration("update", "contract", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to update contract after retries", zap.String("contract_id", id), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}

// IncrementContractClicks atomically bumps the click counter.
func (r *PostgresRepo) IncrementContractClicks(ctx context.Context, id string) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.Contract{}).
			Where("id = ? AND company_id = ?", id, companyID).
			Update("clicks", gorm.Expr("clicks + ?", 1))
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: contract not found for click increment (ID: %s)", apperrors.ErrNotFound, id)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "IncrementContractClicks Commit", operation)
	observer.ObserveDbOperationDuration("update", "contract", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to increment contract clicks after retries", zap.String("contract_id", id), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}

// RecordClick appends a click event row for date-range reporting.
func (r *PostgresRepo) RecordClick(ctx context.Context, contractID string, at time.Time) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	event := model.ClickEvent{
		ContractID: contractID,
		At:         at,
		CompanyID:  companyID,
	}
	if event.At.IsZero() {
		event.At = utils.Now()
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Create(&event)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "RecordClick Commit", operation)
	observer.ObserveDbOperationDuration("insert", "click_event", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to record click after retries", zap.String("contract_id", contractID), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}

// CountClicksBetween sums click events per contract over [from, to].
func (r *PostgresRepo) CountClicksBetween(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	type clickCount struct {
		ContractID string
		Total      int64
	}
	var rows []clickCount
	operation := func() error {
		result := r.db.WithContext(ctx).
			Model(&model.ClickEvent{}).
			Select("contract_id, COUNT(*) AS total").
			Where("company_id = ? AND at >= ? AND at <= ?", companyID, from, to).
			Group("contract_id").
			Scan(&rows)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "CountClicksBetween", operation)
	observer.ObserveDbOperationDuration("find", "click_event", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		logger.FromContext(ctx).Error("Failed to count clicks after retries", zap.String("company_id", companyID), zap.Error(findErr))
		return nil, findErr // Already wrapped
	}

	totals := make(map[string]int64, len(rows))
	for _, row := range rows {
		totals[row.ContractID] = row.Total
	}
	return totals, nil
}

// DeleteContract removes a contract row.
func (r *PostgresRepo) DeleteContract(ctx context.Context, id string) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("id = ? AND company_id = ?", id, companyID).
			Delete(&model.Contract{})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: contract not found for delete (ID: %s)", apperrors.ErrNotFound, id)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "DeleteContract Commit", operation)
	observer.ObserveDbOperationDuration("delete", "contract", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to delete contract after retries", zap.String("contract_id", id), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}
