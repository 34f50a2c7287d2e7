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

// SaveTransaction stores a ledger entry in the database
func (r *PostgresRepo) SaveTransaction(ctx context.Context, txn model.FinancialTransaction) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	if companyID != txn.CompanyID {
		return fmt.Errorf("%w: transaction CompanyID %s does not match tenant ID %s", apperrors.ErrBadRequest, txn.CompanyID, companyID)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Create(&txn)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "SaveTransaction Commit", operation)
	observer.ObserveDbOperationDuration("insert", "transaction", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to save transaction after retries", zap.String("transaction_id", txn.ID), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}

// FindTransactions lists ledger entries for the tenant, newest date first.
func (r *PostgresRepo) FindTransactions(ctx context.Context) ([]model.FinancialTransaction, error) {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}
	loggerCtx := logger.FromContext(ctx)

	var txns []model.FinancialTransaction
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("company_id = ?", companyID).
			Order("date DESC").
			Find(&txns)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindTransactions", operation)
	observer.ObserveDbOperationDuration("find", "transaction", companyID, time.Since(startTime), findErr)

	if findErr != nil {
		loggerCtx.Error("Failed to list transactions after retries", zap.String("company_id", companyID), zap.Error(findErr))
		return nil, findErr // Already wrapped
	}

	return txns, nil
}

// DeleteTransactionsByContractID removes the ledger entries linked to a
// contract. Used by the contract delete cascade; zero matching rows is
// not an error.
func (r *PostgresRepo) DeleteTransactionsByContractID(ctx context.Context, contractID string) error {
	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("related_contract_id = ? AND company_id = ?", contractID, companyID).
			Delete(&model.FinancialTransaction{})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "DeleteTransactionsByContractID Commit", operation)
	observer.ObserveDbOperationDuration("delete", "transaction", companyID, time.Since(startTime), commitErr)

	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to delete transactions by contract after retries",
			zap.String("contract_id", contractID), zap.Error(commitErr))
		return commitErr // Already wrapped
	}

	return nil
}
