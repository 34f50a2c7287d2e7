package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/validator"
)

// LedgerService handles the simple income/expense ledger.
type LedgerService struct {
	transactions storage.TransactionRepo
}

// NewLedgerService creates a ledger service
func NewLedgerService(transactions storage.TransactionRepo) *LedgerService {
	return &LedgerService{transactions: transactions}
}

// List returns all ledger entries, newest first.
func (s *LedgerService) List(ctx context.Context) ([]model.FinancialTransaction, error) {
	return s.transactions.FindAll(ctx)
}

// Add stores one ledger entry.
func (s *LedgerService) Add(ctx context.Context, txn model.FinancialTransaction) (model.FinancialTransaction, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if err := validator.Validate(txn); err != nil {
		return model.FinancialTransaction{}, apperrors.NewFatal(err, "transaction validation failed")
	}

	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return model.FinancialTransaction{}, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}
	txn.CompanyID = companyID

	if err := s.transactions.Save(ctx, txn); err != nil {
		return model.FinancialTransaction{}, err
	}
	return txn, nil
}
