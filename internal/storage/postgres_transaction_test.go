package storage

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

func TestPostgresRepo_SaveTransaction(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	txn := model.FinancialTransaction{
		ID:                "t-1",
		Date:              "2026-09-01",
		Description:       "Contrato: Ana Souza",
		Type:              model.TransactionReceita,
		Amount:            497.00,
		RelatedContractID: "c-1",
		CompanyID:         testTenantID,
	}

	mock.ExpectExec(`INSERT INTO "transactions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveTransaction(ctx, txn)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_SaveTransaction_TenantMismatch(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	txn := model.FinancialTransaction{
		ID:        "t-bad",
		Date:      "2026-09-01",
		Type:      model.TransactionDespesa,
		CompanyID: "other-tenant",
	}

	err := repo.SaveTransaction(ctx, txn)

	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_FindTransactions(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	rows := sqlmock.NewRows([]string{"id", "date", "type", "amount", "company_id"}).
		AddRow("t-2", "2026-08-15", model.TransactionDespesa, 120.50, testTenantID).
		AddRow("t-1", "2026-08-01", model.TransactionReceita, 497.00, testTenantID)

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE company_id = .* ORDER BY date DESC`).
		WithArgs(testTenantID).
		WillReturnRows(rows)

	txns, err := repo.FindTransactions(ctx)

	assert.NoError(t, err)
	assert.Len(t, txns, 2)
	assert.Equal(t, 120.50, txns[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_DeleteTransactionsByContractID(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	mock.ExpectExec(`DELETE FROM "transactions" WHERE related_contract_id = .* AND company_id = `).
		WithArgs("c-1", testTenantID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.DeleteTransactionsByContractID(ctx, "c-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_DeleteTransactionsByContractID_NoRows(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	// Cascade delete with nothing linked is not an error.
	mock.ExpectExec(`DELETE FROM "transactions" WHERE related_contract_id = .* AND company_id = `).
		WithArgs("c-lonely", testTenantID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteTransactionsByContractID(ctx, "c-lonely")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_FindRawMessagesByChatID(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	rows := sqlmock.NewRows([]string{"id", "message_id", "chat_id", "text", "company_id"}).
		AddRow(1, "m-1", "5511999990001@c.us", "oi", testTenantID)

	mock.ExpectQuery(`SELECT \* FROM "chat_messages" WHERE chat_id IN .* AND company_id = .* ORDER BY timestamp ASC`).
		WithArgs("5511999990001@c.us", "5511999990001", testTenantID).
		WillReturnRows(rows)

	messages, err := repo.FindRawMessagesByChatID(ctx, []string{"5511999990001@c.us", "5511999990001"})

	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, "m-1", messages[0].MessageID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
