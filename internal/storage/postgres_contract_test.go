package storage

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

func TestPostgresRepo_SaveContract_Upsert(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	contract := model.Contract{
		ID:            "c-upsert-1",
		Name:          "Ana Souza",
		CompanyName:   "Studio Ana",
		OriginalURL:   "https://example.com/promo",
		ShortURL:      "https://noca.ge/abc123",
		WorkMaterials: datatypes.JSON(utils.MustMarshalJSON([]model.WorkMaterial{{URL: "https://drive.test/doc", Type: "drive"}})),
		StartDate:     "2026-08-01",
		EndDate:       "2026-09-01",
		Phone:         "5511999990001",
		PackageInfo:   "Plano: premium | Valor: R$ 497,00",
		ClientType:    model.ClientTypeCliente,
		CompanyID:     testTenantID,
	}

	mock.ExpectExec(`INSERT INTO "contracts" .* ON CONFLICT \("id"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveContract(ctx, contract)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_SaveContract_TenantMismatch(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	contract := model.Contract{
		ID:        "c-mismatch",
		Name:      "Someone",
		CompanyID: "other-tenant",
	}

	err := repo.SaveContract(ctx, contract)

	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_FindContracts(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	rows := sqlmock.NewRows([]string{"id", "name", "company_id", "is_archived"}).
		AddRow("c-1", "Ana Souza", testTenantID, false).
		AddRow("c-2", "Bruno Lima", testTenantID, true)

	mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE company_id = .* ORDER BY created_at DESC`).
		WithArgs(testTenantID).
		WillReturnRows(rows)

	contracts, err := repo.FindContracts(ctx)

	assert.NoError(t, err)
	assert.Len(t, contracts, 2)
	assert.Equal(t, "Ana Souza", contracts[0].Name)
	assert.True(t, contracts[1].IsArchived)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_FindContractByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE id = .* AND company_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	contract, err := repo.FindContractByID(ctx, "missing")

	assert.Nil(t, contract)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateContractFields(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	mock.ExpectExec(`UPDATE "contracts" SET .* WHERE id = .* AND company_id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateContractFields(ctx, "c-1", map[string]interface{}{
		"start_date": "2026-09-01",
		"end_date":   "2026-10-01",
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateContractFields_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	mock.ExpectExec(`UPDATE "contracts" SET .* WHERE id = .* AND company_id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateContractFields(ctx, "missing", map[string]interface{}{"is_archived": true})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateContractFields_Empty(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	// No SQL expected for an empty field map.
	err := repo.UpdateContractFields(ctx, "c-1", map[string]interface{}{})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_IncrementContractClicks(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	mock.ExpectExec(`UPDATE "contracts" SET "clicks"=clicks \+ .* WHERE id = .* AND company_id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementContractClicks(ctx, "c-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_DeleteContract(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	mock.ExpectExec(`DELETE FROM "contracts" WHERE id = .* AND company_id = `).
		WithArgs("c-1", testTenantID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeleteContract(ctx, "c-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_DeleteContract_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	mock.ExpectExec(`DELETE FROM "contracts" WHERE id = .* AND company_id = `).
		WithArgs("missing", testTenantID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteContract(ctx, "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
