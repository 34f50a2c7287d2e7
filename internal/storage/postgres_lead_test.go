package storage

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

func TestPostgresRepo_SaveLead_Upsert(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	lead := model.Lead{
		ID:          "5511999990001@c.us",
		Name:        "Carla",
		Phone:       "5511999990001",
		Stage:       "new",
		LastMessage: "Oi, quero saber mais",
		CompanyID:   testTenantID,
	}

	mock.ExpectExec(`INSERT INTO "crm_leads" .* ON CONFLICT \("id"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveLead(ctx, lead)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_FindLeads(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	rows := sqlmock.NewRows([]string{"id", "name", "stage", "company_id"}).
		AddRow("a@c.us", "Ana", "new", testTenantID).
		AddRow("b@c.us", "Bruno", "negotiation", testTenantID)

	mock.ExpectQuery(`SELECT \* FROM "crm_leads" WHERE company_id = .* ORDER BY created_at ASC`).
		WithArgs(testTenantID).
		WillReturnRows(rows)

	leads, err := repo.FindLeads(ctx)

	assert.NoError(t, err)
	assert.Len(t, leads, 2)
	assert.Equal(t, "negotiation", leads[1].Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateLeadStage(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	mock.ExpectExec(`UPDATE "crm_leads" SET .* WHERE id = .* AND company_id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateLeadStage(ctx, "a@c.us", "payment")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateLeadStage_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := contextWithTestTenant()

	mock.ExpectExec(`UPDATE "crm_leads" SET .* WHERE id = .* AND company_id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateLeadStage(ctx, "missing@c.us", "active")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
