package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/parser"
)

func TestClients_Empty(t *testing.T) {
	assert.Empty(t, Clients(nil))
	assert.Empty(t, Clients([]model.Contract{}))
}

func TestClients_GroupsByExactName(t *testing.T) {
	contracts := []model.Contract{
		{ID: "1", Name: "Ana", StartDate: "2024-01-01"},
		{ID: "2", Name: "Bruno", StartDate: "2024-02-01"},
		{ID: "3", Name: "Ana", StartDate: "2024-06-01"},
		{ID: "4", Name: "ana", StartDate: "2024-03-01"}, // different case, different client
	}

	clients := Clients(contracts)
	require.Len(t, clients, 3)
	assert.Equal(t, "Ana", clients[0].Name)
	assert.Len(t, clients[0].Contracts, 2)
	assert.Equal(t, "Bruno", clients[1].Name)
	assert.Equal(t, "ana", clients[2].Name)
}

func TestClients_ContactFieldsFromLatestContract(t *testing.T) {
	contracts := []model.Contract{
		{ID: "old", Name: "Ana", StartDate: "2024-01-01", Phone: "11911110000", Email: "old@x.com", ClientType: model.ClientTypeLead},
		{ID: "new", Name: "Ana", StartDate: "2024-06-01", Phone: "11922220000", Email: "new@x.com", ClientType: model.ClientTypeCliente},
	}

	clients := Clients(contracts)
	require.Len(t, clients, 1)
	client := clients[0]

	assert.Equal(t, "new", client.Contracts[0].ID)
	assert.Equal(t, "old", client.Contracts[1].ID)
	assert.Equal(t, "11922220000", client.Phone)
	assert.Equal(t, "new@x.com", client.Email)
	assert.Equal(t, model.ClientTypeCliente, client.ClientType)
}

func TestClients_InvalidStartDateSortsEarliest(t *testing.T) {
	contracts := []model.Contract{
		{ID: "nodate", Name: "Ana", StartDate: "", Phone: "000"},
		{ID: "dated", Name: "Ana", StartDate: "2024-03-01", Phone: "111"},
	}

	clients := Clients(contracts)
	require.Len(t, clients, 1)
	assert.Equal(t, "dated", clients[0].Contracts[0].ID)
	assert.Equal(t, "111", clients[0].Phone)
}

// End-to-end scenario: latest contract drives the displayed plan/value.
func TestClients_PlanFollowsLatestContract(t *testing.T) {
	contracts := []model.Contract{
		{ID: "1", Name: "Ana", StartDate: "2024-01-01", PackageInfo: "Básico: stories (R$160,00)"},
		{ID: "2", Name: "Ana", StartDate: "2024-06-01", PackageInfo: "Premium (R$497,00)"},
	}

	clients := Clients(contracts)
	require.Len(t, clients, 1)
	require.Len(t, clients[0].Contracts, 2)
	assert.Equal(t, "2024-06-01", clients[0].Contracts[0].StartDate)
	assert.Equal(t, "2024-01-01", clients[0].Contracts[1].StartDate)

	assert.Equal(t, "Premium", clients[0].Plan)
	assert.InDelta(t, 497.00, clients[0].Value, 0.0001)
}

func TestClientsAt_StatusFromLatestEndDate(t *testing.T) {
	ref := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.Local)
	contracts := []model.Contract{
		{ID: "expired", Name: "Ana", StartDate: "2025-01-01", EndDate: "2025-12-31"},
		{ID: "current", Name: "Ana", StartDate: "2026-01-01", EndDate: "2026-03-14"},
		{ID: "nodate", Name: "Bruno", StartDate: "2026-01-01"},
	}

	clients := ClientsAt(contracts, ref)
	require.Len(t, clients, 2)

	// Four days out counts as due soon, and the expired older contract
	// does not leak into the client's status.
	assert.Equal(t, string(parser.StatusDueSoon), clients[0].Status)
	assert.Empty(t, clients[1].Status)
}
