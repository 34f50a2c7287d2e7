// Package derive holds the pure projection functions that turn
// persisted flat records into the views the dashboard renders: clients
// from contracts and conversation threads from raw chat messages.
// Nothing here touches storage; callers recompute on demand instead of
// caching a second copy of the truth.
package derive

import (
	"sort"
	"time"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/parser"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// Clients groups contracts into clients keyed by exact name, with the
// lifecycle status anchored to the current day.
func Clients(contracts []model.Contract) []model.Client {
	return ClientsAt(contracts, utils.Now())
}

// ClientsAt groups contracts into clients keyed by exact name. Each
// client's contracts are ordered by start date descending, with
// missing or unparsable dates sorting as earliest, and the client's
// contact fields come from the resulting latest contract. The displayed
// plan, value and lifecycle status are derived from that latest
// contract as well, with day counting anchored to ref. Client order
// follows first appearance in the input.
func ClientsAt(contracts []model.Contract, ref time.Time) []model.Client {
	byName := make(map[string]int)
	clients := make([]model.Client, 0)

	for _, contract := range contracts {
		idx, ok := byName[contract.Name]
		if !ok {
			idx = len(clients)
			byName[contract.Name] = idx
			clients = append(clients, model.Client{Name: contract.Name})
		}
		clients[idx].Contracts = append(clients[idx].Contracts, contract)
	}

	for i := range clients {
		contracts := clients[i].Contracts
		sort.SliceStable(contracts, func(a, b int) bool {
			return startDateUnix(contracts[a]) > startDateUnix(contracts[b])
		})

		latest := contracts[0]
		clients[i].CompanyName = latest.CompanyName
		clients[i].Phone = latest.Phone
		clients[i].Instagram = latest.Instagram
		clients[i].Email = latest.Email
		clients[i].ClientType = latest.ClientType
		clients[i].CPF = latest.CPF
		clients[i].CNPJ = latest.CNPJ

		if status, ok := parser.ContractStatus(latest.EndDate, ref); ok {
			clients[i].Status = string(status)
		}
		clients[i].Plan = parser.PackageType(latest.PackageInfo)
		clients[i].Value = parser.PackageValue(latest.PackageInfo)
	}

	return clients
}

func startDateUnix(c model.Contract) int64 {
	t, err := utils.ParseDate(c.StartDate)
	if err != nil {
		return 0
	}
	return t.Unix()
}
