package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/agenda"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/derive"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/storage"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/tenant"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/validator"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/logger"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// ContractService handles tracked links / service contracts: creation,
// partial updates, archival, cascade delete and the click report.
type ContractService struct {
	contracts    storage.ContractRepo
	transactions storage.TransactionRepo
	calendar     agenda.Provider
}

// NewContractService creates a contract service
func NewContractService(contracts storage.ContractRepo, transactions storage.TransactionRepo, calendar agenda.Provider) *ContractService {
	return &ContractService{
		contracts:    contracts,
		transactions: transactions,
		calendar:     calendar,
	}
}

// List returns all contracts, archived included.
func (s *ContractService) List(ctx context.Context) ([]model.Contract, error) {
	return s.contracts.FindAll(ctx)
}

// Clients returns the contracts grouped into the per-client view.
func (s *ContractService) Clients(ctx context.Context) ([]model.Client, error) {
	contracts, err := s.contracts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return derive.Clients(contracts), nil
}

// Create stores a new contract. When a calendar id is given and the
// contract carries dates, an all-day event for the engagement period is
// scheduled as a side effect; a scheduling failure does not undo the
// contract.
func (s *ContractService) Create(ctx context.Context, contract model.Contract, calendarID string) (model.Contract, error) {
	log := logger.FromContext(ctx)

	if err := validator.Validate(contract); err != nil {
		return model.Contract{}, apperrors.NewFatal(err, "contract validation failed")
	}

	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return model.Contract{}, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	if contract.ID == "" {
		contract.ID = uuid.NewString()
	}
	if contract.ClientType == "" {
		contract.ClientType = model.ClientTypeCliente
	}
	contract.Clicks = 0
	contract.CompanyID = companyID

	if err := s.contracts.Save(ctx, contract); err != nil {
		return model.Contract{}, err
	}

	if calendarID != "" && contract.StartDate != "" && contract.EndDate != "" {
		if err := s.scheduleEngagement(ctx, calendarID, contract); err != nil {
			log.Warn("Failed to schedule contract period on calendar",
				zap.String("contract_id", contract.ID),
				zap.String("calendar_id", calendarID),
				zap.Error(err))
		}
	}

	return contract, nil
}

// CreateSimpleTracker stores a minimal contract used purely for click
// tracking on a shared link.
func (s *ContractService) CreateSimpleTracker(ctx context.Context, name, url string) (model.Contract, error) {
	if name == "" || url == "" {
		return model.Contract{}, fmt.Errorf("%w: name and url are required", apperrors.ErrBadRequest)
	}

	companyID, err := tenant.FromContext(ctx)
	if err != nil {
		return model.Contract{}, fmt.Errorf("%w: failed to get tenant ID: %w", apperrors.ErrUnauthorized, err)
	}

	contract := model.Contract{
		ID:          uuid.NewString(),
		Name:        name,
		OriginalURL: url,
		ClientType:  model.ClientTypeContato,
		CompanyID:   companyID,
	}
	if err := s.contracts.Save(ctx, contract); err != nil {
		return model.Contract{}, err
	}
	return contract, nil
}

// RegisterClick bumps the contract's counter, records the event for
// reporting, and returns the new total.
func (s *ContractService) RegisterClick(ctx context.Context, id string) (int64, error) {
	if err := s.contracts.IncrementClicks(ctx, id); err != nil {
		return 0, err
	}

	// The counter is already durable, a lost event row only skews reports
	if err := s.contracts.RecordClick(ctx, id, utils.Now()); err != nil {
		logger.FromContext(ctx).Warn("Failed to record click event", zap.String("contract_id", id), zap.Error(err))
	}

	contract, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return contract.Clicks, nil
}

// UpdateWorkMaterials replaces the contract's ordered material list.
func (s *ContractService) UpdateWorkMaterials(ctx context.Context, id string, materials []model.WorkMaterial) error {
	for i, m := range materials {
		if err := validator.Validate(m); err != nil {
			return apperrors.NewFatal(err, "work material %d is invalid", i)
		}
	}
	return s.contracts.UpdateFields(ctx, id, map[string]interface{}{
		"work_materials": model.WorkMaterialsJSON(materials),
	})
}

// UpdateDates replaces the engagement period.
func (s *ContractService) UpdateDates(ctx context.Context, id, startDate, endDate string) error {
	for _, d := range []string{startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := utils.ParseDate(d); err != nil {
			return fmt.Errorf("%w: invalid date %q", apperrors.ErrBadRequest, d)
		}
	}
	return s.contracts.UpdateFields(ctx, id, map[string]interface{}{
		"start_date": startDate,
		"end_date":   endDate,
	})
}

// UpdateContactInfo replaces the contact fields in one call.
func (s *ContractService) UpdateContactInfo(ctx context.Context, id, phone, instagram, email, cpf, cnpj, companyName string) error {
	return s.contracts.UpdateFields(ctx, id, map[string]interface{}{
		"phone":        phone,
		"instagram":    instagram,
		"email":        email,
		"cpf":          cpf,
		"cnpj":         cnpj,
		"company_name": companyName,
	})
}

// UpdatePackageInfo replaces the free-text package description.
func (s *ContractService) UpdatePackageInfo(ctx context.Context, id, packageInfo string) error {
	return s.contracts.UpdateFields(ctx, id, map[string]interface{}{
		"package_info": packageInfo,
	})
}

// SetArchived flips the soft-delete flag.
func (s *ContractService) SetArchived(ctx context.Context, id string, archived bool) error {
	return s.contracts.UpdateFields(ctx, id, map[string]interface{}{
		"is_archived": archived,
	})
}

// Delete removes the contract and cascades to its ledger entries.
func (s *ContractService) Delete(ctx context.Context, id string) error {
	if err := s.contracts.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.transactions.DeleteByContractID(ctx, id); err != nil {
		logger.FromContext(ctx).Error("Contract deleted but cascade to transactions failed",
			zap.String("contract_id", id), zap.Error(err))
		return err
	}
	return nil
}

// Report builds the click report for [startDate, endDate]. linkID
// narrows it to one contract; "all" or empty means every contract.
func (s *ContractService) Report(ctx context.Context, startDate, endDate, linkID string) (model.ReportData, error) {
	from, err := utils.ParseDate(startDate)
	if err != nil {
		return model.ReportData{}, fmt.Errorf("%w: invalid start date %q", apperrors.ErrBadRequest, startDate)
	}
	to, err := utils.ParseDate(endDate)
	if err != nil {
		return model.ReportData{}, fmt.Errorf("%w: invalid end date %q", apperrors.ErrBadRequest, endDate)
	}
	if to.Before(from) {
		return model.ReportData{}, fmt.Errorf("%w: end date precedes start date", apperrors.ErrBadRequest)
	}
	// Inclusive range: count clicks through the end of the last day
	toEnd := to.Add(24*time.Hour - time.Nanosecond)

	totals, err := s.contracts.CountClicksBetween(ctx, from, toEnd)
	if err != nil {
		return model.ReportData{}, err
	}

	contracts, err := s.contracts.FindAll(ctx)
	if err != nil {
		return model.ReportData{}, err
	}

	report := model.ReportData{
		StartDate: startDate,
		EndDate:   endDate,
		Links:     []model.ReportLine{},
	}
	for _, contract := range contracts {
		if linkID != "" && linkID != "all" && contract.ID != linkID {
			continue
		}
		clicks := totals[contract.ID]
		report.TotalClicks += clicks
		report.Links = append(report.Links, model.ReportLine{
			ID:             contract.ID,
			Name:           contract.Name,
			ClicksInPeriod: clicks,
		})
		if linkID != "" && linkID != "all" {
			report.FilterName = contract.Name
		}
	}
	sort.SliceStable(report.Links, func(a, b int) bool {
		return report.Links[a].ClicksInPeriod > report.Links[b].ClicksInPeriod
	})

	return report, nil
}

func (s *ContractService) scheduleEngagement(ctx context.Context, calendarID string, contract model.Contract) error {
	start, err := utils.ParseDate(contract.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", contract.StartDate, err)
	}
	end, err := utils.ParseDate(contract.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", contract.EndDate, err)
	}

	_, err = s.calendar.Create(ctx, calendarID, model.AgendaItem{
		Title:       fmt.Sprintf("Contrato: %s", contract.Name),
		Description: contract.PackageInfo,
		Start:       start,
		End:         end.Add(24 * time.Hour),
		IsAllDay:    true,
	})
	return err
}
