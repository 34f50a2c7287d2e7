package storage

import (
	"context"
	"time"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

// ContractRepoAdapter adapts the PostgresRepo to the ContractRepo interface
type ContractRepoAdapter struct {
	postgres *PostgresRepo
}

// NewContractRepoAdapter creates a new contract repository adapter
func NewContractRepoAdapter(postgres *PostgresRepo) ContractRepo {
	return &ContractRepoAdapter{postgres: postgres}
}

// Save upserts a contract
func (a *ContractRepoAdapter) Save(ctx context.Context, contract model.Contract) error {
	return a.postgres.SaveContract(ctx, contract)
}

// FindAll lists contracts
func (a *ContractRepoAdapter) FindAll(ctx context.Context) ([]model.Contract, error) {
	return a.postgres.FindContracts(ctx)
}

// FindByID finds a contract by ID
func (a *ContractRepoAdapter) FindByID(ctx context.Context, id string) (*model.Contract, error) {
	return a.postgres.FindContractByID(ctx, id)
}

// UpdateFields applies a partial update
func (a *ContractRepoAdapter) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return a.postgres.UpdateContractFields(ctx, id, fields)
}

// IncrementClicks bumps the click counter
func (a *ContractRepoAdapter) IncrementClicks(ctx context.Context, id string) error {
	return a.postgres.IncrementContractClicks(ctx, id)
}

// RecordClick appends a click event for reporting
func (a *ContractRepoAdapter) RecordClick(ctx context.Context, contractID string, at time.Time) error {
	return a.postgres.RecordClick(ctx, contractID, at)
}

// CountClicksBetween sums click events per contract over a date range
func (a *ContractRepoAdapter) CountClicksBetween(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	return a.postgres.CountClicksBetween(ctx, from, to)
}

// Delete removes a contract
func (a *ContractRepoAdapter) Delete(ctx context.Context, id string) error {
	return a.postgres.DeleteContract(ctx, id)
}

func (a *ContractRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// TransactionRepoAdapter adapts the PostgresRepo to the TransactionRepo interface
type TransactionRepoAdapter struct {
	postgres *PostgresRepo
}

// NewTransactionRepoAdapter creates a new transaction repository adapter
func NewTransactionRepoAdapter(postgres *PostgresRepo) TransactionRepo {
	return &TransactionRepoAdapter{postgres: postgres}
}

// Save inserts a ledger entry
func (a *TransactionRepoAdapter) Save(ctx context.Context, txn model.FinancialTransaction) error {
	return a.postgres.SaveTransaction(ctx, txn)
}

// FindAll lists ledger entries
func (a *TransactionRepoAdapter) FindAll(ctx context.Context) ([]model.FinancialTransaction, error) {
	return a.postgres.FindTransactions(ctx)
}

// DeleteByContractID removes entries linked to a contract
func (a *TransactionRepoAdapter) DeleteByContractID(ctx context.Context, contractID string) error {
	return a.postgres.DeleteTransactionsByContractID(ctx, contractID)
}

func (a *TransactionRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// LeadRepoAdapter adapts the PostgresRepo to the LeadRepo interface
type LeadRepoAdapter struct {
	postgres *PostgresRepo
}

// NewLeadRepoAdapter creates a new lead repository adapter
func NewLeadRepoAdapter(postgres *PostgresRepo) LeadRepo {
	return &LeadRepoAdapter{postgres: postgres}
}

// Save upserts a lead
func (a *LeadRepoAdapter) Save(ctx context.Context, lead model.Lead) error {
	return a.postgres.SaveLead(ctx, lead)
}

// FindAll lists leads
func (a *LeadRepoAdapter) FindAll(ctx context.Context) ([]model.Lead, error) {
	return a.postgres.FindLeads(ctx)
}

// UpdateStage moves a lead to another pipeline stage
func (a *LeadRepoAdapter) UpdateStage(ctx context.Context, leadID, stage string) error {
	return a.postgres.UpdateLeadStage(ctx, leadID, stage)
}

func (a *LeadRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// MessageRepoAdapter adapts the PostgresRepo to the MessageRepo interface
type MessageRepoAdapter struct {
	postgres *PostgresRepo
}

// NewMessageRepoAdapter creates a new message repository adapter
func NewMessageRepoAdapter(postgres *PostgresRepo) MessageRepo {
	return &MessageRepoAdapter{postgres: postgres}
}

// Save upserts a raw chat message
func (a *MessageRepoAdapter) Save(ctx context.Context, msg model.RawChatMessage) error {
	return a.postgres.SaveRawMessage(ctx, msg)
}

// FindAll lists all stored messages
func (a *MessageRepoAdapter) FindAll(ctx context.Context) ([]model.RawChatMessage, error) {
	return a.postgres.FindRawMessages(ctx)
}

// FindByChatID returns one thread's messages
func (a *MessageRepoAdapter) FindByChatID(ctx context.Context, chatIDs []string) ([]model.RawChatMessage, error) {
	return a.postgres.FindRawMessagesByChatID(ctx, chatIDs)
}

// UpdateAttendanceMode flips a thread's attendance flag
func (a *MessageRepoAdapter) UpdateAttendanceMode(ctx context.Context, chatIDs []string, mode string) error {
	return a.postgres.UpdateRawMessageAttendanceMode(ctx, chatIDs, mode)
}

func (a *MessageRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// RoutineRepoAdapter adapts the PostgresRepo to the RoutineRepo interface
type RoutineRepoAdapter struct {
	postgres *PostgresRepo
}

// NewRoutineRepoAdapter creates a new routine repository adapter
func NewRoutineRepoAdapter(postgres *PostgresRepo) RoutineRepo {
	return &RoutineRepoAdapter{postgres: postgres}
}

// Get loads the routine document
func (a *RoutineRepoAdapter) Get(ctx context.Context) (model.RoutineDoc, error) {
	return a.postgres.GetRoutineDoc(ctx)
}

// Save replaces the routine document
func (a *RoutineRepoAdapter) Save(ctx context.Context, doc model.RoutineDoc) error {
	return a.postgres.SaveRoutineDoc(ctx, doc)
}

func (a *RoutineRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// SettingsRepoAdapter adapts the PostgresRepo to the SettingsRepo interface
type SettingsRepoAdapter struct {
	postgres *PostgresRepo
}

// NewSettingsRepoAdapter creates a new settings repository adapter
func NewSettingsRepoAdapter(postgres *PostgresRepo) SettingsRepo {
	return &SettingsRepoAdapter{postgres: postgres}
}

// Get loads the integration settings
func (a *SettingsRepoAdapter) Get(ctx context.Context) (model.Settings, error) {
	return a.postgres.GetSettings(ctx)
}

// Save upserts the integration settings
func (a *SettingsRepoAdapter) Save(ctx context.Context, settings model.Settings) error {
	return a.postgres.SaveSettings(ctx, settings)
}

func (a *SettingsRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// WebhookLogRepoAdapter adapts the PostgresRepo to the WebhookLogRepo interface
type WebhookLogRepoAdapter struct {
	postgres *PostgresRepo
}

// NewWebhookLogRepoAdapter creates a new webhook log repository adapter
func NewWebhookLogRepoAdapter(postgres *PostgresRepo) WebhookLogRepo {
	return &WebhookLogRepoAdapter{postgres: postgres}
}

// Append records one log line
func (a *WebhookLogRepoAdapter) Append(ctx context.Context, entry model.WebhookLog) error {
	return a.postgres.AppendWebhookLog(ctx, entry)
}

// FindRecent returns the newest log lines
func (a *WebhookLogRepoAdapter) FindRecent(ctx context.Context, limit int) ([]model.WebhookLog, error) {
	return a.postgres.FindRecentWebhookLogs(ctx, limit)
}

func (a *WebhookLogRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}
