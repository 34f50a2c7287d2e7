// Package mock provides testify mocks for the storage interfaces.
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

// --- ContractRepo Mock ---

// ContractRepoMock mocks the ContractRepo interface
type ContractRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *ContractRepoMock) Save(ctx context.Context, contract model.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

// FindAll mocks the FindAll method
func (m *ContractRepoMock) FindAll(ctx context.Context) ([]model.Contract, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contract), args.Error(1)
}

// FindByID mocks the FindByID method
func (m *ContractRepoMock) FindByID(ctx context.Context, id string) (*model.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contract), args.Error(1)
}

// UpdateFields mocks the UpdateFields method
func (m *ContractRepoMock) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

// IncrementClicks mocks the IncrementClicks method
func (m *ContractRepoMock) IncrementClicks(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// RecordClick mocks the RecordClick method
func (m *ContractRepoMock) RecordClick(ctx context.Context, contractID string, at time.Time) error {
	args := m.Called(ctx, contractID, at)
	return args.Error(0)
}

// CountClicksBetween mocks the CountClicksBetween method
func (m *ContractRepoMock) CountClicksBetween(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// Delete mocks the Delete method
func (m *ContractRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Close mocks the Close method
func (m *ContractRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- TransactionRepo Mock ---

// TransactionRepoMock mocks the TransactionRepo interface
type TransactionRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *TransactionRepoMock) Save(ctx context.Context, txn model.FinancialTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// FindAll mocks the FindAll method
func (m *TransactionRepoMock) FindAll(ctx context.Context) ([]model.FinancialTransaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FinancialTransaction), args.Error(1)
}

// DeleteByContractID mocks the DeleteByContractID method
func (m *TransactionRepoMock) DeleteByContractID(ctx context.Context, contractID string) error {
	args := m.Called(ctx, contractID)
	return args.Error(0)
}

// Close mocks the Close method
func (m *TransactionRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- LeadRepo Mock ---

// LeadRepoMock mocks the LeadRepo interface
type LeadRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *LeadRepoMock) Save(ctx context.Context, lead model.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// FindAll mocks the FindAll method
func (m *LeadRepoMock) FindAll(ctx context.Context) ([]model.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

// UpdateStage mocks the UpdateStage method
func (m *LeadRepoMock) UpdateStage(ctx context.Context, leadID, stage string) error {
	args := m.Called(ctx, leadID, stage)
	return args.Error(0)
}

// Close mocks the Close method
func (m *LeadRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MessageRepo Mock ---

// MessageRepoMock mocks the MessageRepo interface
type MessageRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *MessageRepoMock) Save(ctx context.Context, msg model.RawChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindAll mocks the FindAll method
func (m *MessageRepoMock) FindAll(ctx context.Context) ([]model.RawChatMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawChatMessage), args.Error(1)
}

// FindByChatID mocks the FindByChatID method
func (m *MessageRepoMock) FindByChatID(ctx context.Context, chatIDs []string) ([]model.RawChatMessage, error) {
	args := m.Called(ctx, chatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawChatMessage), args.Error(1)
}

// UpdateAttendanceMode mocks the UpdateAttendanceMode method
func (m *MessageRepoMock) UpdateAttendanceMode(ctx context.Context, chatIDs []string, mode string) error {
	args := m.Called(ctx, chatIDs, mode)
	return args.Error(0)
}

// Close mocks the Close method
func (m *MessageRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- RoutineRepo Mock ---

// RoutineRepoMock mocks the RoutineRepo interface
type RoutineRepoMock struct {
	mock.Mock
}

// Get mocks the Get method
func (m *RoutineRepoMock) Get(ctx context.Context) (model.RoutineDoc, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.RoutineDoc), args.Error(1)
}

// Save mocks the Save method
func (m *RoutineRepoMock) Save(ctx context.Context, doc model.RoutineDoc) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// Close mocks the Close method
func (m *RoutineRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- SettingsRepo Mock ---

// SettingsRepoMock mocks the SettingsRepo interface
type SettingsRepoMock struct {
	mock.Mock
}

// Get mocks the Get method
func (m *SettingsRepoMock) Get(ctx context.Context) (model.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Settings), args.Error(1)
}

// Save mocks the Save method
func (m *SettingsRepoMock) Save(ctx context.Context, settings model.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// Close mocks the Close method
func (m *SettingsRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- WebhookLogRepo Mock ---

// WebhookLogRepoMock mocks the WebhookLogRepo interface
type WebhookLogRepoMock struct {
	mock.Mock
}

// Append mocks the Append method
func (m *WebhookLogRepoMock) Append(ctx context.Context, entry model.WebhookLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// FindRecent mocks the FindRecent method
func (m *WebhookLogRepoMock) FindRecent(ctx context.Context, limit int) ([]model.WebhookLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WebhookLog), args.Error(1)
}

// Close mocks the Close method
func (m *WebhookLogRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
