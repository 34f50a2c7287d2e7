package storage

import (
	"context"
	"time"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

// ContractRepo defines contract storage operations
type ContractRepo interface {
	Save(ctx context.Context, contract model.Contract) error
	FindAll(ctx context.Context) ([]model.Contract, error)
	FindByID(ctx context.Context, id string) (*model.Contract, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	IncrementClicks(ctx context.Context, id string) error
	RecordClick(ctx context.Context, contractID string, at time.Time) error
	CountClicksBetween(ctx context.Context, from, to time.Time) (map[string]int64, error)
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// TransactionRepo defines ledger storage operations
type TransactionRepo interface {
	Save(ctx context.Context, txn model.FinancialTransaction) error
	FindAll(ctx context.Context) ([]model.FinancialTransaction, error)
	DeleteByContractID(ctx context.Context, contractID string) error
	Close(ctx context.Context) error
}

// LeadRepo defines CRM lead storage operations
type LeadRepo interface {
	Save(ctx context.Context, lead model.Lead) error
	FindAll(ctx context.Context) ([]model.Lead, error)
	UpdateStage(ctx context.Context, leadID, stage string) error
	Close(ctx context.Context) error
}

// MessageRepo defines raw chat message storage operations
type MessageRepo interface {
	Save(ctx context.Context, msg model.RawChatMessage) error
	FindAll(ctx context.Context) ([]model.RawChatMessage, error)
	FindByChatID(ctx context.Context, chatIDs []string) ([]model.RawChatMessage, error)
	UpdateAttendanceMode(ctx context.Context, chatIDs []string, mode string) error
	Close(ctx context.Context) error
}

// RoutineRepo defines routine checklist document storage operations
type RoutineRepo interface {
	Get(ctx context.Context) (model.RoutineDoc, error)
	Save(ctx context.Context, doc model.RoutineDoc) error
	Close(ctx context.Context) error
}

// SettingsRepo defines integration settings storage operations
type SettingsRepo interface {
	Get(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, settings model.Settings) error
	Close(ctx context.Context) error
}

// WebhookLogRepo defines webhook log storage operations
type WebhookLogRepo interface {
	Append(ctx context.Context, entry model.WebhookLog) error
	FindRecent(ctx context.Context, limit int) ([]model.WebhookLog, error)
	Close(ctx context.Context) error
}
