package model

import (
	"time"

	"gorm.io/gorm/schema"
)

// Lead is a CRM kanban card. Its ID is the normalized chat identifier,
// which keeps leads and conversations cross-referenceable.
type Lead struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text" validate:"required"`
	Name        string    `json:"name" gorm:"column:name"`
	Phone       string    `json:"phone" gorm:"column:phone;index"`
	Stage       string    `json:"stage,omitempty" gorm:"column:stage"`
	LastMessage string    `json:"lastMessage,omitempty" gorm:"column:last_message"`
	CompanyID   string    `json:"companyId,omitempty" gorm:"column:company_id"`
	CreatedAt   time.Time `json:"createdAt,omitempty" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the base table name for GORM, respecting the Namer.
func (Lead) TableName(namer schema.Namer) string {
	return namer.TableName("crm_leads")
}

// GetUpdatableFields returns column names updated during an ON CONFLICT upsert.
func (l *Lead) GetUpdatableFields() []string {
	return []string{"name", "phone", "stage", "last_message", "updated_at"}
}
