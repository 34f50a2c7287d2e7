package model

import (
	"time"

	"gorm.io/gorm/schema"
)

// Financial transaction types.
const (
	TransactionReceita = "receita"
	TransactionDespesa = "despesa"
)

// FinancialTransaction is one ledger entry. RelatedContractID links a
// revenue entry back to its contract so contract deletion can cascade.
type FinancialTransaction struct {
	ID                string    `json:"id" gorm:"primaryKey;type:text"`
	Date              string    `json:"date" gorm:"column:date;type:text" validate:"required"`
	Description       string    `json:"description" gorm:"column:description" validate:"required"`
	Type              string    `json:"type" gorm:"column:type" validate:"required,oneof=receita despesa"`
	Amount            float64   `json:"amount" gorm:"column:amount" validate:"gte=0"`
	RelatedContractID string    `json:"relatedContractId,omitempty" gorm:"column:related_contract_id;index"`
	CompanyID         string    `json:"companyId,omitempty" gorm:"column:company_id"`
	CreatedAt         time.Time `json:"createdAt,omitempty" gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the base table name for GORM, respecting the Namer.
func (FinancialTransaction) TableName(namer schema.Namer) string {
	return namer.TableName("transactions")
}
