package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/schema"
)

// Client type labels used by the dashboard.
const (
	ClientTypeCliente  = "Cliente"
	ClientTypeLead     = "Lead"
	ClientTypeContato  = "Contato"
	ClientTypeParceiro = "Parceiro"
)

// WorkMaterial is one entry of a contract's ordered work-material list.
type WorkMaterial struct {
	URL  string `json:"url" validate:"required"`
	Type string `json:"type" validate:"required,oneof=instagram drive other"`
}

// Contract represents a tracked link / service contract. Contact fields
// are duplicated per contract; the client-level view always takes them
// from the chronologically latest contract.
type Contract struct {
	ID            string         `json:"id" gorm:"primaryKey;type:text"`
	Name          string         `json:"name" gorm:"column:name;index" validate:"required"`
	CompanyName   string         `json:"companyName,omitempty" gorm:"column:company_name"`
	OriginalURL   string         `json:"originalUrl,omitempty" gorm:"column:original_url"`
	ShortURL      string         `json:"shortUrl,omitempty" gorm:"column:short_url"`
	Clicks        int64          `json:"clicks" gorm:"column:clicks;default:0"`
	WorkMaterials datatypes.JSON `json:"workMaterialUrls,omitempty" gorm:"type:jsonb;column:work_materials"`
	StartDate     string         `json:"startDate,omitempty" gorm:"column:start_date;type:text"`
	EndDate       string         `json:"endDate,omitempty" gorm:"column:end_date;type:text"`
	Phone         string         `json:"phone,omitempty" gorm:"column:phone;index"`
	Instagram     string         `json:"instagram,omitempty" gorm:"column:instagram"`
	Email         string         `json:"email,omitempty" gorm:"column:email"`
	CPF           string         `json:"cpf,omitempty" gorm:"column:cpf"`
	CNPJ          string         `json:"cnpj,omitempty" gorm:"column:cnpj"`
	PackageInfo   string         `json:"packageInfo,omitempty" gorm:"column:package_info"`
	ClientType    string         `json:"clientType,omitempty" gorm:"column:client_type"`
	IsArchived    bool           `json:"isArchived" gorm:"column:is_archived;default:false"`
	CompanyID     string         `json:"companyId,omitempty" gorm:"column:company_id"`
	CreatedAt     time.Time      `json:"createdAt,omitempty" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `json:"updatedAt,omitempty" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the base table name for GORM, respecting the Namer.
func (Contract) TableName(namer schema.Namer) string {
	return namer.TableName("contracts")
}

// GetUpdatableFields returns column names that may change during an
// ON CONFLICT upsert. Clicks is deliberately absent: that counter is
// authoritative on the click-tracking path only.
func (c *Contract) GetUpdatableFields() []string {
	return []string{
		"name", "company_name", "original_url", "short_url", "work_materials",
		"start_date", "end_date", "phone", "instagram", "email", "cpf", "cnpj",
		"package_info", "client_type", "is_archived", "updated_at",
	}
}

// ClickEvent is one recorded click on a tracked link. The per-contract
// counter stays on Contract; these rows exist for date-range reports.
type ClickEvent struct {
	ID         int64     `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	ContractID string    `json:"id" gorm:"column:contract_id;index" validate:"required"`
	At         time.Time `json:"at" gorm:"column:at;index"`
	CompanyID  string    `json:"-" gorm:"column:company_id"`
}

// TableName specifies the base table name for GORM, respecting the Namer.
func (ClickEvent) TableName(namer schema.Namer) string {
	return namer.TableName("click_events")
}
