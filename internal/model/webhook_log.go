package model

import (
	"time"

	"gorm.io/gorm/schema"
)

// WebhookLog is one raw ingestion log line, kept for diagnostics.
type WebhookLog struct {
	ID        int64     `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp;index"`
	Content   string    `json:"content" gorm:"column:content"`
	CompanyID string    `json:"-" gorm:"column:company_id"`
}

// TableName specifies the base table name for GORM, respecting the Namer.
func (WebhookLog) TableName(namer schema.Namer) string {
	return namer.TableName("webhook_logs")
}
