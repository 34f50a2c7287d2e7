package model

import (
	"time"

	"gorm.io/gorm/schema"
)

// Settings holds the per-company integration configuration: the
// external calendar id and the messaging-provider credentials.
type Settings struct {
	CompanyID        string    `json:"-" gorm:"primaryKey;column:company_id;type:text"`
	GoogleCalendarID string    `json:"googleCalendarId,omitempty" gorm:"column:google_calendar_id"`
	ZapiInstanceID   string    `json:"zapiInstanceId,omitempty" gorm:"column:zapi_instance_id"`
	ZapiToken        string    `json:"zapiToken,omitempty" gorm:"column:zapi_token"`
	ZapiClientToken  string    `json:"zapiClientToken,omitempty" gorm:"column:zapi_client_token"`
	UpdatedAt        time.Time `json:"-" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the base table name for GORM, respecting the Namer.
func (Settings) TableName(namer schema.Namer) string {
	return namer.TableName("settings")
}

// HasMessagingCredentials reports whether the messaging provider is
// configured well enough to send.
func (s Settings) HasMessagingCredentials() bool {
	return s.ZapiInstanceID != "" && s.ZapiToken != ""
}
