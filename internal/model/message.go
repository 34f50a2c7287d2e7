package model

import (
	"time"

	"gorm.io/gorm/schema"
)

// Attendance modes for a conversation.
const (
	AttendanceBot   = "BOT"
	AttendanceHuman = "HUMANO"
)

// RawChatMessage is a flat inbound/outbound chat message as delivered
// by the messaging webhook. ChatID is stored as received; normalization
// happens at aggregation time.
type RawChatMessage struct {
	ID             int64     `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	MessageID      string    `json:"messageid" gorm:"column:message_id;index" validate:"required"`
	ChatID         string    `json:"chatid" gorm:"column:chat_id;index" validate:"required"`
	Text           string    `json:"text" gorm:"column:text"`
	IsFromMe       bool      `json:"isfromme" gorm:"column:is_from_me"`
	Timestamp      time.Time `json:"timestamp" gorm:"column:timestamp;index"`
	SenderName     string    `json:"sendername,omitempty" gorm:"column:sender_name"`
	AttendanceMode string    `json:"attendanceMode,omitempty" gorm:"column:attendance_mode"`
	CompanyID      string    `json:"companyId,omitempty" gorm:"column:company_id"`
	CreatedAt      time.Time `json:"createdAt,omitempty" gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the base table name for GORM, respecting the Namer.
func (RawChatMessage) TableName(namer schema.Namer) string {
	return namer.TableName("chat_messages")
}

// GetUpdatableFields returns column names that can change when the same
// message id is delivered again (edits, mode flips).
func (m *RawChatMessage) GetUpdatableFields() []string {
	return []string{"text", "sender_name", "attendance_mode"}
}
