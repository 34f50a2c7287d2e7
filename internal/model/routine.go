package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/schema"
)

// Routine task frequencies.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// RoutineTask is one checklist item. Repetitions only matters for daily
// tasks, DayOfWeek (0=Sunday..6) only for weekly ones.
type RoutineTask struct {
	ID          string `json:"id" validate:"required"`
	Text        string `json:"text" validate:"required"`
	Frequency   string `json:"frequency" validate:"required,oneof=daily weekly"`
	Repetitions int    `json:"repetitions" validate:"gte=1"`
	DayOfWeek   int    `json:"dayOfWeek,omitempty" validate:"gte=0,lte=6"`
	Time        string `json:"time,omitempty"`
}

// RoutineDoc is the persisted routine configuration: user-created tasks
// plus the ids of built-in tasks the user archived.
type RoutineDoc struct {
	CustomTasks            []RoutineTask `json:"customTasks"`
	ArchivedDefaultTaskIDs []string      `json:"archivedDefaultTaskIds"`
}

// TaskCompletions maps a task id to its completion timestamps (unix
// milliseconds) for the current day.
type TaskCompletions map[string][]int64

// RoutineConfig is the persisted form of RoutineDoc, one row per company.
type RoutineConfig struct {
	CompanyID string         `json:"-" gorm:"primaryKey;column:company_id;type:text"`
	Doc       datatypes.JSON `json:"doc" gorm:"type:jsonb;column:doc"`
	UpdatedAt time.Time      `json:"-" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the base table name for GORM, respecting the Namer.
func (RoutineConfig) TableName(namer schema.Namer) string {
	return namer.TableName("routine_configs")
}
