package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskType identifies one of the fixed daily micro-tasks.
type TaskType string

const (
	TaskTypeWatchAd   TaskType = "watch_ad"
	TaskTypeSpinWheel TaskType = "spin_wheel"
	TaskTypeQuiz      TaskType = "quiz"
)

// DailyTask is one micro-task issued to a user for a single calendar day.
// TaskDate is truncated to UTC midnight; the unique index makes duplicate
// issuance for the same (user, type, day) impossible.
type DailyTask struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string          `gorm:"not null;uniqueIndex:idx_task_per_day" json:"user_id"`
	TaskType    TaskType        `gorm:"not null;uniqueIndex:idx_task_per_day" json:"task_type"`
	Reward      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"reward"`
	Completed   bool            `gorm:"not null" json:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	TaskDate    time.Time       `gorm:"not null;uniqueIndex:idx_task_per_day" json:"task_date"`
	CreatedAt   time.Time       `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
