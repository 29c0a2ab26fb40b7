package models

import "time"

// Setting is a durable key-value record for small operational state,
// e.g. the sweeper's last-run timestamp.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key" validate:"required,min=1,max=255"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Keys used by the reconciliation subsystem.
const (
	SettingKeyLastSweepAt = "webhook_sweeper_last_run_at"
)
