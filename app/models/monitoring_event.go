package models

import "time"

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// MonitoringEvent is an append-only operational signal written by the
// sweeper and dispatcher when retry thresholds are crossed. Never mutated.
type MonitoringEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Type         string    `gorm:"type:varchar(100);not null;index" json:"type"`
	Severity     string    `gorm:"type:varchar(20);not null;index" json:"severity" validate:"oneof=info warning critical"`
	Message      string    `gorm:"type:text" json:"message"`
	MetadataJSON string    `gorm:"type:text" json:"metadata_json,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
