package models

import "time"

// Webhook event processing states. An event is created as pending, moves to
// processed exactly once, and becomes failed only after the retry ceiling.
const (
	WebhookStatusPending   = "pending"
	WebhookStatusProcessed = "processed"
	WebhookStatusFailed    = "failed"
)

// Retry policy for the reconciliation sweeper.
const (
	WebhookRetryWarnThreshold = 3
	WebhookRetryMaxAttempts   = 5
)

// WebhookEvent stores every inbound payment gateway notification verbatim.
// The unique index on gateway_event_id is the deduplication guarantee for
// concurrent redeliveries; rows are never deleted (audit log).
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UUID            string     `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	GatewayEventID  string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_gateway_event_id" json:"gateway_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	GatewayOrderRef string     `gorm:"type:varchar(191);default:null;index" json:"gateway_order_ref,omitempty"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RetryCount      int        `gorm:"not null;default:0" json:"retry_count"`
	LastError       string     `gorm:"type:text" json:"last_error,omitempty"`
	LatencyMs       *int64     `gorm:"default:null" json:"latency_ms,omitempty"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
