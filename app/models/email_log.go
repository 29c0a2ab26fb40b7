package models

import "time"

const (
	EmailLogStatusSent   = "sent"
	EmailLogStatusFailed = "failed"
)

// EmailLog records every attempted order notification, write-once per
// attempt. Multiple rows per order are expected (resends, failures).
type EmailLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"index;not null" json:"order_id"`
	Kind      string    `gorm:"type:varchar(50);not null;default:'order_confirmation'" json:"kind"`
	Recipient string    `gorm:"type:varchar(200)" json:"recipient"`
	Status    string    `gorm:"type:varchar(20);not null;index" json:"status" validate:"oneof=sent failed"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
