package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
	PaymentStatusFailed = "failed"
)

// Order is the commerce entity driven by webhook processing. GatewayOrderRef
// links it to the payment gateway's order identifier; once PaymentStatus is
// paid it never regresses (enforced by the guarded update in checkout).
type Order struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	OrderNumber      string         `gorm:"type:varchar(36);uniqueIndex" json:"order_number"`
	CustomerID       uint           `gorm:"index" json:"customer_id"`
	Customer         Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	GatewayOrderRef  string         `gorm:"type:varchar(191);default:null;uniqueIndex" json:"gateway_order_ref,omitempty"`
	GatewayPaymentID string         `gorm:"type:varchar(191);default:null" json:"gateway_payment_id,omitempty"`
	Status           string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" validate:"oneof=pending confirmed shipped delivered cancelled"`
	PaymentStatus    string         `gorm:"type:varchar(20);not null;default:'unpaid';index" json:"payment_status" validate:"oneof=unpaid paid failed"`
	TotalCents       int64          `gorm:"not null;default:0" json:"total_cents"`
	Currency         string         `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	Items            []OrderItem    `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	PaidAt           *time.Time     `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// OrderItem is one product line on an order with the unit price frozen at
// purchase time.
type OrderItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"index;not null" json:"order_id"`
	ProductID      uint      `gorm:"index;not null" json:"product_id"`
	Product        Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity       int       `gorm:"not null;default:1" json:"quantity" validate:"min=1"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPaid reports whether the order already reached the terminal paid state.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}
