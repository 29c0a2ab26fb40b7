package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FelixKnapp/ShopFox/app/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyOrder        = errors.New("order has no items")
	ErrProductInactive   = errors.New("product is not available")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// OrderLine is one requested product line at checkout.
type OrderLine struct {
	ProductID uint
	Quantity  int
}

// Service owns the transactional order operations. ConfirmPayment is the
// atomicity boundary the webhook pipeline relies on.
type Service struct {
	db *gorm.DB
}

// NewService creates a checkout service on an injected DB handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateOrder creates a pending, unpaid order with its items in one
// transaction. The gateway order reference is generated here and handed
// to the payment gateway by the storefront checkout flow.
func (s *Service) CreateOrder(ctx context.Context, customerID uint, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	order := &models.Order{
		OrderNumber:     uuid.NewString(),
		CustomerID:      customerID,
		GatewayOrderRef: "order_" + uuid.NewString(),
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			if line.Quantity < 1 {
				return fmt.Errorf("product %d: quantity must be at least 1", line.ProductID)
			}
			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				return err
			}
			if !product.IsActive {
				return fmt.Errorf("product %d: %w", product.ID, ErrProductInactive)
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("product %d: %w", product.ID, ErrInsufficientStock)
			}
			items = append(items, models.OrderItem{
				ProductID:      product.ID,
				Quantity:       line.Quantity,
				UnitPriceCents: product.PriceCents,
			})
			total += product.PriceCents * int64(line.Quantity)
			order.Currency = product.Currency
		}

		order.TotalCents = total
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmPayment atomically transitions an order to paid/confirmed,
// records the gateway payment id and decrements product stock. The
// guarded UPDATE makes it idempotent: calling it again for an already
// paid order is a no-op success, which is what allows webhook
// redeliveries and sweeper redrives to overlap safely.
func (s *Service) ConfirmPayment(ctx context.Context, orderID uint, gatewayPaymentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status <> ?", orderID, models.PaymentStatusPaid).
			Updates(map[string]interface{}{
				"payment_status":     models.PaymentStatusPaid,
				"status":             models.OrderStatusConfirmed,
				"gateway_payment_id": gatewayPaymentID,
				"paid_at":            &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already paid; nothing to do and nothing to decrement.
			return nil
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			r := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if r.Error != nil {
				return r.Error
			}
			if r.RowsAffected == 0 {
				return fmt.Errorf("product %d: %w", item.ProductID, ErrInsufficientStock)
			}
		}
		return nil
	})
}
