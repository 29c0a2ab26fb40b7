package repository

import (
	"time"

	"github.com/FelixKnapp/ShopFox/app/models"
	"gorm.io/gorm"
)

// CustomerRepository defines the interface for customer-related database operations
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id uint) (*models.Customer, error)
	GetByEmail(email string) (*models.Customer, error)
	Update(customer *models.Customer) error
	Count() (int64, error)
}

// ProductRepository defines the interface for catalogue operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	GetActive(offset, limit int) ([]models.Product, error)
	Update(product *models.Product) error
	Count() (int64, error)
}

// OrderRepository defines the interface for order-related database operations
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNumber(number string) (*models.Order, error)
	GetByGatewayOrderRef(ref string) (*models.Order, error)
	GetByCustomerID(customerID uint, offset, limit int) ([]models.Order, error)
	Update(order *models.Order) error
	Count() (int64, error)
}

// WebhookEventRepository is the read side over the event store used by the
// operator reliability view. The write path lives in internal/pkg/payments.
type WebhookEventRepository interface {
	GetByUUID(uuid string) (*models.WebhookEvent, error)
	CountByStatus(status string) (int64, error)
	RetryDistribution() (map[int]int64, error)
	ListRecentFailed(limit int) ([]models.WebhookEvent, error)
}

// SettingRepository defines the interface for the key-value settings store
type SettingRepository interface {
	GetValue(key string) (string, error)
	SetValue(key, value string) error
	GetTime(key string) (*time.Time, error)
	SetTime(key string, t time.Time) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Customer     CustomerRepository
	Product      ProductRepository
	Order        OrderRepository
	WebhookEvent WebhookEventRepository
	Setting      SettingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Customer:     NewCustomerRepository(db),
		Product:      NewProductRepository(db),
		Order:        NewOrderRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
		Setting:      NewSettingRepository(db),
	}
}
