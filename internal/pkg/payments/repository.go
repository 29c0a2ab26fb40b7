package payments

import (
	"time"

	"github.com/FelixKnapp/ShopFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the reconciliation
// pipeline. The event store is append-and-update only; rows are never
// deleted (audit log).
type Repository interface {
	CreateEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	GetEventByID(id uint) (*models.WebhookEvent, error)
	SetEventOrderRef(id uint, orderRef string) error
	MarkEventProcessed(id uint, latencyMs int64) error
	MarkEventRetry(id uint, retryCount int, lastError string, final bool) error
	ListPendingEvents(limit int) ([]models.WebhookEvent, error)

	GetOrderByGatewayRef(ref string) (*models.Order, error)
	GetOrderForNotification(id uint) (*models.Order, error)
	MarkOrderPaymentFailed(orderID uint) error

	CreateMonitoringEvent(event *models.MonitoringEvent) error
	CreateEmailLog(entry *models.EmailLog) error

	GetLastSweepAt() (*time.Time, error)
	SetLastSweepAt(t time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateEventIfNotExists inserts the event unless a row with the same
// gateway event id already exists. The unique constraint, not this code,
// is what makes concurrent redeliveries safe: DoNothing + RowsAffected
// detects the losing insert without an error round-trip.
func (r *gormRepository) CreateEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gateway_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("gateway_event_id = ?", event.GatewayEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) GetEventByID(id uint) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) SetEventOrderRef(id uint, orderRef string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Update("gateway_order_ref", orderRef).Error
}

func (r *gormRepository) MarkEventProcessed(id uint, latencyMs int64) error {
	now := time.Now()
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       models.WebhookStatusProcessed,
		"processed_at": &now,
		"latency_ms":   latencyMs,
		"last_error":   "",
	}).Error
}

func (r *gormRepository) MarkEventRetry(id uint, retryCount int, lastError string, final bool) error {
	status := models.WebhookStatusPending
	if final {
		status = models.WebhookStatusFailed
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"retry_count": retryCount,
		"last_error":  lastError,
	}).Error
}

func (r *gormRepository) ListPendingEvents(limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.Where("status = ?", models.WebhookStatusPending).
		Order("created_at ASC").Limit(limit).Find(&events).Error
	return events, err
}

func (r *gormRepository) GetOrderByGatewayRef(ref string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Where("gateway_order_ref = ?", ref).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) GetOrderForNotification(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Customer").Preload("Items").Preload("Items.Product").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkOrderPaymentFailed records a gateway-reported payment failure. The
// guard keeps a paid order paid: payment confirmation is monotonic.
func (r *gormRepository) MarkOrderPaymentFailed(orderID uint) error {
	return r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, models.PaymentStatusPaid).
		Update("payment_status", models.PaymentStatusFailed).Error
}

func (r *gormRepository) CreateMonitoringEvent(event *models.MonitoringEvent) error {
	return r.db.Create(event).Error
}

func (r *gormRepository) CreateEmailLog(entry *models.EmailLog) error {
	return r.db.Create(entry).Error
}

func (r *gormRepository) GetLastSweepAt() (*time.Time, error) {
	var setting models.Setting
	err := r.db.Where("setting_key = ?", models.SettingKeyLastSweepAt).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, setting.Value)
	if err != nil {
		return nil, nil
	}
	return &t, nil
}

func (r *gormRepository) SetLastSweepAt(t time.Time) error {
	value := t.UTC().Format(time.RFC3339)
	var setting models.Setting
	err := r.db.Where("setting_key = ?", models.SettingKeyLastSweepAt).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(&models.Setting{Key: models.SettingKeyLastSweepAt, Value: value}).Error
	} else if err != nil {
		return err
	}
	setting.Value = value
	return r.db.Save(&setting).Error
}
