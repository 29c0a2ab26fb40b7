package repository

import (
	"github.com/FelixKnapp/ShopFox/app/models"
	"gorm.io/gorm"
)

// webhookEventRepository implements the read-only WebhookEventRepository
// used by the operator reliability view.
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) GetByUUID(uuid string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.Where("uuid = ?", uuid).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *webhookEventRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.WebhookEvent{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// RetryDistribution returns how many events sit at each retry count.
func (r *webhookEventRepository) RetryDistribution() (map[int]int64, error) {
	type row struct {
		RetryCount int
		Total      int64
	}
	var rows []row
	err := r.db.Model(&models.WebhookEvent{}).
		Select("retry_count, COUNT(*) AS total").
		Group("retry_count").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dist := make(map[int]int64, len(rows))
	for _, rw := range rows {
		dist[rw.RetryCount] = rw.Total
	}
	return dist, nil
}

func (r *webhookEventRepository) ListRecentFailed(limit int) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.Where("status = ?", models.WebhookStatusFailed).
		Order("updated_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
