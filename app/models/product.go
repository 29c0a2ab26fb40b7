package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Product is a catalogue entry. Stock is decremented inside the
// confirm-payment transaction, never from request handlers.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Slug        string         `gorm:"type:varchar(220);uniqueIndex" json:"slug" validate:"required,max=220"`
	Description string         `gorm:"type:text" json:"description"`
	PriceCents  int64          `gorm:"not null" json:"price_cents" validate:"min=0"`
	Currency    string         `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	Stock       int            `gorm:"not null;default:0" json:"stock" validate:"min=0"`
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
