package models

import (
	"time"

	"gorm.io/gorm"
)

type Review struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CustomerID uint           `gorm:"index" json:"customer_id"`
	Customer   Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ProductID  uint           `gorm:"index" json:"product_id"`
	Product    Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Rating     int            `gorm:"not null" json:"rating" validate:"min=1,max=5"`
	Content    string         `gorm:"type:text" json:"content" validate:"max=4000"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
