package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entity. BasePrice is the fallback price used when no
// shop-scoped inventory row carries a selling price.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	Description *string          `gorm:"column:description"`
	CategoryID  *uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	BasePrice   *decimal.Decimal `gorm:"column:base_price;type:numeric(10,2)"`
	ImageURL    *string          `gorm:"column:image_url"`
	IsDeleted   bool             `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
