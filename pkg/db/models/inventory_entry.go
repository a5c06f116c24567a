package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryEntry is the authoritative stock and price record for a product
// within one shop's channel. Unique on (shop_id, product_id). A nil
// SellingPrice falls back to the product's base price.
type InventoryEntry struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID        uuid.UUID        `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:idx_inventory_shop_product"`
	ProductID     uuid.UUID        `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_inventory_shop_product"`
	StockQuantity int              `gorm:"column:stock_quantity;not null;default:0"`
	SellingPrice  *decimal.Decimal `gorm:"column:selling_price;type:numeric(10,2)"`
	IsDeleted     bool             `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
