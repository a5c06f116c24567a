package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielcastano/mercato-backend/pkg/enums"
)

// Order is the immutable header written once by the placement transaction.
// ItemCount counts distinct lines, not summed quantities.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ShopID        uuid.UUID           `gorm:"column:shop_id;type:uuid;not null;index"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null"`
	ItemCount     int                 `gorm:"column:item_count;not null"`
	OrderStatus   enums.OrderStatus   `gorm:"column:order_status;type:text;not null;default:'PENDING'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'PENDING'"`
	Lines         []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Address       *OrderAddress       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment       *Payment            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
