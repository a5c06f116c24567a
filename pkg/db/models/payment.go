package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielcastano/mercato-backend/pkg/enums"
)

// Payment is the append-only settlement record for an order. TransactionID
// stays empty until a gateway integration populates it.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Method        enums.PaymentMethod `gorm:"column:method;type:text;not null;default:'COD'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'PENDING'"`
	TransactionID *string             `gorm:"column:transaction_id"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
