package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderAddress is a field-for-field copy of the buyer's default address taken
// at placement time. It carries no foreign key to UserAddress so later edits
// or deletions cannot corrupt historical orders.
type OrderAddress struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	FullName  string    `gorm:"column:full_name;not null"`
	Phone     string    `gorm:"column:phone;not null"`
	House     string    `gorm:"column:house;not null"`
	Landmark  *string   `gorm:"column:landmark"`
	City      string    `gorm:"column:city;not null"`
	State     string    `gorm:"column:state;not null"`
	Pincode   string    `gorm:"column:pincode;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
