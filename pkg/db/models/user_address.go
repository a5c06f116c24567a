package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAddress is a user-owned shipping address. At most one address per user
// carries the is_default flag; the repo enforces this by clearing every default
// before setting a new one inside a single transaction.
type UserAddress struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	FullName  string    `gorm:"column:full_name;not null"`
	Phone     string    `gorm:"column:phone;not null"`
	House     string    `gorm:"column:house;not null"`
	Landmark  *string   `gorm:"column:landmark"`
	City      string    `gorm:"column:city;not null"`
	State     string    `gorm:"column:state;not null"`
	Pincode   string    `gorm:"column:pincode;not null"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
