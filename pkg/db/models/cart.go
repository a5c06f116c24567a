package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielcastano/mercato-backend/pkg/enums"
)

// Cart holds the open basket for a user or guest identity. A partial unique
// index (owner_id WHERE is_active) guarantees at most one active cart per
// owner; deactivated carts are kept so order history never dangles.
type Cart struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index"`
	OwnerKind enums.CartOwnerKind `gorm:"column:owner_kind;type:text;not null;default:'user'"`
	IsActive  bool                `gorm:"column:is_active;not null;default:true"`
	Lines     []CartLine          `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
