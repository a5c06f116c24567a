package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop is a shopkeeper-owned storefront. Products live independently of shops;
// a shop sells a product by holding an InventoryEntry for it.
type Shop struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	ImageURL    *string   `gorm:"column:image_url"`
	IsDeleted   bool      `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
