package catalog

import (
	"context"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for shops, products, categories
// and inventory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateShop(ctx context.Context, shop *models.Shop) (*models.Shop, error)
	FindShop(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindShopByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
	ListShops(ctx context.Context) ([]models.Shop, error)

	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProductsByShop(ctx context.Context, shopID uuid.UUID) ([]ShopProduct, error)

	UpsertInventory(ctx context.Context, entry *models.InventoryEntry) (*models.InventoryEntry, error)
	FindInventory(ctx context.Context, shopID, productID uuid.UUID) (*models.InventoryEntry, error)
	FindInventoryByProduct(ctx context.Context, productID uuid.UUID) (*models.InventoryEntry, error)
	DecrementStock(ctx context.Context, shopID, productID uuid.UUID, quantity int) (int64, error)
}
