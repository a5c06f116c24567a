package catalog

import (
	"context"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateShop(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	if err := r.db.WithContext(ctx).Create(shop).Error; err != nil {
		return nil, err
	}
	return shop, nil
}

func (r *repository) FindShop(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repository) FindShopByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_deleted = ?", ownerID, false).
		First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repository) ListShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&shops).Error
	if err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ShopProduct is a product row joined with the shop's inventory entry.
type ShopProduct struct {
	Product      models.Product
	StockQty     int
	SellingPrice *decimal.Decimal
}

func (r *repository) ListProductsByShop(ctx context.Context, shopID uuid.UUID) ([]ShopProduct, error) {
	var entries []models.InventoryEntry
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND is_deleted = ?", shopID, false).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ProductID)
	}
	var products []models.Product
	err = r.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	result := make([]ShopProduct, 0, len(entries))
	for _, entry := range entries {
		product, ok := byID[entry.ProductID]
		if !ok {
			continue
		}
		result = append(result, ShopProduct{
			Product:      product,
			StockQty:     entry.StockQuantity,
			SellingPrice: entry.SellingPrice,
		})
	}
	return result, nil
}

func (r *repository) UpsertInventory(ctx context.Context, entry *models.InventoryEntry) (*models.InventoryEntry, error) {
	var existing models.InventoryEntry
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND product_id = ?", entry.ShopID, entry.ProductID).
		First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
			return nil, err
		}
		return entry, nil
	case err != nil:
		return nil, err
	}

	updates := map[string]any{
		"stock_quantity": entry.StockQuantity,
		"selling_price":  entry.SellingPrice,
		"is_deleted":     entry.IsDeleted,
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryEntry{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	existing.StockQuantity = entry.StockQuantity
	existing.SellingPrice = entry.SellingPrice
	existing.IsDeleted = entry.IsDeleted
	return &existing, nil
}

func (r *repository) FindInventory(ctx context.Context, shopID, productID uuid.UUID) (*models.InventoryEntry, error) {
	var entry models.InventoryEntry
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND product_id = ? AND is_deleted = ?", shopID, productID, false).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindInventoryByProduct returns the product's inventory row without a shop
// scope. Products live in one shop's channel at a time in practice; when
// several match, the newest wins.
func (r *repository) FindInventoryByProduct(ctx context.Context, productID uuid.UUID) (*models.InventoryEntry, error) {
	var entry models.InventoryEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_deleted = ?", productID, false).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DecrementStock conditionally subtracts quantity and reports affected rows.
// Zero rows means the stock guard rejected the decrement.
func (r *repository) DecrementStock(ctx context.Context, shopID, productID uuid.UUID, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryEntry{}).
		Where("shop_id = ? AND product_id = ? AND is_deleted = ? AND stock_quantity >= ?",
			shopID, productID, false, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
