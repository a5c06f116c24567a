package catalog

import (
	"context"
	"fmt"

	"github.com/danielcastano/mercato-backend/pkg/db/models"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Availability is the stock gate consulted by cart mutation and order
// placement. Available requires a live product, a live inventory row and
// stock above zero.
type Availability struct {
	Exists        bool
	Available     bool
	StockQuantity int
}

// Quote resolves the charge price for a product: selling price when a live
// inventory row matches, base price otherwise, zero as the last resort.
type Quote struct {
	ProductID     uuid.UUID
	ShopID        *uuid.UUID
	Price         decimal.Decimal
	StockQuantity int
}

// Service exposes catalog reads plus the shopkeeper CRUD surface.
type Service interface {
	CheckAvailability(ctx context.Context, productID uuid.UUID, shopID *uuid.UUID) (Availability, error)
	QuoteProduct(ctx context.Context, productID uuid.UUID, shopID *uuid.UUID) (*Quote, error)

	CreateShop(ctx context.Context, input CreateShopInput) (*models.Shop, error)
	GetShop(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
	ListShops(ctx context.Context) ([]models.Shop, error)
	ListShopProducts(ctx context.Context, shopID uuid.UUID) ([]ShopProduct, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	SetInventory(ctx context.Context, input SetInventoryInput) (*models.InventoryEntry, error)
}

// CreateShopInput captures the fields a shopkeeper supplies for a new shop.
type CreateShopInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description *string
	ImageURL    *string
}

type CreateCategoryInput struct {
	Name     string
	ImageURL *string
}

type CreateProductInput struct {
	Name        string
	Description *string
	CategoryID  *uuid.UUID
	BasePrice   *decimal.Decimal
	ImageURL    *string
}

// SetInventoryInput upserts the (shop, product) inventory row. OwnerID scopes
// the write to shops the caller owns.
type SetInventoryInput struct {
	OwnerID       uuid.UUID
	ShopID        uuid.UUID
	ProductID     uuid.UUID
	StockQuantity int
	SellingPrice  *decimal.Decimal
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CheckAvailability(ctx context.Context, productID uuid.UUID, shopID *uuid.UUID) (Availability, error) {
	if productID == uuid.Nil {
		return Availability{}, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	_, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return Availability{}, nil
		}
		return Availability{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	entry, err := s.findEntry(ctx, productID, shopID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return Availability{Exists: true}, nil
		}
		return Availability{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}

	return Availability{
		Exists:        true,
		Available:     entry.StockQuantity > 0,
		StockQuantity: entry.StockQuantity,
	}, nil
}

func (s *service) QuoteProduct(ctx context.Context, productID uuid.UUID, shopID *uuid.UUID) (*Quote, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	quote := &Quote{ProductID: productID}
	if product.BasePrice != nil {
		quote.Price = *product.BasePrice
	}

	entry, err := s.findEntry(ctx, productID, shopID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return quote, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}

	entryShopID := entry.ShopID
	quote.ShopID = &entryShopID
	quote.StockQuantity = entry.StockQuantity
	if entry.SellingPrice != nil {
		quote.Price = *entry.SellingPrice
	}
	return quote, nil
}

func (s *service) findEntry(ctx context.Context, productID uuid.UUID, shopID *uuid.UUID) (*models.InventoryEntry, error) {
	if shopID != nil {
		return s.repo.FindInventory(ctx, *shopID, productID)
	}
	return s.repo.FindInventoryByProduct(ctx, productID)
}

func (s *service) CreateShop(ctx context.Context, input CreateShopInput) (*models.Shop, error) {
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name required")
	}

	shop := &models.Shop{
		ID:          uuid.New(),
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	created, err := s.repo.CreateShop(ctx, shop)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	return created, nil
}

func (s *service) GetShop(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	shop, err := s.repo.FindShop(ctx, shopID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop, nil
}

func (s *service) ListShops(ctx context.Context) ([]models.Shop, error) {
	shops, err := s.repo.ListShops(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	return shops, nil
}

func (s *service) ListShopProducts(ctx context.Context, shopID uuid.UUID) ([]ShopProduct, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if _, err := s.repo.FindShop(ctx, shopID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	rows, err := s.repo.ListProductsByShop(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop products")
	}
	return rows, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}
	category := &models.Category{
		ID:       uuid.New(),
		Name:     input.Name,
		ImageURL: input.ImageURL,
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.BasePrice != nil && input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	product := &models.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		BasePrice:   input.BasePrice,
		ImageURL:    input.ImageURL,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) SetInventory(ctx context.Context, input SetInventoryInput) (*models.InventoryEntry, error) {
	if input.ShopID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id and product id required")
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	if input.SellingPrice != nil && input.SellingPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selling price cannot be negative")
	}

	shop, err := s.repo.FindShop(ctx, input.ShopID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if shop.OwnerID != input.OwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop does not belong to caller")
	}
	if _, err := s.repo.FindProduct(ctx, input.ProductID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	entry := &models.InventoryEntry{
		ID:            uuid.New(),
		ShopID:        input.ShopID,
		ProductID:     input.ProductID,
		StockQuantity: input.StockQuantity,
		SellingPrice:  input.SellingPrice,
	}
	saved, err := s.repo.UpsertInventory(ctx, entry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert inventory")
	}
	return saved, nil
}
