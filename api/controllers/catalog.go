package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielcastano/mercato-backend/api/responses"
	"github.com/danielcastano/mercato-backend/api/validators"
	"github.com/danielcastano/mercato-backend/internal/catalog"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// CatalogController serves public catalog reads and the shopkeeper CRUD
// surface.
type CatalogController struct {
	service catalog.Service
	logg    *logger.Logger
}

func NewCatalogController(service catalog.Service, logg *logger.Logger) *CatalogController {
	return &CatalogController{service: service, logg: logg}
}

type createShopRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type createCategoryRequest struct {
	Name     string  `json:"name" validate:"required"`
	ImageURL *string `json:"image_url,omitempty"`
}

type createProductRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	BasePrice   *string    `json:"base_price,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

type setInventoryRequest struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	StockQuantity int       `json:"stock_quantity" validate:"min=0"`
	SellingPrice  *string   `json:"selling_price,omitempty"`
}

func parseMoney(raw *string, field string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a decimal amount")
	}
	return &value, nil
}

func (c *CatalogController) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := c.service.ListShops(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Shops retrieved", shops)
}

func (c *CatalogController) CreateShop(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	var body createShopRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	shop, err := c.service.CreateShop(r.Context(), catalog.CreateShopInput{
		OwnerID:     userID,
		Name:        body.Name,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, "Shop created", shop)
}

func (c *CatalogController) ListShopProducts(w http.ResponseWriter, r *http.Request) {
	shopID, err := validators.UUIDParam(r, "shopId")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	products, err := c.service.ListShopProducts(r.Context(), shopID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Shop products retrieved", products)
}

func (c *CatalogController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.service.ListCategories(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Categories retrieved", categories)
}

func (c *CatalogController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body createCategoryRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	category, err := c.service.CreateCategory(r.Context(), catalog.CreateCategoryInput{
		Name:     body.Name,
		ImageURL: body.ImageURL,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, "Category created", category)
}

func (c *CatalogController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var body createProductRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	basePrice, err := parseMoney(body.BasePrice, "base_price")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	product, err := c.service.CreateProduct(r.Context(), catalog.CreateProductInput{
		Name:        body.Name,
		Description: body.Description,
		CategoryID:  body.CategoryID,
		BasePrice:   basePrice,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, "Product created", product)
}

func (c *CatalogController) SetInventory(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	shopID, err := validators.UUIDParam(r, "shopId")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	var body setInventoryRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	sellingPrice, err := parseMoney(body.SellingPrice, "selling_price")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	entry, err := c.service.SetInventory(r.Context(), catalog.SetInventoryInput{
		OwnerID:       userID,
		ShopID:        shopID,
		ProductID:     body.ProductID,
		StockQuantity: body.StockQuantity,
		SellingPrice:  sellingPrice,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Inventory updated", entry)
}
