package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/danielcastano/mercato-backend/api/responses"
	"github.com/danielcastano/mercato-backend/api/validators"
	"github.com/danielcastano/mercato-backend/internal/catalog"
	"github.com/danielcastano/mercato-backend/internal/orders"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// ShopOrderController serves the shopkeeper order management endpoints.
// Every handler resolves the shop and checks the caller owns it.
type ShopOrderController struct {
	service orders.Service
	catalog catalog.Service
	logg    *logger.Logger
}

func NewShopOrderController(service orders.Service, catalogSvc catalog.Service, logg *logger.Logger) *ShopOrderController {
	return &ShopOrderController{service: service, catalog: catalogSvc, logg: logg}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (c *ShopOrderController) ownedShop(r *http.Request) (uuid.UUID, error) {
	userID, err := authenticatedUser(r)
	if err != nil {
		return uuid.Nil, err
	}
	shopID, err := validators.UUIDParam(r, "shopId")
	if err != nil {
		return uuid.Nil, err
	}
	shop, err := c.catalog.GetShop(r.Context(), shopID)
	if err != nil {
		return uuid.Nil, err
	}
	if shop.OwnerID != userID {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop does not belong to caller")
	}
	return shopID, nil
}

func (c *ShopOrderController) List(w http.ResponseWriter, r *http.Request) {
	shopID, err := c.ownedShop(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	params, err := validators.PaginationParams(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	page, err := c.service.ListByShop(r.Context(), shopID, params)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Shop orders retrieved", page)
}

func (c *ShopOrderController) Detail(w http.ResponseWriter, r *http.Request) {
	shopID, err := c.ownedShop(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	orderID, err := validators.UUIDParam(r, "orderId")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	detail, err := c.service.GetShopOrderDetails(r.Context(), shopID, orderID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Order retrieved", detail)
}

func (c *ShopOrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	shopID, err := c.ownedShop(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	orderID, err := validators.UUIDParam(r, "orderId")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	var body updateStatusRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if err := c.service.UpdateStatus(r.Context(), shopID, orderID, enums.OrderStatus(body.Status)); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Order status updated", map[string]string{"status": body.Status})
}
