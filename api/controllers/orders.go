package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/danielcastano/mercato-backend/api/middleware"
	"github.com/danielcastano/mercato-backend/api/responses"
	"github.com/danielcastano/mercato-backend/api/validators"
	"github.com/danielcastano/mercato-backend/internal/orders"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// OrderController serves the buyer-facing order endpoints.
type OrderController struct {
	service orders.Service
	logg    *logger.Logger
}

func NewOrderController(service orders.Service, logg *logger.Logger) *OrderController {
	return &OrderController{service: service, logg: logg}
}

type placeOrderRequest struct {
	ShopID        uuid.UUID `json:"shop_id" validate:"required"`
	PaymentMethod string    `json:"payment_method,omitempty" validate:"omitempty,oneof=COD UPI CARD"`
}

func authenticatedUser(r *http.Request) (uuid.UUID, error) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok || !caller.Authenticated() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return caller.UserID, nil
}

func (c *OrderController) Place(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	var body placeOrderRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.PlaceOrder(r.Context(), userID, body.ShopID, enums.PaymentMethod(body.PaymentMethod))
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, "Order placed successfully", result)
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	params, err := validators.PaginationParams(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	page, err := c.service.ListByUser(r.Context(), userID, params)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Orders retrieved", page)
}

func (c *OrderController) Detail(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	orderID, err := validators.UUIDParam(r, "orderId")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	detail, err := c.service.GetOrderDetails(r.Context(), userID, orderID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Order retrieved", detail)
}
