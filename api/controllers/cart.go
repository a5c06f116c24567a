package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/danielcastano/mercato-backend/api/middleware"
	"github.com/danielcastano/mercato-backend/api/responses"
	"github.com/danielcastano/mercato-backend/api/validators"
	"github.com/danielcastano/mercato-backend/internal/cart"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// CartController serves the basket endpoints for users and guests alike.
type CartController struct {
	service cart.Service
	logg    *logger.Logger
}

func NewCartController(service cart.Service, logg *logger.Logger) *CartController {
	return &CartController{service: service, logg: logg}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func cartIdentity(r *http.Request) (cart.Identity, error) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		return cart.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "cart identity missing")
	}
	ownerID, kind, ok := caller.CartOwner()
	if !ok {
		return cart.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "cart identity missing")
	}
	return cart.Identity{OwnerID: ownerID, Kind: kind}, nil
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := cartIdentity(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	view, err := c.service.GetCart(r.Context(), identity)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Cart retrieved", view)
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	identity, err := cartIdentity(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	var body addItemRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	line, err := c.service.AddLine(r.Context(), identity, body.ProductID, body.Quantity)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Item added to cart", line)
}

func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, err := cartIdentity(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	itemID, err := validators.UUIDParam(r, "itemId")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	var body updateItemRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	line, err := c.service.UpdateLine(r.Context(), identity, itemID, body.Quantity)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Cart item updated", line)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity, err := cartIdentity(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	itemID, err := validators.UUIDParam(r, "itemId")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if err := c.service.RemoveLine(r.Context(), identity, itemID); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Cart item removed", nil)
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	identity, err := cartIdentity(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	if err := c.service.Clear(r.Context(), identity); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Cart cleared", nil)
}
