package controllers

import (
	"net/http"

	"github.com/danielcastano/mercato-backend/api/responses"
	"github.com/danielcastano/mercato-backend/api/validators"
	"github.com/danielcastano/mercato-backend/internal/users"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// AddressController serves the shipping address book.
type AddressController struct {
	service users.Service
	logg    *logger.Logger
}

func NewAddressController(service users.Service, logg *logger.Logger) *AddressController {
	return &AddressController{service: service, logg: logg}
}

type createAddressRequest struct {
	FullName    string  `json:"full_name" validate:"required"`
	Phone       string  `json:"phone" validate:"required"`
	House       string  `json:"house" validate:"required"`
	Landmark    *string `json:"landmark,omitempty"`
	City        string  `json:"city" validate:"required"`
	State       string  `json:"state" validate:"required"`
	Pincode     string  `json:"pincode" validate:"required"`
	MakeDefault bool    `json:"make_default,omitempty"`
}

func (c *AddressController) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	var body createAddressRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	address, err := c.service.CreateAddress(r.Context(), users.CreateAddressInput{
		UserID:      userID,
		FullName:    body.FullName,
		Phone:       body.Phone,
		House:       body.House,
		Landmark:    body.Landmark,
		City:        body.City,
		State:       body.State,
		Pincode:     body.Pincode,
		MakeDefault: body.MakeDefault,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, "Address saved", address)
}

func (c *AddressController) List(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	addresses, err := c.service.ListAddresses(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Addresses retrieved", addresses)
}

func (c *AddressController) SetDefault(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	addressID, err := validators.UUIDParam(r, "addressId")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if err := c.service.SetDefaultAddress(r.Context(), userID, addressID); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Default address updated", nil)
}
