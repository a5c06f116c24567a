package controllers

import (
	"net/http"

	"github.com/danielcastano/mercato-backend/api/middleware"
	"github.com/danielcastano/mercato-backend/api/responses"
	"github.com/danielcastano/mercato-backend/api/validators"
	"github.com/danielcastano/mercato-backend/internal/auth"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// AuthController serves registration, login and refresh.
type AuthController struct {
	service auth.Service
	logg    *logger.Logger
}

func NewAuthController(service auth.Service, logg *logger.Logger) *AuthController {
	return &AuthController{service: service, logg: logg}
}

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     string  `json:"name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role,omitempty" validate:"omitempty,oneof=customer shopkeeper"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.Register(r.Context(), auth.RegisterInput{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
		Phone:    body.Phone,
		Role:     enums.UserRole(body.Role),
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, "Account created successfully", result)
}

// Login authenticates credentials. A guest id resolved by the identity
// middleware rides along so the anonymous cart can be adopted.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	input := auth.LoginInput{Email: body.Email, Password: body.Password}
	if caller, ok := middleware.CallerFrom(r.Context()); ok {
		input.GuestID = caller.GuestID
	}

	result, err := c.service.Login(r.Context(), input)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Logged in successfully", result)
}

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, "Token refreshed", result)
}
