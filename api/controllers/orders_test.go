package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielcastano/mercato-backend/api/middleware"
	"github.com/danielcastano/mercato-backend/internal/orders"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/pagination"
	"github.com/danielcastano/mercato-backend/pkg/types"
)

type fakeOrdersService struct {
	place func(ctx context.Context, userID, shopID uuid.UUID, method enums.PaymentMethod) (*orders.PlacementResult, error)
	list  func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.UserOrderPage, error)
}

func (f *fakeOrdersService) PlaceOrder(ctx context.Context, userID, shopID uuid.UUID, method enums.PaymentMethod) (*orders.PlacementResult, error) {
	return f.place(ctx, userID, shopID, method)
}

func (f *fakeOrdersService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.UserOrderPage, error) {
	return f.list(ctx, userID, params)
}

func (f *fakeOrdersService) GetOrderDetails(ctx context.Context, userID, orderID uuid.UUID) (*orders.Detail, error) {
	panic("unimplemented")
}

func (f *fakeOrdersService) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*orders.ShopOrderPage, error) {
	panic("unimplemented")
}

func (f *fakeOrdersService) GetShopOrderDetails(ctx context.Context, shopID, orderID uuid.UUID) (*orders.Detail, error) {
	panic("unimplemented")
}

func (f *fakeOrdersService) UpdateStatus(ctx context.Context, shopID, orderID uuid.UUID, status enums.OrderStatus) error {
	panic("unimplemented")
}

func asUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithCaller(r.Context(), middleware.Caller{
		UserID: userID,
		Email:  "customer@example.com",
		Role:   enums.UserRoleCustomer,
	})
	return r.WithContext(ctx)
}

func TestPlaceOrderEndpoint(t *testing.T) {
	userID := uuid.New()
	shopID := uuid.New()
	orderID := uuid.New()
	svc := &fakeOrdersService{
		place: func(ctx context.Context, gotUser, gotShop uuid.UUID, method enums.PaymentMethod) (*orders.PlacementResult, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, shopID, gotShop)
			assert.Equal(t, enums.PaymentMethodUPI, method)
			return &orders.PlacementResult{OrderID: orderID, Total: 505.50, ItemCount: 2}, nil
		},
	}
	ctrl := NewOrderController(svc, controllerTestLogger())

	body := `{"shop_id":"` + shopID.String() + `","payment_method":"UPI"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)), userID)
	resp := httptest.NewRecorder()
	ctrl.Place(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Order placed successfully", envelope.Message)
}

func TestPlaceOrderEndpointRejections(t *testing.T) {
	svc := &fakeOrdersService{
		place: func(context.Context, uuid.UUID, uuid.UUID, enums.PaymentMethod) (*orders.PlacementResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for Turmeric 200g")
		},
	}
	ctrl := NewOrderController(svc, controllerTestLogger())

	body := `{"shop_id":"` + uuid.NewString() + `"}`
	resp := httptest.NewRecorder()
	ctrl.Place(resp, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"payment_method":"WIRE"}`)), uuid.New())
	resp = httptest.NewRecorder()
	ctrl.Place(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	req = asUser(httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body)), uuid.New())
	resp = httptest.NewRecorder()
	ctrl.Place(resp, req)
	require.Equal(t, http.StatusConflict, resp.Code)
	envelope := decodeErrorEnvelope(t, resp)
	assert.Equal(t, string(pkgerrors.CodeConflict), envelope.Error.Code)
	assert.Equal(t, "insufficient stock for Turmeric 200g", envelope.Message)
}

func TestListOrdersEndpointForwardsPagination(t *testing.T) {
	userID := uuid.New()
	svc := &fakeOrdersService{
		list: func(ctx context.Context, gotUser uuid.UUID, params pagination.Params) (*orders.UserOrderPage, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, 5, params.Limit)
			return &orders.UserOrderPage{Orders: []orders.UserOrderSummary{}}, nil
		},
	}
	ctrl := NewOrderController(svc, controllerTestLogger())

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=5", nil), userID)
	resp := httptest.NewRecorder()
	ctrl.List(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}
