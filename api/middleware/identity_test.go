package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgauth "github.com/danielcastano/mercato-backend/pkg/auth"
	"github.com/danielcastano/mercato-backend/pkg/config"
	"github.com/danielcastano/mercato-backend/pkg/db/models"
	"github.com/danielcastano/mercato-backend/pkg/enums"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

func middlewareTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "middleware-test", Output: io.Discard})
}

func middlewareJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-test-secret",
		Issuer:            "mercato-test",
		ExpirationMinutes: 10,
	}
}

type stubAccountChecker struct {
	missing map[uuid.UUID]bool
}

func (s *stubAccountChecker) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.missing[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.User{ID: id}, nil
}

func liveAccounts() *stubAccountChecker {
	return &stubAccountChecker{}
}

func mintTestToken(t *testing.T, userID uuid.UUID, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(middlewareJWTConfig(), time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Email:  "caller@example.com",
		Role:   role,
		JTI:    uuid.NewString(),
	})
	require.NoError(t, err)
	return token
}

func callerCapturingHandler(captured *Caller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if caller, ok := CallerFrom(r.Context()); ok {
			*captured = caller
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthOrGuestMintsGuestID(t *testing.T) {
	var captured Caller
	handler := AuthOrGuest(middlewareJWTConfig(), liveAccounts(), middlewareTestLogger())(callerCapturingHandler(&captured))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured.GuestID)
	echoed := rec.Header().Get(GuestIDHeader)
	assert.Equal(t, captured.GuestID.String(), echoed)
}

func TestAuthOrGuestEchoesExistingGuestID(t *testing.T) {
	var captured Caller
	handler := AuthOrGuest(middlewareJWTConfig(), liveAccounts(), middlewareTestLogger())(callerCapturingHandler(&captured))

	guestID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(GuestIDHeader, guestID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotNil(t, captured.GuestID)
	assert.Equal(t, guestID, *captured.GuestID)
	assert.Equal(t, guestID.String(), rec.Header().Get(GuestIDHeader))
}

func TestAuthOrGuestRejectsMalformedGuestID(t *testing.T) {
	handler := AuthOrGuest(middlewareJWTConfig(), liveAccounts(), middlewareTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(GuestIDHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthOrGuestPrefersBearerToken(t *testing.T) {
	var captured Caller
	handler := AuthOrGuest(middlewareJWTConfig(), liveAccounts(), middlewareTestLogger())(callerCapturingHandler(&captured))

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, userID, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, captured.UserID)
	assert.Nil(t, captured.GuestID)

	ownerID, kind, ok := captured.CartOwner()
	require.True(t, ok)
	assert.Equal(t, userID, ownerID)
	assert.Equal(t, enums.CartOwnerUser, kind)
}

func TestAuthOrGuestFallsBackToGuestOnInvalidToken(t *testing.T) {
	var captured Caller
	handler := AuthOrGuest(middlewareJWTConfig(), liveAccounts(), middlewareTestLogger())(callerCapturingHandler(&captured))

	guestID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	req.Header.Set(GuestIDHeader, guestID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uuid.Nil, captured.UserID)
	require.NotNil(t, captured.GuestID)
	assert.Equal(t, guestID, *captured.GuestID)
	assert.Equal(t, guestID.String(), rec.Header().Get(GuestIDHeader))

	ownerID, kind, ok := captured.CartOwner()
	require.True(t, ok)
	assert.Equal(t, guestID, ownerID)
	assert.Equal(t, enums.CartOwnerGuest, kind)
}

func TestAuthOrGuestFallsBackToGuestForDeletedAccount(t *testing.T) {
	userID := uuid.New()
	accounts := &stubAccountChecker{missing: map[uuid.UUID]bool{userID: true}}
	var captured Caller
	handler := AuthOrGuest(middlewareJWTConfig(), accounts, middlewareTestLogger())(callerCapturingHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, userID, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uuid.Nil, captured.UserID)
	require.NotNil(t, captured.GuestID)
	assert.Equal(t, captured.GuestID.String(), rec.Header().Get(GuestIDHeader))
}

func TestRequireAuth(t *testing.T) {
	var captured Caller
	handler := RequireAuth(middlewareJWTConfig(), liveAccounts(), middlewareTestLogger())(callerCapturingHandler(&captured))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userID := uuid.New()
	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, userID, enums.UserRoleShopkeeper))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, captured.UserID)
	assert.Equal(t, enums.UserRoleShopkeeper, captured.Role)
}

func TestRequireAuthRejectsDeletedAccount(t *testing.T) {
	userID := uuid.New()
	accounts := &stubAccountChecker{missing: map[uuid.UUID]bool{userID: true}}
	handler := RequireAuth(middlewareJWTConfig(), accounts, middlewareTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, userID, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	logg := middlewareTestLogger()
	protected := RequireRole(logg, enums.UserRoleShopkeeper)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
	chain := RequireAuth(middlewareJWTConfig(), liveAccounts(), logg)(protected)

	req := httptest.NewRequest(http.MethodGet, "/shop-orders/x", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, uuid.New(), enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/shop-orders/x", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, uuid.New(), enums.UserRoleShopkeeper))
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
