package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/danielcastano/mercato-backend/pkg/enums"
)

type contextKey string

const (
	callerKey    contextKey = "caller"
	requestIDKey contextKey = "request_id"
)

// Caller is the resolved identity of the request: an authenticated user, an
// anonymous guest, or both a user and a pending guest id at login time.
type Caller struct {
	UserID  uuid.UUID
	Email   string
	Role    enums.UserRole
	GuestID *uuid.UUID
}

// Authenticated reports whether the request carried a valid access token.
func (c Caller) Authenticated() bool {
	return c.UserID != uuid.Nil
}

// CartOwner resolves the identity carts are keyed by: the user when
// authenticated, the guest id otherwise.
func (c Caller) CartOwner() (uuid.UUID, enums.CartOwnerKind, bool) {
	if c.Authenticated() {
		return c.UserID, enums.CartOwnerUser, true
	}
	if c.GuestID != nil {
		return *c.GuestID, enums.CartOwnerGuest, true
	}
	return uuid.Nil, "", false
}

// WithCaller stores the caller identity on the context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom reads the caller identity from the context.
func CallerFrom(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey).(Caller)
	return caller, ok
}

// WithRequestID stores the request id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom reads the request id from the context.
func RequestIDFrom(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}
