package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/danielcastano/mercato-backend/api/responses"
	"github.com/danielcastano/mercato-backend/pkg/config"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// GuestIDHeader carries the anonymous cart identity on requests and is echoed
// back on every response that resolved one.
const GuestIDHeader = "X-Guest-Id"

// AuthOrGuest resolves the request identity for cart endpoints. A valid
// bearer token bound to a live account wins; any credential failure falls
// through to the guest id header, minting a fresh id when the header is
// absent. A malformed guest id is a client error.
func AuthOrGuest(cfg config.JWTConfig, accounts AccountChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := resolveIdentity(cfg, accounts, r, true)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := r.Context()
			if caller.Authenticated() {
				ctx = logg.WithUserID(ctx, caller.UserID.String())
			}
			if caller.GuestID != nil {
				w.Header().Set(GuestIDHeader, caller.GuestID.String())
				ctx = logg.WithGuestID(ctx, caller.GuestID.String())
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(ctx, *caller)))
		})
	}
}

// OptionalAuth attaches the caller when a token or guest id is present but
// never rejects the request over credentials. Login uses this to pick up a
// pending guest cart.
func OptionalAuth(cfg config.JWTConfig, accounts AccountChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := resolveIdentity(cfg, accounts, r, false)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), *caller)))
		})
	}
}

// resolveIdentity prefers an authenticated caller but degrades to guest
// resolution on any bearer failure, including tokens whose account has since
// been deleted. Only a malformed guest id is surfaced to the client.
func resolveIdentity(cfg config.JWTConfig, accounts AccountChecker, r *http.Request, mintGuest bool) (*Caller, error) {
	var caller Caller
	if r.Header.Get("Authorization") != "" {
		if authenticated, err := callerFromBearer(cfg, r); err == nil {
			if live, err := accountIsLive(r.Context(), accounts, authenticated.UserID); err == nil && live {
				caller = *authenticated
			}
		}
	}

	raw := r.Header.Get(GuestIDHeader)
	switch {
	case raw != "":
		guestID, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid guest id format")
		}
		caller.GuestID = &guestID
	case !caller.Authenticated() && mintGuest:
		guestID := uuid.New()
		caller.GuestID = &guestID
	}
	return &caller, nil
}

func mergeGuestHeader(r *http.Request, caller Caller) Caller {
	if raw := r.Header.Get(GuestIDHeader); raw != "" {
		if guestID, err := uuid.Parse(raw); err == nil {
			caller.GuestID = &guestID
		}
	}
	return caller
}
