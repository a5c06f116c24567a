package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielcastano/mercato-backend/api/responses"
	pkgauth "github.com/danielcastano/mercato-backend/pkg/auth"
	"github.com/danielcastano/mercato-backend/pkg/config"
	"github.com/danielcastano/mercato-backend/pkg/db/models"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// AccountChecker confirms that a token subject still maps to a live account.
// Soft-deleted users must not resolve.
type AccountChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token bound to a live
// account, and attaches the authenticated caller to the context.
func RequireAuth(cfg config.JWTConfig, accounts AccountChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := callerFromBearer(cfg, r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			live, err := accountIsLive(r.Context(), accounts, caller.UserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying account"))
				return
			}
			if !live {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists"))
				return
			}
			ctx := WithCaller(r.Context(), mergeGuestHeader(r, *caller))
			ctx = logg.WithUserID(ctx, caller.UserID.String())
			ctx = logg.WithActorRole(ctx, caller.Role.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func callerFromBearer(cfg config.JWTConfig, r *http.Request) (*Caller, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authorization header required")
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed authorization header")
	}

	claims, err := pkgauth.ParseAccessToken(cfg, strings.TrimSpace(token))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token")
	}
	return &Caller{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func accountIsLive(ctx context.Context, accounts AccountChecker, userID uuid.UUID) (bool, error) {
	if _, err := accounts.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
