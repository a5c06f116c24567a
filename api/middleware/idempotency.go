package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielcastano/mercato-backend/api/responses"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// IdempotencyKeyHeader lets clients mark a mutating request as
// retry-safe.
const IdempotencyKeyHeader = "Idempotency-Key"

type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// Idempotency rejects replays of a request carrying an already used
// Idempotency-Key within the retention window. Requests without the header
// pass through untouched.
func Idempotency(store idempotencyStore, logg *logger.Logger, scope string, retention time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > 128 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "idempotency key too long"))
				return
			}

			caller, _ := CallerFrom(r.Context())
			scopedKey := store.IdempotencyKey(scope, caller.UserID.String()+":"+key)
			fresh, err := store.SetNX(r.Context(), scopedKey, time.Now().UTC().Format(time.RFC3339), retention)
			if err != nil {
				logg.Error(r.Context(), "idempotency store unavailable", err)
				next.ServeHTTP(w, r)
				return
			}
			if !fresh {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key was already processed"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
