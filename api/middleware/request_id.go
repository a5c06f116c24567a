package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/danielcastano/mercato-backend/pkg/logger"
)

// RequestIDHeader propagates a correlation id between client and server.
const RequestIDHeader = "X-Request-Id"

// RequestID accepts an inbound request id or mints one, echoes it on the
// response, and binds it to the request logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > 64 {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := WithRequestID(r.Context(), requestID)
			ctx = logg.WithRequestID(ctx, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
