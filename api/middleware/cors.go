package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS configures cross-origin access for browser clients. Guest and request
// id headers are exposed so single-page apps can persist them.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", GuestIDHeader, RequestIDHeader, "Idempotency-Key"},
		ExposedHeaders:   []string{GuestIDHeader, RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
