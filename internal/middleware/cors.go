package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets the widget be embedded from any origin. Credentials are allowed,
// so the caller's origin is reflected instead of "*".
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}
