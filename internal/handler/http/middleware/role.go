package middleware

import (
	"net/http"

	"github.com/retailops/storeops-backend/internal/handler/http/response"
	"github.com/retailops/storeops-backend/internal/pkg/jwt"
)

// RequireManager requires manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := jwt.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !claims.IsManager() {
			response.Forbidden(w, "Manager access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := jwt.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !claims.IsAdmin() {
			response.Forbidden(w, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
