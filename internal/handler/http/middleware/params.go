package middleware

import (
	"net/http"

	"github.com/retailops/storeops-backend/internal/handler/http/response"
	"github.com/retailops/storeops-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// UUIDParams rejects the request when any of the named URL params is not a UUID.
func UUIDParams(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			details := map[string]string{}
			for _, name := range names {
				if !validator.IsValidUUID(chi.URLParam(r, name)) {
					details[name] = name + " must be a valid UUID"
				}
			}
			if len(details) > 0 {
				response.BadRequest(w, "Invalid path parameter", details)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
