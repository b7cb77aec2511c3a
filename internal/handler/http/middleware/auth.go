package middleware

import (
	"net/http"

	"github.com/retailops/storeops-backend/internal/handler/http/response"
	"github.com/retailops/storeops-backend/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token. It must
// run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}

			if _, err := jwt.FromContext(r.Context()); err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
