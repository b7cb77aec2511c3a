package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/retailops/storeops-backend/internal/handler/http/response"
	"github.com/retailops/storeops-backend/internal/pkg/jwt"
)

const maxBodyBytes = 1 << 20

// currentClaims returns the verified caller or writes a 401.
func currentClaims(w http.ResponseWriter, r *http.Request) (jwt.Claims, bool) {
	claims, err := jwt.FromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return jwt.Claims{}, false
	}
	return claims, true
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", map[string]string{"body": err.Error()})
		return false
	}
	return true
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// queryInt returns 0 for a missing or non-numeric value so the filter's
// defaults apply.
func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
