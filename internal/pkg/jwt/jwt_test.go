package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func encode(t *testing.T, svc Service, claims map[string]interface{}) string {
	t.Helper()
	_, token, err := svc.JWTAuth().Encode(claims)
	require.NoError(t, err)
	return token
}

func TestVerify(t *testing.T) {
	svc := NewJWTService(testSecret)
	exp := time.Now().Add(time.Hour).Unix()

	token := encode(t, svc, map[string]interface{}{
		"user_id": "u-1",
		"role":    "manager",
		"type":    "access",
		"exp":     exp,
	})

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "u-1", Role: RoleManager}, claims)
	assert.True(t, claims.IsManager())
	assert.False(t, claims.IsAdmin())
}

func TestVerify_Rejects(t *testing.T) {
	svc := NewJWTService(testSecret)
	other := NewJWTService("another-secret")
	exp := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"refresh token": encode(t, svc, map[string]interface{}{"user_id": "u-1", "type": "refresh", "exp": exp}),
		"expired":       encode(t, svc, map[string]interface{}{"user_id": "u-1", "type": "access", "exp": time.Now().Add(-time.Hour).Unix()}),
		"wrong key":     encode(t, other, map[string]interface{}{"user_id": "u-1", "type": "access", "exp": exp}),
		"unknown role":  encode(t, svc, map[string]interface{}{"user_id": "u-1", "type": "access", "role": "owner", "exp": exp}),
		"garbage":       "not-a-token",
	}
	for name, token := range cases {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}

	_, err := svc.Verify(encode(t, svc, map[string]interface{}{"type": "access", "exp": exp}))
	assert.ErrorIs(t, err, ErrMissingClaim)
}

func TestParseClaims_DefaultsToStaff(t *testing.T) {
	claims, err := ParseClaims(map[string]interface{}{"user_id": "u-1", "type": "access"})
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, claims.Role)
}

func TestFromContext(t *testing.T) {
	svc := NewJWTService(testSecret)
	token := encode(t, svc, map[string]interface{}{
		"user_id": "u-9",
		"role":    "admin",
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	var got Claims
	var gotErr error
	h := jwtauth.Verifier(svc.JWTAuth())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NoError(t, gotErr)
	assert.Equal(t, "u-9", got.UserID)
	assert.True(t, got.IsAdmin())

	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrInvalidToken)
}
