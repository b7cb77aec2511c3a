package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Role is the store role carried in the access token.
type Role string

const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

const TokenTypeAccess = "access"

var (
	ErrInvalidToken = errors.New("invalid or missing access token")
	ErrMissingClaim = errors.New("access token is missing a required claim")
)

// Claims are the identity fields the API relies on.
type Claims struct {
	UserID string
	Role   Role
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// IsManager reports whether the token grants manager level access. Admins
// count as managers.
func (c Claims) IsManager() bool {
	return c.Role == RoleManager || c.Role == RoleAdmin
}

// Service verifies access tokens issued by the identity provider.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	Verify(tokenString string) (Claims, error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// Verify decodes and validates tokenString and returns its claims.
func (j *JWTService) Verify(tokenString string) (Claims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	return ParseClaims(claims)
}

// ParseClaims extracts Claims from a decoded claim map. Only access tokens
// are accepted.
func ParseClaims(claims map[string]interface{}) (Claims, error) {
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != TokenTypeAccess {
		return Claims{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrMissingClaim
	}

	role, _ := claims["role"].(string)
	switch Role(role) {
	case RoleStaff, RoleManager, RoleAdmin:
	case "":
		role = string(RoleStaff)
	default:
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: userID, Role: Role(role)}, nil
}

// FromContext returns the claims of the token verified by jwtauth.Verifier.
func FromContext(ctx context.Context) (Claims, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return Claims{}, ErrInvalidToken
	}
	return ParseClaims(claims)
}
