package security

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"tle_userdb/internal/common"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

var roles = []string{RoleAdmin, RoleOperator}

// TokenAuth stays nil until InitJWT succeeds. The router only verifies
// bearer tokens when it is set, so admin routes answer 401 without it.
var TokenAuth *jwtauth.JWTAuth

var ErrEmptyKey = errors.New("jwt signing key is empty; set JWT_SECRET")

func InitJWT(key []byte) error {
	if len(key) == 0 {
		TokenAuth = nil
		return ErrEmptyKey
	}
	TokenAuth = jwtauth.New("HS256", key, nil)
	return nil
}

// Operator is the caller named by a verified token: the Discord id of whoever
// runs the tooling, and what they may do.
type Operator struct {
	Subject string
	Role    string
}

func (o Operator) Is(role string) bool {
	return o.Role == role
}

// GenerateToken signs a token for an operator tool.
func GenerateToken(subject, role string, ttl time.Duration) (string, error) {
	if TokenAuth == nil {
		return "", ErrEmptyKey
	}
	if subject == "" || !slices.Contains(roles, role) {
		return "", fmt.Errorf("token for %q as %q: %w", subject, role, common.ErrValidation)
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// OperatorFromClaims reads sub and role from verified claims. A missing
// subject or an unknown role is common.ErrUnauthorized.
func OperatorFromClaims(claims jwt.MapClaims) (Operator, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Operator{}, fmt.Errorf("token has no subject: %w", common.ErrUnauthorized)
	}
	role, _ := claims["role"].(string)
	if !slices.Contains(roles, role) {
		return Operator{}, fmt.Errorf("token role %q: %w", role, common.ErrUnauthorized)
	}
	return Operator{Subject: sub, Role: role}, nil
}
