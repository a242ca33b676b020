package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// hmacMethods are the signing algorithms the API issues tokens with.
var hmacMethods = []string{"HS256", "HS384", "HS512"}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// RoleFromClaim maps the API's role names (ADMIN, CUSTOMER, USER) to a Role.
// Unknown or empty roles are customers.
func RoleFromClaim(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), "ADMIN") {
		return RoleAdmin
	}
	return RoleCustomer
}

// Claims is what the service reads from a caller's token. Verified is set only when the
// signature was checked; unverified claims may pick defaults but never grant access.
type Claims struct {
	UserID    string
	Email     string
	Role      Role
	ExpiresAt time.Time
	Verified  bool
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// Expired reports whether the token carries an expiry that is before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrNoToken
	}
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrNoToken
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}

// ClaimsFromToken decodes the token payload without verifying the signature.
// The remote API verifies every forwarded token; the claims here only pick defaults
// and gate admin routes early.
func ClaimsFromToken(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}
	return claimsOf(mc), nil
}

// VerifyToken checks the HMAC signature with secret and the expiry against now, and
// returns verified claims.
func VerifyToken(token string, secret []byte, now time.Time) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	mc := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, mc, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods(hmacMethods), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims := claimsOf(mc)
	claims.Verified = true
	return claims, nil
}

func claimsOf(mc jwt.MapClaims) *Claims {
	claims := &Claims{
		UserID: firstClaim(mc, "userId", "user_id", "id", "sub"),
		Email:  firstClaim(mc, "email"),
		Role:   RoleFromClaim(firstClaim(mc, "role", "roles")),
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims
}

func firstClaim(mc jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		switch v := mc[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		case []interface{}:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}
