package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"rentacar/internal/models"
)

// ErrInvalidLogin is returned when the API answers a login without a token or user.
var ErrInvalidLogin = errors.New("invalid login response from server")

type rawUser struct {
	ID        models.ID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Roles     []string  `json:"roles"`
}

func normalizeUser(raw rawUser) models.User {
	name := strings.TrimSpace(raw.FirstName + " " + raw.LastName)
	role := raw.Role
	if role == "" && len(raw.Roles) > 0 {
		role = raw.Roles[0]
	}
	return models.User{
		ID:    raw.ID,
		Name:  firstNonEmpty(name, raw.Name, raw.Email),
		Email: raw.Email,
		Role:  role,
	}
}

// Login exchanges credentials for a token. It never sends a stored token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	var resp struct {
		Token string   `json:"token"`
		User  *rawUser `json:"user"`
	}
	err := c.do(withoutToken(ctx), call{
		op:       "login",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     creds,
		fallback: "login failed",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, ErrInvalidLogin
	}
	return &models.Session{Token: resp.Token, User: normalizeUser(*resp.User)}, nil
}

// ValidateToken asks the API whether the current token is still valid. A 401 or 403
// is a definite "no"; transport failures are returned as errors.
func (c *Client) ValidateToken(ctx context.Context) (bool, error) {
	var resp struct {
		Valid bool `json:"valid"`
	}
	err := c.do(ctx, call{
		op:       "validate_token",
		method:   http.MethodGet,
		path:     "/auth/validate",
		fallback: "token validation failed",
	}, &resp)

	var apiErr *APIError
	switch {
	case err == nil:
		return resp.Valid, nil
	case errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden):
		return false, nil
	default:
		return false, err
	}
}
