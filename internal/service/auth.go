package service

import (
	"context"
	"strings"

	"rentacar/internal/domain"
	"rentacar/internal/models"

	"github.com/rs/zerolog"
)

const (
	MsgEmailRequired    = "email required"
	MsgPasswordRequired = "password required"
)

// AuthService fronts the remote login and token validation endpoints.
type AuthService struct {
	gateway domain.AuthGateway
	logger  *zerolog.Logger
}

func NewAuthService(gateway domain.AuthGateway, logger *zerolog.Logger) *AuthService {
	return &AuthService{gateway: gateway, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	var errs []string
	if creds.Email == "" {
		errs = append(errs, MsgEmailRequired)
	}
	if creds.Password == "" {
		errs = append(errs, MsgPasswordRequired)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	session, err := s.gateway.Login(ctx, creds)
	if err != nil {
		s.logger.Info().Err(err).Str("email", creds.Email).Msg("login rejected")
		return nil, err
	}
	return session, nil
}

// ValidateToken reports whether the API still accepts the token carried by ctx.
func (s *AuthService) ValidateToken(ctx context.Context) (bool, error) {
	return s.gateway.ValidateToken(ctx)
}
