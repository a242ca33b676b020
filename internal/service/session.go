package service

import (
	"context"
	"errors"
	"fmt"

	"rentacar/internal/domain"
	"rentacar/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrSessionNotFound = errors.New("booking session not found")

// SessionService holds the date range a customer picked while moving between the search
// form and the vehicle list. Its lifetime is one booking flow, bounded by the repository TTL.
type SessionService struct {
	repo   domain.SessionRepository
	logger *zerolog.Logger
}

func NewSessionService(repo domain.SessionRepository, logger *zerolog.Logger) *SessionService {
	return &SessionService{repo: repo, logger: logger}
}

// Start opens a new booking flow with an empty range.
func (s *SessionService) Start(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.repo.Set(ctx, id, models.DateRange{}); err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	return id, nil
}

func (s *SessionService) Dates(ctx context.Context, sessionID string) (models.DateRange, error) {
	dates, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("get session: %w", err)
	}
	if dates == nil {
		return models.DateRange{}, ErrSessionNotFound
	}
	return *dates, nil
}

// Update replaces both dates. Values must be empty or parseable calendar dates.
func (s *SessionService) Update(ctx context.Context, sessionID string, dates models.DateRange) error {
	if _, err := s.Dates(ctx, sessionID); err != nil {
		return err
	}
	start, err := models.ParseDate(dates.StartDate)
	if err != nil {
		return err
	}
	end, err := models.ParseDate(dates.EndDate)
	if err != nil {
		return err
	}
	normalized := models.DateRange{StartDate: start.String(), EndDate: end.String()}
	if err := s.repo.Set(ctx, sessionID, normalized); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Clear resets the range to empty while keeping the flow open.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.Dates(ctx, sessionID); err != nil {
		return err
	}
	return s.repo.Set(ctx, sessionID, models.DateRange{})
}

// End closes the flow and drops its state.
func (s *SessionService) End(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to end session")
		return err
	}
	return nil
}
