package domain

import (
	"context"

	"rentacar/internal/models"
)

// ReservationGateway is the boundary to the remote reservations API.
type ReservationGateway interface {
	Create(ctx context.Context, candidate models.ReservationCandidate) (*models.Reservation, error)
	Cancel(ctx context.Context, id models.ID) error
	ListByUser(ctx context.Context, userID models.ID) ([]models.Reservation, error)
	ListAll(ctx context.Context) ([]models.Reservation, error)
	ListByDateRange(ctx context.Context, start, end models.Date) ([]models.Reservation, error)
}

// VehicleCatalog is the boundary to the remote vehicles API.
type VehicleCatalog interface {
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, id models.ID) (*models.Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, id models.ID, status models.VehicleStatus) (*models.Vehicle, error)
	CreateVehicle(ctx context.Context, in models.VehicleInput) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id models.ID, patch models.VehiclePatch) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id models.ID) error
}

// AuthGateway is the boundary to the remote auth endpoints.
type AuthGateway interface {
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)
	ValidateToken(ctx context.Context) (bool, error)
}

// SessionRepository stores the booking-flow date range per session.
// Get returns nil, nil for an unknown or expired session.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (*models.DateRange, error)
	Set(ctx context.Context, sessionID string, dates models.DateRange) error
	Delete(ctx context.Context, sessionID string) error
}

// CredentialStore is the client-side storage for the auth token.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
