package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentacar/internal/domain"
	"rentacar/internal/events"
	"rentacar/internal/metrics"
	"rentacar/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidWindow = errors.New("availability window end must not be before start")

// AvailabilityResult is a vehicle listing for a window. When AvailabilityUnknown is set the
// reservation list could not be loaded and no vehicle was marked reserved.
type AvailabilityResult struct {
	Window              models.DateRange     `json:"window"`
	Policy              AvailabilityPolicy   `json:"policy"`
	Vehicles            []models.VehicleView `json:"vehicles"`
	ReservedVehicleIDs  []models.ID          `json:"reservedVehicleIds"`
	AvailabilityUnknown bool                 `json:"availabilityUnknown"`
	ReservationsError   string               `json:"reservationsError,omitempty"`
}

type ReservationService struct {
	reservations domain.ReservationGateway
	vehicles     domain.VehicleCatalog
	eventBus     domain.EventPublisher
	failClosed   bool
	now          Clock
	logger       *zerolog.Logger
}

func NewReservationService(
	reservations domain.ReservationGateway,
	vehicles domain.VehicleCatalog,
	eventBus domain.EventPublisher,
	failClosed bool,
	logger *zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		vehicles:     vehicles,
		eventBus:     eventBus,
		failClosed:   failClosed,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock replaces the time source; used by tests and the CLI's --today flag.
func (s *ReservationService) WithClock(clock Clock) *ReservationService {
	if clock != nil {
		s.now = clock
	}
	return s
}

func (s *ReservationService) Today() models.Date {
	return models.DateOf(s.now())
}

func (s *ReservationService) Validate(candidate models.ReservationCandidate) ValidationResult {
	return ValidateCandidate(candidate, s.Today())
}

// CreateReservation validates locally and only then submits upstream.
func (s *ReservationService) CreateReservation(ctx context.Context, candidate models.ReservationCandidate) (*models.Reservation, error) {
	if result := s.Validate(candidate); !result.IsValid {
		return nil, &ValidationError{Errors: result.Errors}
	}

	created, err := s.reservations.Create(ctx, candidate)
	if err != nil {
		s.logger.Warn().Err(err).Str("vehicle_id", candidate.VehicleID.String()).Msg("create reservation failed")
		return nil, err
	}

	s.publish(events.EventReservationCreated, events.ReservationEventPayload{
		ReservationID: created.ID.String(),
		VehicleID:     vehicleIDOf(*created).String(),
		UserID:        created.UserID.String(),
		StartDate:     created.StartDate.String(),
		EndDate:       created.EndDate.String(),
		TotalPrice:    created.TotalPrice,
	})
	return created, nil
}

func (s *ReservationService) CancelReservation(ctx context.Context, id models.ID) error {
	if id.IsZero() {
		return &ValidationError{Errors: []string{"reservation id required"}}
	}
	if err := s.reservations.Cancel(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("reservation_id", id.String()).Msg("cancel reservation failed")
		return err
	}
	s.publish(events.EventReservationCancelled, events.ReservationEventPayload{ReservationID: id.String()})
	return nil
}

func (s *ReservationService) UserReservations(ctx context.Context, userID models.ID) ([]ReservationView, error) {
	if userID.IsZero() {
		return nil, &ValidationError{Errors: []string{"user id required"}}
	}
	list, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FilterReservations(s.now(), list, ReservationQuery{SortBy: SortStartDate, Descending: true}), nil
}

func (s *ReservationService) AllReservations(ctx context.Context, q ReservationQuery) ([]ReservationView, error) {
	list, err := s.reservations.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterReservations(s.now(), list, q), nil
}

// AvailableVehicles lists vehicles for a window. Vehicles and reservations are fetched
// concurrently; a vehicle fetch failure fails the call, a reservation fetch failure
// degrades to "nothing reserved" unless the service is fail-closed.
func (s *ReservationService) AvailableVehicles(ctx context.Context, window models.DateRange, policy AvailabilityPolicy) (*AvailabilityResult, error) {
	start, err := models.ParseDate(window.StartDate)
	if err != nil {
		return nil, &ValidationError{Errors: []string{MsgStartInvalid}}
	}
	end, err := models.ParseDate(window.EndDate)
	if err != nil {
		return nil, &ValidationError{Errors: []string{MsgEndInvalid}}
	}
	hasWindow := !start.IsZero() && !end.IsZero()
	if hasWindow && end.Before(start) {
		return nil, ErrInvalidWindow
	}

	var (
		vehicles     []models.Vehicle
		reservations []models.Reservation
		resErr       error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.vehicles.ListVehicles(gctx)
		if err != nil {
			return fmt.Errorf("list vehicles: %w", err)
		}
		vehicles = list
		return nil
	})
	if hasWindow {
		g.Go(func() error {
			reservations, resErr = s.reservations.ListByDateRange(gctx, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &AvailabilityResult{
		Window: models.DateRange{StartDate: start.String(), EndDate: end.String()},
		Policy: policy,
	}

	if resErr != nil {
		if s.failClosed {
			return nil, fmt.Errorf("list reservations: %w", resErr)
		}
		metrics.IncAvailabilityFallback()
		s.logger.Warn().Err(resErr).Msg("reservations unavailable, treating window as free")
		result.AvailabilityUnknown = true
		result.ReservationsError = resErr.Error()
		reservations = nil
	}

	reserved := ReservedVehicleIDs(reservations, start, end)
	result.ReservedVehicleIDs = sortedIDs(reserved)
	result.Vehicles = ApplyPolicy(vehicles, reserved, policy)
	return result, nil
}

func (s *ReservationService) Vehicle(ctx context.Context, id models.ID) (*models.Vehicle, error) {
	if id.IsZero() {
		return nil, &ValidationError{Errors: []string{"vehicle id required"}}
	}
	return s.vehicles.GetVehicle(ctx, id)
}

// UpdateVehicleStatus moves a vehicle between stored maintenance states.
func (s *ReservationService) UpdateVehicleStatus(ctx context.Context, id models.ID, raw string) (*models.Vehicle, error) {
	if id.IsZero() {
		return nil, &ValidationError{Errors: []string{"vehicle id required"}}
	}
	if raw == "" {
		return nil, &ValidationError{Errors: []string{"status required"}}
	}
	status, err := models.ParseVehicleStatus(raw)
	if err != nil {
		return nil, &ValidationError{Errors: []string{err.Error()}}
	}

	updated, err := s.vehicles.UpdateVehicleStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.publish(events.EventVehicleStatusChanged, events.VehicleStatusPayload{VehicleID: id.String(), Status: string(status)})
	return updated, nil
}

// Dashboard loads reservations and vehicles concurrently and summarizes them.
func (s *ReservationService) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	var (
		reservations []models.Reservation
		vehicles     []models.Vehicle
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reservations, err = s.reservations.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		vehicles, err = s.vehicles.ListVehicles(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := Summarize(s.now(), reservations, vehicles)
	return &summary, nil
}

func (s *ReservationService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

func sortedIDs(set VehicleIDSet) []models.ID {
	out := make([]models.ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sortIDs(out)
	return out
}
