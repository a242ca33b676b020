package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"rentacar/internal/models"
)

type rawReservationUser struct {
	ID        models.ID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	DUI       string    `json:"dui"`
}

type rawReservationVehicle struct {
	ID          models.ID   `json:"id"`
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	Model       string      `json:"model"`
	VehicleType vehicleType `json:"vehicleType"`
	Type        string      `json:"type"`
	Capacity    number      `json:"capacity"`
}

// rawReservation is a reservation as the remote API emits it: nested user and vehicle
// objects when the record is joined, flat fields when it is not.
type rawReservation struct {
	ID              models.ID              `json:"id"`
	VehicleID       models.ID              `json:"vehicleId"`
	VehicleIDSnake  models.ID              `json:"vehicle_id"`
	UserID          models.ID              `json:"userId"`
	StartDate       string                 `json:"startDate"`
	EndDate         string                 `json:"endDate"`
	TotalPrice      number                 `json:"totalPrice"`
	PricePerDay     number                 `json:"pricePerDay"`
	Status          string                 `json:"status"`
	CreatedAt       string                 `json:"createdAt"`
	User            *rawReservationUser    `json:"user"`
	Vehicle         *rawReservationVehicle `json:"vehicle"`
	UserEmail       string                 `json:"userEmail"`
	UserDUI         string                 `json:"userDui"`
	VehicleName     string                 `json:"vehicleName"`
	VehicleBrand    string                 `json:"vehicleBrand"`
	VehicleModel    string                 `json:"vehicleModel"`
	VehicleCapacity number                 `json:"vehicleCapacity"`
}

// normalizeReservation fills every display field, using placeholders for missing data.
// Unparseable dates become zero dates so the record never matches an overlap window.
func normalizeReservation(raw rawReservation) models.Reservation {
	user := raw.User
	if user == nil {
		user = &rawReservationUser{}
	}
	vehicle := raw.Vehicle
	if vehicle == nil {
		vehicle = &rawReservationVehicle{}
	}

	start, _ := models.ParseDate(raw.StartDate)
	end, _ := models.ParseDate(raw.EndDate)

	r := models.Reservation{
		ID:          raw.ID,
		VehicleID:   models.ID(firstNonEmpty(raw.VehicleID.String(), raw.VehicleIDSnake.String(), vehicle.ID.String())),
		UserID:      models.ID(firstNonEmpty(raw.UserID.String(), user.ID.String())),
		StartDate:   start,
		EndDate:     end,
		TotalPrice:  float64(raw.TotalPrice),
		PricePerDay: float64(raw.PricePerDay),
		Status:      models.ReservationStatus(raw.Status),
	}
	if r.Status == "" {
		r.Status = models.ReservationActive
	}
	if ts := parseTimestamp(raw.CreatedAt); ts != nil {
		r.CreatedAt = *ts
	}

	fullName := strings.TrimSpace(user.FirstName + " " + user.LastName)
	r.User = models.ReservationUser{
		ID:    models.ID(firstNonEmpty(user.ID.String(), raw.UserID.String())),
		Name:  firstNonEmpty(fullName, user.Name, models.PlaceholderUserName),
		Email: firstNonEmpty(user.Email, raw.UserEmail, models.PlaceholderUserEmail),
		DUI:   firstNonEmpty(user.DUI, raw.UserDUI, models.PlaceholderNA),
	}

	capacity := int(vehicle.Capacity)
	if capacity == 0 {
		capacity = int(raw.VehicleCapacity)
	}
	r.Vehicle = models.ReservationVehicle{
		ID:       models.ID(firstNonEmpty(vehicle.ID.String(), raw.VehicleID.String(), raw.VehicleIDSnake.String())),
		Name:     firstNonEmpty(vehicle.Name, raw.VehicleName, models.PlaceholderVehicleName),
		Brand:    firstNonEmpty(vehicle.Brand, raw.VehicleBrand, models.PlaceholderNA),
		Model:    firstNonEmpty(vehicle.Model, raw.VehicleModel, models.PlaceholderNA),
		Type:     firstNonEmpty(string(vehicle.VehicleType), vehicle.Type, models.PlaceholderNA),
		Capacity: capacity,
	}
	return r
}

func normalizeReservations(raw []rawReservation) []models.Reservation {
	out := make([]models.Reservation, 0, len(raw))
	for _, r := range raw {
		out = append(out, normalizeReservation(r))
	}
	return out
}

func (c *Client) listReservations(ctx context.Context, cl call) ([]models.Reservation, error) {
	var raw []rawReservation
	if err := c.do(ctx, cl, &raw); err != nil {
		return nil, err
	}
	return normalizeReservations(raw), nil
}

// Create submits a reservation. The API computes the authoritative price.
func (c *Client) Create(ctx context.Context, candidate models.ReservationCandidate) (*models.Reservation, error) {
	var raw rawReservation
	err := c.do(ctx, call{
		op:       "create_reservation",
		method:   http.MethodPost,
		path:     "/reservations",
		body:     candidate,
		fallback: "failed to create reservation",
	}, &raw)
	if err != nil {
		return nil, err
	}
	r := normalizeReservation(raw)
	return &r, nil
}

func (c *Client) Cancel(ctx context.Context, id models.ID) error {
	return c.do(ctx, call{
		op:       "cancel_reservation",
		method:   http.MethodDelete,
		path:     "/reservations/" + url.PathEscape(id.String()),
		fallback: "failed to cancel reservation",
	}, nil)
}

func (c *Client) ListByUser(ctx context.Context, userID models.ID) ([]models.Reservation, error) {
	return c.listReservations(ctx, call{
		op:       "list_user_reservations",
		method:   http.MethodGet,
		path:     "/reservations/user?userId=" + url.QueryEscape(userID.String()),
		fallback: "failed to load reservations",
	})
}

func (c *Client) ListAll(ctx context.Context) ([]models.Reservation, error) {
	return c.listReservations(ctx, call{
		op:       "list_all_reservations",
		method:   http.MethodGet,
		path:     "/reservations",
		fallback: "failed to load all reservations",
	})
}

// ListByDateRange returns reservations the API considers inside [start, end].
func (c *Client) ListByDateRange(ctx context.Context, start, end models.Date) ([]models.Reservation, error) {
	q := url.Values{}
	q.Set("startDate", start.String())
	q.Set("endDate", end.String())
	return c.listReservations(ctx, call{
		op:       "list_reservations_by_date",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/reservations/date?%s", q.Encode()),
		fallback: "failed to load reservations for range",
	})
}
