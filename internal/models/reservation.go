package models

import (
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationPending   ReservationStatus = "pending"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"

	// legacy spelling still emitted by some upstream records
	reservationConfirmedLegacy ReservationStatus = "confirmado"
)

// Normalize lowercases and trims the status; the legacy spelling maps to confirmed.
func (s ReservationStatus) Normalize() ReservationStatus {
	n := ReservationStatus(strings.ToLower(strings.TrimSpace(string(s))))
	if n == reservationConfirmedLegacy {
		return ReservationConfirmed
	}
	return n
}

// CountsAsBooked reports whether a reservation with this status blocks its vehicle.
func (s ReservationStatus) CountsAsBooked() bool {
	switch s.Normalize() {
	case ReservationActive, ReservationConfirmed:
		return true
	default:
		return false
	}
}

// DisplayStatus is derived from wall-clock time and never persisted.
type DisplayStatus string

const (
	DisplayUpcoming  DisplayStatus = "upcoming"
	DisplayActive    DisplayStatus = "active"
	DisplayCompleted DisplayStatus = "completed"
)

func (s DisplayStatus) Valid() bool {
	switch s {
	case DisplayUpcoming, DisplayActive, DisplayCompleted:
		return true
	}
	return false
}

// ReservationUser is the display projection of the reserving user.
type ReservationUser struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	DUI   string `json:"dui"`
}

// ReservationVehicle is the display projection of the reserved vehicle.
type ReservationVehicle struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
}

type Reservation struct {
	ID          ID                 `json:"id"`
	VehicleID   ID                 `json:"vehicleId"`
	UserID      ID                 `json:"userId"`
	StartDate   Date               `json:"startDate"`
	EndDate     Date               `json:"endDate"`
	TotalPrice  float64            `json:"totalPrice"`
	PricePerDay float64            `json:"pricePerDay"`
	Status      ReservationStatus  `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	User        ReservationUser    `json:"user"`
	Vehicle     ReservationVehicle `json:"vehicle"`
}

// ReservationCandidate is what a customer submits for creation.
type ReservationCandidate struct {
	VehicleID ID     `json:"vehicleId"`
	UserID    ID     `json:"userId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// DateRange is the transient window a customer is browsing against.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// IsSet reports whether both ends of the range were chosen.
func (r DateRange) IsSet() bool {
	return strings.TrimSpace(r.StartDate) != "" && strings.TrimSpace(r.EndDate) != ""
}
