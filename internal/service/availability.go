package service

import (
	"fmt"
	"sort"

	"rentacar/internal/models"
)

// AvailabilityPolicy decides what a listing does with reserved vehicles.
type AvailabilityPolicy string

const (
	// PolicyHide drops reserved and non-operational vehicles (customer listing).
	PolicyHide AvailabilityPolicy = "hide"
	// PolicyLabel keeps every vehicle and overlays its effective status (admin listing).
	PolicyLabel AvailabilityPolicy = "label"
)

func ParsePolicy(raw string) (AvailabilityPolicy, error) {
	switch p := AvailabilityPolicy(raw); p {
	case PolicyHide, PolicyLabel:
		return p, nil
	default:
		return "", fmt.Errorf("unknown availability policy %q", raw)
	}
}

// VehicleIDSet is the set of vehicles booked within a window.
type VehicleIDSet map[models.ID]struct{}

func (s VehicleIDSet) Has(id models.ID) bool {
	_, ok := s[id]
	return ok
}

// ReservedVehicleIDs returns the vehicles with a booked reservation overlapping
// [windowStart, windowEnd], both ends inclusive. A zero bound yields an empty set.
func ReservedVehicleIDs(reservations []models.Reservation, windowStart, windowEnd models.Date) VehicleIDSet {
	reserved := make(VehicleIDSet)
	if windowStart.IsZero() || windowEnd.IsZero() {
		return reserved
	}

	for _, r := range reservations {
		if !r.Status.CountsAsBooked() {
			continue
		}
		if r.StartDate.IsZero() || r.EndDate.IsZero() {
			continue
		}
		if r.StartDate.After(windowEnd) || r.EndDate.Before(windowStart) {
			continue
		}
		if id := vehicleIDOf(r); !id.IsZero() {
			reserved[id] = struct{}{}
		}
	}
	return reserved
}

// ReservedVehicleIDsOn is ReservedVehicleIDs for a single-day window.
func ReservedVehicleIDsOn(reservations []models.Reservation, day models.Date) VehicleIDSet {
	return ReservedVehicleIDs(reservations, day, day)
}

func vehicleIDOf(r models.Reservation) models.ID {
	if !r.Vehicle.ID.IsZero() {
		return r.Vehicle.ID
	}
	return r.VehicleID
}

// EffectiveStatus overlays "reserved" on a vehicle; maintenance states take precedence.
func EffectiveStatus(v models.Vehicle, reserved VehicleIDSet) models.VehicleStatus {
	stored := v.Status
	if stored == "" {
		stored = models.VehicleMaintenanceCompleted
	}
	if stored.InMaintenance() {
		return stored
	}
	if reserved.Has(v.ID) {
		return models.VehicleReserved
	}
	return stored
}

// ApplyPolicy builds the listing for vehicles given the reserved set.
func ApplyPolicy(vehicles []models.Vehicle, reserved VehicleIDSet, policy AvailabilityPolicy) []models.VehicleView {
	out := make([]models.VehicleView, 0, len(vehicles))
	for _, v := range vehicles {
		effective := EffectiveStatus(v, reserved)
		view := models.VehicleView{
			Vehicle:         v,
			EffectiveStatus: effective,
			Available:       effective == models.VehicleMaintenanceCompleted,
		}
		if policy == PolicyHide && !view.Available {
			continue
		}
		out = append(out, view)
	}
	return out
}

func sortIDs(ids []models.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
