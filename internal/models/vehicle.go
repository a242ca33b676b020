package models

import (
	"fmt"
	"time"
)

type VehicleStatus string

const (
	VehicleMaintenanceCompleted VehicleStatus = "maintenanceCompleted"
	VehicleMaintenanceRequired  VehicleStatus = "maintenanceRequired"
	VehicleUnderMaintenance     VehicleStatus = "underMaintenance"
	VehicleOutOfService         VehicleStatus = "outOfService"

	// VehicleReserved is an overlay computed from reservations, never stored upstream.
	VehicleReserved VehicleStatus = "reserved"
)

// StoredVehicleStatuses lists the states the upstream persists, in board order.
var StoredVehicleStatuses = []VehicleStatus{
	VehicleMaintenanceRequired,
	VehicleUnderMaintenance,
	VehicleMaintenanceCompleted,
	VehicleOutOfService,
}

// ParseVehicleStatus validates a stored status. Empty input means maintenanceCompleted.
func ParseVehicleStatus(raw string) (VehicleStatus, error) {
	if raw == "" {
		return VehicleMaintenanceCompleted, nil
	}
	s := VehicleStatus(raw)
	for _, known := range StoredVehicleStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown vehicle status %q", raw)
}

// InMaintenance reports the statuses that take precedence over the reserved overlay.
func (s VehicleStatus) InMaintenance() bool {
	switch s {
	case VehicleMaintenanceRequired, VehicleUnderMaintenance, VehicleOutOfService:
		return true
	}
	return false
}

type Vehicle struct {
	ID               ID            `json:"id"`
	Name             string        `json:"name"`
	Brand            string        `json:"brand"`
	Model            string        `json:"model"`
	Type             string        `json:"type"`
	Capacity         int           `json:"capacity"`
	PricePerDay      float64       `json:"pricePerDay"`
	Kilometers       int64         `json:"kilometers"`
	KmForMaintenance int64         `json:"kmForMaintenance,omitempty"`
	Features         []string      `json:"features"`
	MainImageURL     string        `json:"mainImageUrl"`
	ImageURLs        []string      `json:"imageUrls"`
	Status           VehicleStatus `json:"status"`
	InsurancePhone   string        `json:"insurancePhone,omitempty"`
	CreatedAt        *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time    `json:"updatedAt,omitempty"`
}

// VehicleView is a vehicle as shown in a listing, with its effective status.
type VehicleView struct {
	Vehicle
	EffectiveStatus VehicleStatus `json:"effectiveStatus"`
	Available       bool          `json:"available"`
}

// VehicleInput is a new vehicle as entered by an admin.
type VehicleInput struct {
	Name             string   `json:"name"`
	Brand            string   `json:"brand"`
	Model            string   `json:"model"`
	Type             string   `json:"type"`
	Capacity         int      `json:"capacity"`
	PricePerDay      float64  `json:"pricePerDay"`
	Kilometers       int64    `json:"kilometers"`
	KmForMaintenance int64    `json:"kmForMaintenance"`
	Features         []string `json:"features"`
	MainImageURL     string   `json:"mainImageUrl"`
	ImageURLs        []string `json:"imageUrls"`
	InsurancePhone   string   `json:"insurancePhone"`
}

// VehiclePatch is a partial vehicle update; nil fields are left unchanged upstream.
type VehiclePatch struct {
	PricePerDay      *float64       `json:"pricePerDay,omitempty"`
	Kilometers       *int64         `json:"kilometers,omitempty"`
	KmForMaintenance *int64         `json:"kmForMaintenance,omitempty"`
	Features         *[]string      `json:"features,omitempty"`
	MainImageURL     *string        `json:"mainImageUrl,omitempty"`
	ImageURLs        *[]string      `json:"imageUrls,omitempty"`
	Status           *VehicleStatus `json:"status,omitempty"`
	InsurancePhone   *string        `json:"insurancePhone,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p VehiclePatch) Empty() bool {
	return p.PricePerDay == nil && p.Kilometers == nil && p.KmForMaintenance == nil &&
		p.Features == nil && p.MainImageURL == nil && p.ImageURLs == nil &&
		p.Status == nil && p.InsurancePhone == nil
}
