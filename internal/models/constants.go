package models

import "time"

const (
	// DefaultUpstreamTimeout applies uniformly to every upstream call.
	DefaultUpstreamTimeout = 10 * time.Second

	// DefaultSessionTTL bounds how long a booking-flow date range is kept.
	DefaultSessionTTL = 2 * time.Hour

	// DashboardTrendDays is the length of the dashboard reservation trend.
	DashboardTrendDays = 7
)

// Placeholders used when the upstream omits nested user/vehicle data.
const (
	PlaceholderUserName    = "Usuario no disponible"
	PlaceholderUserEmail   = "email@no-disponible.com"
	PlaceholderVehicleName = "Vehículo no disponible"
	PlaceholderVehicleType = "Desconocido"
	PlaceholderNA          = "N/A"
)
