package service

import (
	"time"

	"rentacar/internal/models"
)

type TrendPoint struct {
	Date    string  `json:"date"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type ReservationSummary struct {
	Total       int               `json:"total"`
	Active      int               `json:"active"`
	Upcoming    int               `json:"upcoming"`
	Completed   int               `json:"completed"`
	Today       []ReservationView `json:"todayReservations"`
	WeeklyTrend []TrendPoint      `json:"weeklyTrend"`
}

type VehicleSummary struct {
	Total        int `json:"total"`
	Available    int `json:"available"`
	Reserved     int `json:"reserved"`
	Maintenance  int `json:"maintenance"`
	OutOfService int `json:"outOfService"`
}

type DashboardSummary struct {
	Reservations ReservationSummary `json:"reservations"`
	Vehicles     VehicleSummary     `json:"vehicles"`
}

// Summarize builds the admin dashboard counters as of now.
func Summarize(now time.Time, reservations []models.Reservation, vehicles []models.Vehicle) DashboardSummary {
	today := models.DateOf(now)
	views := viewsOf(now, reservations)

	rs := ReservationSummary{Total: len(views), Today: []ReservationView{}}
	for _, v := range views {
		switch v.DisplayStatus {
		case models.DisplayActive:
			rs.Active++
			rs.Today = append(rs.Today, v)
		case models.DisplayUpcoming:
			rs.Upcoming++
		case models.DisplayCompleted:
			rs.Completed++
		}
	}

	rs.WeeklyTrend = make([]TrendPoint, 0, models.DashboardTrendDays)
	for i := models.DashboardTrendDays - 1; i >= 0; i-- {
		day := today.AddDays(-i)
		point := TrendPoint{Date: day.String()}
		for _, r := range reservations {
			if r.StartDate.Equal(day) {
				point.Count++
				point.Revenue += r.TotalPrice
			}
		}
		rs.WeeklyTrend = append(rs.WeeklyTrend, point)
	}

	reservedToday := ReservedVehicleIDsOn(reservations, today)
	vs := VehicleSummary{Total: len(vehicles)}
	for _, v := range vehicles {
		switch EffectiveStatus(v, reservedToday) {
		case models.VehicleOutOfService:
			vs.OutOfService++
		case models.VehicleMaintenanceRequired, models.VehicleUnderMaintenance:
			vs.Maintenance++
		case models.VehicleReserved:
			vs.Reserved++
		default:
			vs.Available++
		}
	}

	return DashboardSummary{Reservations: rs, Vehicles: vs}
}
