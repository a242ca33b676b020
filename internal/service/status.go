package service

import (
	"time"

	"rentacar/internal/models"
)

// Clock supplies "now"; production uses time.Now.
type Clock func() time.Time

// DeriveStatus classifies a reservation against the calendar date of now.
// A reservation without a start date is upcoming.
func DeriveStatus(now time.Time, start, end models.Date) models.DisplayStatus {
	today := models.DateOf(now)
	switch {
	case start.IsZero():
		return models.DisplayUpcoming
	case !end.IsZero() && end.Before(today):
		return models.DisplayCompleted
	case !start.After(today) && (end.IsZero() || !end.Before(today)):
		return models.DisplayActive
	default:
		return models.DisplayUpcoming
	}
}

// ReservationView is a reservation decorated with its derived status and stay length.
type ReservationView struct {
	models.Reservation
	DisplayStatus models.DisplayStatus `json:"displayStatus"`
	Days          int                  `json:"days"`
}

func viewsOf(now time.Time, reservations []models.Reservation) []ReservationView {
	out := make([]ReservationView, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, ReservationView{
			Reservation:   r,
			DisplayStatus: DeriveStatus(now, r.StartDate, r.EndDate),
			Days:          ComputeStay(r.StartDate, r.EndDate, 0).Days,
		})
	}
	return out
}
