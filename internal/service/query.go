package service

import (
	"sort"
	"strings"
	"time"

	"rentacar/internal/models"
)

const (
	DateFilterAll   = "all"
	DateFilterToday = "today"
	DateFilterWeek  = "week"
	DateFilterMonth = "month"
	DateFilterPast  = "past"
)

const (
	SortStartDate   = "startDate"
	SortEndDate     = "endDate"
	SortCreatedAt   = "createdAt"
	SortTotalPrice  = "totalPrice"
	SortUserName    = "userName"
	SortVehicleName = "vehicleName"
)

// ReservationQuery narrows and orders the admin reservation list. Zero values mean "no filter"
// and ascending start date.
type ReservationQuery struct {
	Search      string
	Status      models.DisplayStatus
	VehicleType string
	DateFilter  string
	SortBy      string
	Descending  bool
}

// FilterReservations applies q to reservations as of now.
func FilterReservations(now time.Time, reservations []models.Reservation, q ReservationQuery) []ReservationView {
	today := models.DateOf(now)
	term := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]ReservationView, 0, len(reservations))
	for _, v := range viewsOf(now, reservations) {
		if term != "" && !matchesSearch(v, term) {
			continue
		}
		if q.Status != "" && v.DisplayStatus != q.Status {
			continue
		}
		if q.VehicleType != "" && !strings.EqualFold(v.Vehicle.Type, q.VehicleType) {
			continue
		}
		if !matchesDateFilter(v.Reservation, today, q.DateFilter) {
			continue
		}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.Descending {
			return lessBy(q.SortBy, out[j], out[i])
		}
		return lessBy(q.SortBy, out[i], out[j])
	})
	return out
}

func matchesSearch(v ReservationView, term string) bool {
	fields := []string{
		v.User.Name, v.User.Email, v.User.DUI,
		v.Vehicle.Name, v.Vehicle.Brand, v.Vehicle.Model, v.Vehicle.Type,
		string(v.Status), v.ID.String(), v.Vehicle.ID.String(),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func matchesDateFilter(r models.Reservation, today models.Date, filter string) bool {
	switch filter {
	case "", DateFilterAll:
		return true
	case DateFilterToday:
		return !r.StartDate.After(today) && !r.EndDate.Before(today)
	case DateFilterWeek:
		return !r.StartDate.After(today.AddDays(7)) && !r.EndDate.Before(today)
	case DateFilterMonth:
		monthAhead := models.DateOf(today.Time().AddDate(0, 1, 0))
		return !r.StartDate.After(monthAhead) && !r.EndDate.Before(today)
	case DateFilterPast:
		return r.EndDate.Before(today)
	default:
		return true
	}
}

func lessBy(field string, a, b ReservationView) bool {
	switch field {
	case SortEndDate:
		return a.EndDate.Before(b.EndDate)
	case SortCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	case SortTotalPrice:
		return a.TotalPrice < b.TotalPrice
	case SortUserName:
		return strings.ToLower(a.User.Name) < strings.ToLower(b.User.Name)
	case SortVehicleName:
		return strings.ToLower(a.Vehicle.Name) < strings.ToLower(b.Vehicle.Name)
	default:
		return a.StartDate.Before(b.StartDate)
	}
}
