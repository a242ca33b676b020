package service

import (
	"strings"

	"rentacar/internal/models"
)

const (
	MsgStartRequired    = "start date required"
	MsgEndRequired      = "end date required"
	MsgStartInvalid     = "start date is not a valid date"
	MsgEndInvalid       = "end date is not a valid date"
	MsgStartBeforeToday = "start date cannot be before today"
	MsgEndNotAfterStart = "end date must be after start date"
	MsgVehicleRequired  = "vehicle id required"
)

type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidationError carries every failed rule of a rejected candidate.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid reservation: " + strings.Join(e.Errors, "; ")
}

// ValidateCandidate checks a reservation candidate against today. Every rule runs;
// all failures are reported in rule order.
func ValidateCandidate(c models.ReservationCandidate, today models.Date) ValidationResult {
	errs := []string{}

	rawStart := strings.TrimSpace(c.StartDate)
	rawEnd := strings.TrimSpace(c.EndDate)

	if rawStart == "" {
		errs = append(errs, MsgStartRequired)
	}
	if rawEnd == "" {
		errs = append(errs, MsgEndRequired)
	}

	if rawStart != "" && rawEnd != "" {
		start, startErr := models.ParseDate(rawStart)
		end, endErr := models.ParseDate(rawEnd)
		if startErr != nil {
			errs = append(errs, MsgStartInvalid)
		}
		if endErr != nil {
			errs = append(errs, MsgEndInvalid)
		}
		if startErr == nil && endErr == nil {
			if start.Before(today) {
				errs = append(errs, MsgStartBeforeToday)
			}
			if !end.After(start) {
				errs = append(errs, MsgEndNotAfterStart)
			}
		}
	}

	if strings.TrimSpace(c.VehicleID.String()) == "" {
		errs = append(errs, MsgVehicleRequired)
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
