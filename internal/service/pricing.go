package service

import "rentacar/internal/models"

// Stay is the day count and price for a date range.
type Stay struct {
	Days       int     `json:"days"`
	TotalPrice float64 `json:"totalPrice"`
}

// ComputeStay prices a stay as days * pricePerDay, where days is the absolute number of
// calendar days between the dates. A zero result means "not yet computable" and is not an error.
func ComputeStay(start, end models.Date, pricePerDay float64) Stay {
	if start.IsZero() || end.IsZero() {
		return Stay{}
	}
	days := start.DaysUntil(end)
	if days < 0 {
		days = -days
	}
	if days <= 0 {
		return Stay{}
	}
	return Stay{Days: days, TotalPrice: float64(days) * pricePerDay}
}

// QuoteStay parses the raw dates and prices the stay.
func QuoteStay(rawStart, rawEnd string, pricePerDay float64) (Stay, error) {
	start, err := models.ParseDate(rawStart)
	if err != nil {
		return Stay{}, err
	}
	end, err := models.ParseDate(rawEnd)
	if err != nil {
		return Stay{}, err
	}
	return ComputeStay(start, end, pricePerDay), nil
}
