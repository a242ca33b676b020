package service

import (
	"testing"

	"rentacar/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateCandidate(t *testing.T) {
	today := models.MustParseDate("2025-06-03")

	tests := []struct {
		name      string
		candidate models.ReservationCandidate
		want      []string
	}{
		{
			name:      "empty candidate reports only missing fields",
			candidate: models.ReservationCandidate{},
			want:      []string{MsgStartRequired, MsgEndRequired, MsgVehicleRequired},
		},
		{
			name:      "future ordered dates",
			candidate: models.ReservationCandidate{StartDate: "2099-01-01", EndDate: "2099-01-02", VehicleID: "v1"},
			want:      []string{},
		},
		{
			name:      "start today is allowed",
			candidate: models.ReservationCandidate{StartDate: "2025-06-03", EndDate: "2025-06-04", VehicleID: "v1"},
			want:      []string{},
		},
		{
			name:      "start in the past",
			candidate: models.ReservationCandidate{StartDate: "2025-06-02", EndDate: "2025-06-04", VehicleID: "v1"},
			want:      []string{MsgStartBeforeToday},
		},
		{
			name:      "end equal to start",
			candidate: models.ReservationCandidate{StartDate: "2025-06-10", EndDate: "2025-06-10", VehicleID: "v1"},
			want:      []string{MsgEndNotAfterStart},
		},
		{
			name:      "every rule fails independently",
			candidate: models.ReservationCandidate{StartDate: "2025-05-01", EndDate: "2025-04-01"},
			want:      []string{MsgStartBeforeToday, MsgEndNotAfterStart, MsgVehicleRequired},
		},
		{
			name:      "only end missing",
			candidate: models.ReservationCandidate{StartDate: "2025-07-01", VehicleID: "v1"},
			want:      []string{MsgEndRequired},
		},
		{
			name:      "unparseable dates skip order rules",
			candidate: models.ReservationCandidate{StartDate: "07/01/2025", EndDate: "soon", VehicleID: "v1"},
			want:      []string{MsgStartInvalid, MsgEndInvalid},
		},
		{
			name:      "timestamps are reduced to their date",
			candidate: models.ReservationCandidate{StartDate: "2025-06-03T23:00:00-06:00", EndDate: "2025-06-05T00:00:00Z", VehicleID: "v1"},
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateCandidate(tt.candidate, today)
			assert.Equal(t, tt.want, got.Errors)
			assert.Equal(t, len(tt.want) == 0, got.IsValid)
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Errors: []string{MsgStartRequired, MsgVehicleRequired}}
	assert.Equal(t, "invalid reservation: start date required; vehicle id required", err.Error())
}
