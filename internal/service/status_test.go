package service

import (
	"testing"
	"time"

	"rentacar/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	d := models.MustParseDate
	now := time.Date(2025, 6, 3, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end string
		want       models.DisplayStatus
	}{
		{"future", "2025-06-04", "2025-06-06", models.DisplayUpcoming},
		{"starts today", "2025-06-03", "2025-06-06", models.DisplayActive},
		{"ends today", "2025-05-30", "2025-06-03", models.DisplayActive},
		{"spans today", "2025-06-01", "2025-06-10", models.DisplayActive},
		{"ended yesterday", "2025-05-30", "2025-06-02", models.DisplayCompleted},
		{"no start", "", "2025-06-10", models.DisplayUpcoming},
		{"no dates", "", "", models.DisplayUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(now, d(tt.start), d(tt.end)))
		})
	}
}

func TestDeriveStatusUsesCallerDate(t *testing.T) {
	// 23:30 in UTC-6 is already the next day in UTC; the caller's calendar wins.
	local := time.Date(2025, 6, 2, 23, 30, 0, 0, time.FixedZone("CST", -6*3600))
	d := models.MustParseDate
	assert.Equal(t, models.DisplayUpcoming, DeriveStatus(local, d("2025-06-03"), d("2025-06-04")))
	assert.Equal(t, models.DisplayActive, DeriveStatus(local.UTC(), d("2025-06-03"), d("2025-06-04")))
}
