package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"rentacar/internal/models"
	"rentacar/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixtureViews() []service.ReservationView {
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	list := []models.Reservation{
		{
			ID: "1", VehicleID: "A", Status: models.ReservationActive,
			StartDate: models.MustParseDate("2025-06-01"), EndDate: models.MustParseDate("2025-06-03"),
			TotalPrice: 100, PricePerDay: 50,
			User:    models.ReservationUser{Name: "Ana", Email: "ana@mail.test", DUI: "0001"},
			Vehicle: models.ReservationVehicle{ID: "A", Name: "Yaris", Type: "Sedan"},
		},
		{
			ID: "2", VehicleID: "B", Status: models.ReservationCancelled,
			StartDate: models.MustParseDate("2025-06-02"), EndDate: models.MustParseDate("2025-06-04"),
			Vehicle: models.ReservationVehicle{ID: "B", Name: "Hilux"},
		},
	}
	return service.FilterReservations(now, list, service.ReservationQuery{SortBy: service.SortStartDate})
}

func TestWorkbook(t *testing.T) {
	f, err := Workbook(fixtureViews(), Period{})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetReservations, SheetCalendar}, f.GetSheetList())

	rows, err := f.GetRows(SheetReservations)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, reservationHeaders, rows[0])
	assert.Equal(t, "Ana", rows[1][1])
	assert.Equal(t, "2025-06-01", rows[1][8])
	assert.Equal(t, "2", rows[1][10])
	assert.Equal(t, "active", rows[1][14])

	title, err := f.GetCellValue(SheetCalendar, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Period: 2025-06-01 - 2025-06-04", title)

	label, err := f.GetCellValue(SheetCalendar, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Yaris (A)", label)
	day3, err := f.GetCellValue(SheetCalendar, "D3")
	require.NoError(t, err)
	assert.Equal(t, "1", day3)
	day4, err := f.GetCellValue(SheetCalendar, "E3")
	require.NoError(t, err)
	assert.Empty(t, day4)

	cancelled, err := f.GetCellValue(SheetCalendar, "A4")
	require.NoError(t, err)
	assert.Empty(t, cancelled)
}

func TestWriteAndSave(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, fixtureViews(), Period{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), SheetReservations)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, SaveAs(path, nil, Period{}))
	assert.FileExists(t, path)
}
