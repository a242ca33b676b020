package export

import (
	"fmt"
	"io"
	"sort"

	"rentacar/internal/models"
	"rentacar/internal/service"

	"github.com/xuri/excelize/v2"
)

const (
	SheetReservations = "Reservations"
	SheetCalendar     = "Calendar"

	// maxCalendarDays bounds the occupancy grid width.
	maxCalendarDays = 92
)

var reservationHeaders = []string{
	"ID", "Customer", "Email", "DUI", "Vehicle", "Brand", "Model", "Type",
	"Start", "End", "Days", "Price/day", "Total", "Status", "Stage",
}

// Period limits the occupancy grid. A zero period spans the reservations themselves.
type Period struct {
	From models.Date
	To   models.Date
}

// Workbook builds the reservations workbook: one row per reservation and an occupancy
// grid of vehicles by day. The caller closes the file.
func Workbook(views []service.ReservationView, period Period) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetReservations)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeReservationRows(f, views); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(SheetCalendar); err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	if err := writeCalendar(f, views, resolvePeriod(views, period)); err != nil {
		f.Close()
		return nil, err
	}

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

// Write streams the workbook as xlsx.
func Write(w io.Writer, views []service.ReservationView, period Period) error {
	f, err := Workbook(views, period)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// SaveAs writes the workbook to path.
func SaveAs(path string, views []service.ReservationView, period Period) error {
	f, err := Workbook(views, period)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func writeReservationRows(f *excelize.File, views []service.ReservationView) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	for i, h := range reservationHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetReservations, cell, h)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(reservationHeaders))
	_ = f.SetCellStyle(SheetReservations, "A1", lastCol+"1", headerStyle)

	for i, v := range views {
		row := []interface{}{
			v.ID.String(),
			v.User.Name,
			v.User.Email,
			v.User.DUI,
			v.Vehicle.Name,
			v.Vehicle.Brand,
			v.Vehicle.Model,
			v.Vehicle.Type,
			v.StartDate.String(),
			v.EndDate.String(),
			v.Days,
			v.PricePerDay,
			v.TotalPrice,
			string(v.Status),
			string(v.DisplayStatus),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetReservations, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetReservations, "A", "A", 10)
	_ = f.SetColWidth(SheetReservations, "B", "H", 22)
	_ = f.SetColWidth(SheetReservations, "I", lastCol, 14)
	return nil
}

func resolvePeriod(views []service.ReservationView, period Period) Period {
	if !period.From.IsZero() && !period.To.IsZero() {
		return period
	}
	var out Period
	for _, v := range views {
		if !v.StartDate.IsZero() && (out.From.IsZero() || v.StartDate.Before(out.From)) {
			out.From = v.StartDate
		}
		if !v.EndDate.IsZero() && (out.To.IsZero() || v.EndDate.After(out.To)) {
			out.To = v.EndDate
		}
	}
	return out
}

// writeCalendar marks, for each vehicle and day, how many booked reservations cover it.
func writeCalendar(f *excelize.File, views []service.ReservationView, period Period) error {
	if period.From.IsZero() || period.To.IsZero() || period.To.Before(period.From) {
		_ = f.SetCellValue(SheetCalendar, "A1", "No reservations")
		return nil
	}
	days := period.From.DaysUntil(period.To) + 1
	if days > maxCalendarDays {
		days = maxCalendarDays
	}

	_ = f.SetCellValue(SheetCalendar, "A1", fmt.Sprintf("Period: %s - %s", period.From, period.From.AddDays(days-1)))

	dayStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	vehicleStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	bookedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for d := 0; d < days; d++ {
		cell, _ := excelize.CoordinatesToCellName(d+2, 2)
		_ = f.SetCellValue(SheetCalendar, cell, period.From.AddDays(d).Time().Format("02.01"))
		_ = f.SetCellStyle(SheetCalendar, cell, cell, dayStyle)
	}

	type vehicleRow struct {
		label string
		count []int
	}
	rows := map[models.ID]*vehicleRow{}
	for _, v := range views {
		if !v.Status.CountsAsBooked() {
			continue
		}
		id := v.Vehicle.ID
		if id.IsZero() {
			id = v.VehicleID
		}
		if id.IsZero() {
			continue
		}
		r, ok := rows[id]
		if !ok {
			r = &vehicleRow{label: fmt.Sprintf("%s (%s)", v.Vehicle.Name, id), count: make([]int, days)}
			rows[id] = r
		}
		for d := 0; d < days; d++ {
			day := period.From.AddDays(d)
			if !day.Before(v.StartDate) && !day.After(v.EndDate) {
				r.count[d]++
			}
		}
	}

	ids := make([]models.ID, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return rows[ids[i]].label < rows[ids[j]].label })

	for i, id := range ids {
		r := rows[id]
		rowNum := i + 3
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		_ = f.SetCellValue(SheetCalendar, cell, r.label)
		_ = f.SetCellStyle(SheetCalendar, cell, cell, vehicleStyle)
		for d, n := range r.count {
			if n == 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(d+2, rowNum)
			_ = f.SetCellValue(SheetCalendar, cell, n)
			_ = f.SetCellStyle(SheetCalendar, cell, cell, bookedStyle)
		}
	}

	_ = f.SetColWidth(SheetCalendar, "A", "A", 28)
	lastCol, _ := excelize.ColumnNumberToName(days + 1)
	_ = f.MergeCell(SheetCalendar, "A1", lastCol+"1")
	return nil
}
