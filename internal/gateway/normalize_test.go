package gateway

import (
	"encoding/json"
	"testing"

	"rentacar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeReservation(t *testing.T, body string) models.Reservation {
	t.Helper()
	var raw rawReservation
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return normalizeReservation(raw)
}

func TestNormalizeReservation(t *testing.T) {
	t.Run("Nested", func(t *testing.T) {
		r := decodeReservation(t, `{
			"id": 11, "startDate": "2025-06-01T00:00:00Z", "endDate": "2025-06-04", "status": "ACTIVE",
			"totalPrice": 150, "createdAt": "2025-05-20T08:00:00Z",
			"user": {"id": 4, "firstName": "Ana", "lastName": "Pérez", "email": "ana@mail.test", "dui": "0001"},
			"vehicle": {"id": 2, "name": "Hilux", "brand": "Toyota", "model": "2022", "vehicleType": {"type": "Pickup"}, "capacity": 5}
		}`)

		assert.Equal(t, models.ID("11"), r.ID)
		assert.Equal(t, models.ID("2"), r.VehicleID)
		assert.Equal(t, models.ID("4"), r.UserID)
		assert.Equal(t, "2025-06-01", r.StartDate.String())
		assert.Equal(t, "Ana Pérez", r.User.Name)
		assert.Equal(t, "Pickup", r.Vehicle.Type)
		assert.Equal(t, 5, r.Vehicle.Capacity)
		assert.False(t, r.CreatedAt.IsZero())
		assert.True(t, r.Status.CountsAsBooked())
	})

	t.Run("FlatFields", func(t *testing.T) {
		r := decodeReservation(t, `{
			"id": "r2", "vehicleId": "9", "userId": "u9", "startDate": "2025-06-01", "endDate": "2025-06-02",
			"userEmail": "flat@mail.test", "vehicleName": "Coaster", "vehicleCapacity": 22
		}`)

		assert.Equal(t, models.ID("9"), r.Vehicle.ID)
		assert.Equal(t, models.ID("u9"), r.User.ID)
		assert.Equal(t, "flat@mail.test", r.User.Email)
		assert.Equal(t, "Coaster", r.Vehicle.Name)
		assert.Equal(t, 22, r.Vehicle.Capacity)
		assert.Equal(t, models.ReservationActive, r.Status)
	})

	t.Run("Placeholders", func(t *testing.T) {
		r := decodeReservation(t, `{"id": 3}`)

		assert.Equal(t, models.PlaceholderUserName, r.User.Name)
		assert.Equal(t, models.PlaceholderUserEmail, r.User.Email)
		assert.Equal(t, models.PlaceholderNA, r.User.DUI)
		assert.Equal(t, models.PlaceholderVehicleName, r.Vehicle.Name)
		assert.Equal(t, models.PlaceholderNA, r.Vehicle.Brand)
		assert.Equal(t, models.PlaceholderNA, r.Vehicle.Model)
		assert.Equal(t, models.PlaceholderNA, r.Vehicle.Type)
		assert.Equal(t, 0, r.Vehicle.Capacity)
		assert.True(t, r.StartDate.IsZero())
	})

	t.Run("SnakeVehicleID", func(t *testing.T) {
		r := decodeReservation(t, `{"vehicle_id": 8}`)
		assert.Equal(t, models.ID("8"), r.VehicleID)
		assert.Equal(t, models.ID("8"), r.Vehicle.ID)
	})
}

func TestNormalizeVehicle(t *testing.T) {
	var raw rawVehicle
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "name": "Yaris", "pricePerDay": "39.90", "kilometers": 12000}`), &raw))
	v := normalizeVehicle(raw)

	assert.Equal(t, models.PlaceholderVehicleType, v.Type)
	assert.Equal(t, 39.9, v.PricePerDay)
	assert.Equal(t, int64(12000), v.Kilometers)
	assert.Equal(t, models.VehicleMaintenanceCompleted, v.Status)
	assert.Equal(t, []string{}, v.Features)
	assert.Nil(t, v.CreatedAt)

	raw = rawVehicle{}
	require.NoError(t, json.Unmarshal([]byte(`{"id": 2, "vehicleType": "SUV", "pricePerDay": 80, "status": "outOfService"}`), &raw))
	v = normalizeVehicle(raw)
	assert.Equal(t, "SUV", v.Type)
	assert.Equal(t, 80.0, v.PricePerDay)
	assert.Equal(t, models.VehicleOutOfService, v.Status)
}

func TestMalformedNumbersDecodeAsZero(t *testing.T) {
	var list []rawReservation
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": 1, "vehicleId": 3, "startDate": "2025-06-01", "endDate": "2025-06-04", "totalPrice": 120},
		{"id": 2, "vehicleId": 4, "startDate": "2025-06-02", "endDate": "2025-06-05", "totalPrice": "N/A", "vehicleCapacity": "cinco"}
	]`), &list))

	out := normalizeReservations(list)
	require.Len(t, out, 2)
	assert.Equal(t, 120.0, out[0].TotalPrice)
	assert.Zero(t, out[1].TotalPrice)
	assert.Zero(t, out[1].Vehicle.Capacity)
	assert.Equal(t, models.ID("4"), out[1].VehicleID)

	var raw rawVehicle
	require.NoError(t, json.Unmarshal([]byte(`{"id": 5, "pricePerDay": "abc", "kilometers": "--"}`), &raw))
	v := normalizeVehicle(raw)
	assert.Zero(t, v.PricePerDay)
	assert.Zero(t, v.Kilometers)
}
