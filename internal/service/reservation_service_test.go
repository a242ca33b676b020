package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentacar/internal/events"
	"rentacar/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Create(ctx context.Context, c models.ReservationCandidate) (*models.Reservation, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockGateway) Cancel(ctx context.Context, id models.ID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockGateway) ListByUser(ctx context.Context, userID models.ID) ([]models.Reservation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}
func (m *mockGateway) ListAll(ctx context.Context) ([]models.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}
func (m *mockGateway) ListByDateRange(ctx context.Context, start, end models.Date) ([]models.Reservation, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}
func (m *mockCatalog) GetVehicle(ctx context.Context, id models.ID) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *mockCatalog) UpdateVehicleStatus(ctx context.Context, id models.ID, s models.VehicleStatus) (*models.Vehicle, error) {
	args := m.Called(ctx, id, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *mockCatalog) CreateVehicle(ctx context.Context, in models.VehicleInput) (*models.Vehicle, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *mockCatalog) UpdateVehicle(ctx context.Context, id models.ID, p models.VehiclePatch) (*models.Vehicle, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}
func (m *mockCatalog) DeleteVehicle(ctx context.Context, id models.ID) error {
	return m.Called(ctx, id).Error(0)
}

type serviceFixture struct {
	svc     *ReservationService
	gw      *mockGateway
	catalog *mockCatalog
	bus     *events.EventBus
	seen    []string
}

func newServiceFixture(t *testing.T, failClosed bool) *serviceFixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &serviceFixture{gw: &mockGateway{}, catalog: &mockCatalog{}, bus: events.NewEventBus(&logger)}
	for _, et := range events.EventTypes {
		f.bus.Subscribe(et, func(e *events.Event) error {
			f.seen = append(f.seen, e.Type)
			return nil
		})
	}
	f.svc = NewReservationService(f.gw, f.catalog, f.bus, failClosed, &logger).
		WithClock(func() time.Time { return time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC) })
	return f
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidNeverReachesGateway", func(t *testing.T) {
		f := newServiceFixture(t, false)
		_, err := f.svc.CreateReservation(ctx, models.ReservationCandidate{StartDate: "2025-06-01", EndDate: "2025-06-05"})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{MsgStartBeforeToday, MsgVehicleRequired}, verr.Errors)
		f.gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.seen)
	})

	t.Run("Success", func(t *testing.T) {
		f := newServiceFixture(t, false)
		candidate := models.ReservationCandidate{VehicleID: "v1", UserID: "u1", StartDate: "2025-06-10", EndDate: "2025-06-12"}
		created := &models.Reservation{ID: "r1", VehicleID: "v1", UserID: "u1", TotalPrice: 100}
		f.gw.On("Create", ctx, candidate).Return(created, nil)

		got, err := f.svc.CreateReservation(ctx, candidate)
		require.NoError(t, err)
		assert.Equal(t, created, got)
		assert.Equal(t, []string{events.EventReservationCreated}, f.seen)
	})

	t.Run("UpstreamRejects", func(t *testing.T) {
		f := newServiceFixture(t, false)
		candidate := models.ReservationCandidate{VehicleID: "v1", StartDate: "2025-06-10", EndDate: "2025-06-12"}
		f.gw.On("Create", ctx, candidate).Return(nil, errors.New("vehicle already booked"))

		_, err := f.svc.CreateReservation(ctx, candidate)
		assert.EqualError(t, err, "vehicle already booked")
		assert.Empty(t, f.seen)
	})
}

func TestCancelReservation(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, false)

	var verr *ValidationError
	assert.ErrorAs(t, f.svc.CancelReservation(ctx, ""), &verr)

	f.gw.On("Cancel", ctx, models.ID("r1")).Return(nil).Once()
	require.NoError(t, f.svc.CancelReservation(ctx, "r1"))
	assert.Equal(t, []string{events.EventReservationCancelled}, f.seen)

	f.gw.On("Cancel", ctx, models.ID("r2")).Return(errors.New("not found")).Once()
	assert.Error(t, f.svc.CancelReservation(ctx, "r2"))
	assert.Len(t, f.seen, 1)
}

func TestUserReservations(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, false)
	f.gw.On("ListByUser", ctx, models.ID("u1")).Return([]models.Reservation{
		reservation("A", "2025-05-01", "2025-05-03", "active"),
		reservation("B", "2025-06-10", "2025-06-12", "active"),
	}, nil)

	got, err := f.svc.UserReservations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ID("B"), got[0].VehicleID)
	assert.Equal(t, models.DisplayUpcoming, got[0].DisplayStatus)
	assert.Equal(t, models.DisplayCompleted, got[1].DisplayStatus)

	_, err = f.svc.UserReservations(ctx, "")
	assert.Error(t, err)
}

func TestAvailableVehicles(t *testing.T) {
	ctx := context.Background()
	start := models.MustParseDate("2025-06-03")
	end := models.MustParseDate("2025-06-10")
	window := models.DateRange{StartDate: "2025-06-03", EndDate: "2025-06-10"}
	fleet := []models.Vehicle{
		{ID: "A", Status: models.VehicleMaintenanceCompleted},
		{ID: "B", Status: models.VehicleMaintenanceCompleted},
		{ID: "C", Status: models.VehicleOutOfService},
	}

	t.Run("HidesBookedVehicles", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.catalog.On("ListVehicles", mock.Anything).Return(fleet, nil)
		f.gw.On("ListByDateRange", mock.Anything, start, end).Return([]models.Reservation{
			reservation("A", "2025-06-01", "2025-06-05", "active"),
		}, nil)

		res, err := f.svc.AvailableVehicles(ctx, window, PolicyHide)
		require.NoError(t, err)
		assert.False(t, res.AvailabilityUnknown)
		assert.Equal(t, []models.ID{"A"}, res.ReservedVehicleIDs)
		require.Len(t, res.Vehicles, 1)
		assert.Equal(t, models.ID("B"), res.Vehicles[0].ID)
	})

	t.Run("LabelsBookedVehicles", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.catalog.On("ListVehicles", mock.Anything).Return(fleet, nil)
		f.gw.On("ListByDateRange", mock.Anything, start, end).Return([]models.Reservation{
			reservation("A", "2025-06-01", "2025-06-05", "confirmado"),
		}, nil)

		res, err := f.svc.AvailableVehicles(ctx, window, PolicyLabel)
		require.NoError(t, err)
		require.Len(t, res.Vehicles, 3)
		assert.Equal(t, models.VehicleReserved, res.Vehicles[0].EffectiveStatus)
		assert.Equal(t, models.VehicleOutOfService, res.Vehicles[2].EffectiveStatus)
	})

	t.Run("FailOpenOnReservationError", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.catalog.On("ListVehicles", mock.Anything).Return(fleet, nil)
		f.gw.On("ListByDateRange", mock.Anything, start, end).Return(nil, errors.New("could not reach server"))

		res, err := f.svc.AvailableVehicles(ctx, window, PolicyHide)
		require.NoError(t, err)
		assert.True(t, res.AvailabilityUnknown)
		assert.Equal(t, "could not reach server", res.ReservationsError)
		assert.Empty(t, res.ReservedVehicleIDs)
		assert.Len(t, res.Vehicles, 2)
	})

	t.Run("FailClosedOnReservationError", func(t *testing.T) {
		f := newServiceFixture(t, true)
		f.catalog.On("ListVehicles", mock.Anything).Return(fleet, nil)
		f.gw.On("ListByDateRange", mock.Anything, start, end).Return(nil, errors.New("timeout"))

		_, err := f.svc.AvailableVehicles(ctx, window, PolicyHide)
		assert.Error(t, err)
	})

	t.Run("VehicleErrorFails", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.catalog.On("ListVehicles", mock.Anything).Return(nil, errors.New("boom"))
		f.gw.On("ListByDateRange", mock.Anything, start, end).Return([]models.Reservation{}, nil).Maybe()

		_, err := f.svc.AvailableVehicles(ctx, window, PolicyHide)
		assert.ErrorContains(t, err, "list vehicles")
	})

	t.Run("NoWindowSkipsReservations", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.catalog.On("ListVehicles", mock.Anything).Return(fleet, nil)

		res, err := f.svc.AvailableVehicles(ctx, models.DateRange{}, PolicyLabel)
		require.NoError(t, err)
		assert.Len(t, res.Vehicles, 3)
		f.gw.AssertNotCalled(t, "ListByDateRange", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidWindow", func(t *testing.T) {
		f := newServiceFixture(t, false)
		_, err := f.svc.AvailableVehicles(ctx, models.DateRange{StartDate: "2025-06-10", EndDate: "2025-06-03"}, PolicyHide)
		assert.ErrorIs(t, err, ErrInvalidWindow)

		_, err = f.svc.AvailableVehicles(ctx, models.DateRange{StartDate: "june", EndDate: "2025-06-03"}, PolicyHide)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestUpdateVehicleStatus(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, false)

	updated := &models.Vehicle{ID: "A", Status: models.VehicleUnderMaintenance}
	f.catalog.On("UpdateVehicleStatus", ctx, models.ID("A"), models.VehicleUnderMaintenance).Return(updated, nil)

	got, err := f.svc.UpdateVehicleStatus(ctx, "A", "underMaintenance")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.Equal(t, []string{events.EventVehicleStatusChanged}, f.seen)

	var verr *ValidationError
	_, err = f.svc.UpdateVehicleStatus(ctx, "A", "reserved")
	assert.ErrorAs(t, err, &verr)
	_, err = f.svc.UpdateVehicleStatus(ctx, "A", "")
	assert.ErrorAs(t, err, &verr)
	_, err = f.svc.UpdateVehicleStatus(ctx, "", "outOfService")
	assert.ErrorAs(t, err, &verr)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	f := newServiceFixture(t, false)
	f.gw.On("ListAll", mock.Anything).Return(adminFixtures(), nil)
	f.catalog.On("ListVehicles", mock.Anything).Return([]models.Vehicle{{ID: "2"}}, nil)

	summary, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Reservations.Total)
	assert.Equal(t, 1, summary.Vehicles.Reserved)

	f = newServiceFixture(t, false)
	f.gw.On("ListAll", mock.Anything).Return(nil, errors.New("401"))
	f.catalog.On("ListVehicles", mock.Anything).Return([]models.Vehicle{}, nil).Maybe()
	_, err = f.svc.Dashboard(ctx)
	assert.Error(t, err)
}
