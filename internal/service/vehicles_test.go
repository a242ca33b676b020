package service

import (
	"context"
	"errors"
	"testing"

	"rentacar/internal/events"
	"rentacar/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validVehicleInput() models.VehicleInput {
	return models.VehicleInput{
		Name:        " Kangoo ",
		Brand:       "Renault",
		Model:       "2022",
		Type:        "van",
		Capacity:    5,
		PricePerDay: 45,
		Kilometers:  12000,
		Features:    []string{" AC ", "", "GPS"},
	}
}

func TestNormalizeVehicleInput(t *testing.T) {
	in, errs := NormalizeVehicleInput(validVehicleInput())
	assert.Empty(t, errs)
	assert.Equal(t, "Kangoo", in.Name)
	assert.Equal(t, []string{"AC", "GPS"}, in.Features)
	assert.Equal(t, []string{}, in.ImageURLs)

	_, errs = NormalizeVehicleInput(models.VehicleInput{Name: "  ", Kilometers: -1})
	assert.Equal(t, []string{MsgVehicleFieldsRequired, MsgVehicleCapacity, MsgVehiclePrice, MsgVehicleKilometers}, errs)
}

func TestNormalizeVehiclePatch(t *testing.T) {
	price := 0.0
	km := int64(-5)
	bad := models.VehicleStatus("reserved")
	empty := models.VehicleStatus("")
	features := []string{"", " Bluetooth "}
	phone := " 555-0100 "

	_, errs := NormalizeVehiclePatch(models.VehiclePatch{})
	assert.Equal(t, []string{MsgVehicleNoChanges}, errs)

	_, errs = NormalizeVehiclePatch(models.VehiclePatch{PricePerDay: &price, Kilometers: &km, Status: &bad})
	require.Len(t, errs, 3)
	assert.Equal(t, MsgVehiclePrice, errs[0])
	assert.Equal(t, MsgVehicleKilometers, errs[1])

	_, errs = NormalizeVehiclePatch(models.VehiclePatch{Status: &empty})
	assert.Equal(t, []string{"status required"}, errs)

	p, errs := NormalizeVehiclePatch(models.VehiclePatch{Features: &features, InsurancePhone: &phone})
	assert.Empty(t, errs)
	assert.Equal(t, []string{"Bluetooth"}, *p.Features)
	assert.Equal(t, "555-0100", *p.InsurancePhone)
}

func TestVehicleCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateValidatesBeforeCatalog", func(t *testing.T) {
		f := newServiceFixture(t, false)
		_, err := f.svc.CreateVehicle(ctx, models.VehicleInput{Name: "x"})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		f.catalog.AssertNotCalled(t, "CreateVehicle", mock.Anything, mock.Anything)
		assert.Empty(t, f.seen)
	})

	t.Run("Create", func(t *testing.T) {
		f := newServiceFixture(t, false)
		created := &models.Vehicle{ID: "v9", Name: "Kangoo"}
		f.catalog.On("CreateVehicle", ctx, mock.MatchedBy(func(in models.VehicleInput) bool {
			return in.Name == "Kangoo" && len(in.Features) == 2
		})).Return(created, nil)

		got, err := f.svc.CreateVehicle(ctx, validVehicleInput())
		require.NoError(t, err)
		assert.Equal(t, created, got)
		assert.Equal(t, []string{events.EventVehicleCreated}, f.seen)
	})

	t.Run("Update", func(t *testing.T) {
		f := newServiceFixture(t, false)
		price := 60.0
		patch := models.VehiclePatch{PricePerDay: &price}
		f.catalog.On("UpdateVehicle", ctx, models.ID("v9"), patch).Return(&models.Vehicle{ID: "v9", PricePerDay: 60}, nil)

		got, err := f.svc.UpdateVehicle(ctx, "v9", patch)
		require.NoError(t, err)
		assert.Equal(t, 60.0, got.PricePerDay)
		assert.Equal(t, []string{events.EventVehicleUpdated}, f.seen)

		var verr *ValidationError
		_, err = f.svc.UpdateVehicle(ctx, "", patch)
		assert.ErrorAs(t, err, &verr)
		_, err = f.svc.UpdateVehicle(ctx, "v9", models.VehiclePatch{})
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("Delete", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.catalog.On("DeleteVehicle", ctx, models.ID("v9")).Return(nil).Once()
		f.catalog.On("DeleteVehicle", ctx, models.ID("gone")).Return(errors.New("not found")).Once()

		require.NoError(t, f.svc.DeleteVehicle(ctx, "v9"))
		assert.Error(t, f.svc.DeleteVehicle(ctx, "gone"))
		assert.Equal(t, []string{events.EventVehicleDeleted}, f.seen)

		var verr *ValidationError
		assert.ErrorAs(t, f.svc.DeleteVehicle(ctx, ""), &verr)
	})
}

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
func (m *mockAuth) ValidateToken(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	gw := &mockAuth{}
	svc := NewAuthService(gw, &logger)

	_, err := svc.Login(ctx, models.Credentials{Email: " "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{MsgEmailRequired, MsgPasswordRequired}, verr.Errors)
	gw.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)

	session := &models.Session{Token: "tok", User: models.User{ID: "7", Role: "admin"}}
	gw.On("Login", ctx, models.Credentials{Email: "ana@example.com", Password: "pw"}).Return(session, nil)
	got, err := svc.Login(ctx, models.Credentials{Email: " ana@example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	gw.On("ValidateToken", ctx).Return(true, nil)
	ok, err := svc.ValidateToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
