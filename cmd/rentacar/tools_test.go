package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rentacar/internal/auth"
	"rentacar/internal/database"
	"rentacar/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreToken(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	assert.ErrorIs(t, storeToken(ctx, db, ""), auth.ErrNoToken)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin@mail.test", "id": 3, "role": "ADMIN",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.NoError(t, storeToken(ctx, db, token))

	stored, err := db.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	profile, err := db.Profile(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "3", profile.ID)
	assert.Equal(t, string(auth.RoleAdmin), profile.Role)

	require.NoError(t, storeToken(ctx, db, "not-a-jwt"))
	stored, err = db.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "not-a-jwt", stored)
}

func TestQuoteCommand(t *testing.T) {
	cmd := quoteCmd()
	cmd.SetArgs([]string{"2025-06-01", "2025-06-04", "--price", "50"})
	require.NoError(t, cmd.Execute())

	cmd = quoteCmd()
	cmd.SetArgs([]string{"01/06/2025", "2025-06-04"})
	assert.Error(t, cmd.Execute())
}

func TestSaveSession(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	session := &models.Session{
		Token: "issued",
		User:  models.User{ID: "7", Name: "Ana Diaz", Email: "ana@mail.test", Role: "ADMIN"},
	}
	require.NoError(t, saveSession(ctx, db, session))

	stored, err := db.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "issued", stored)

	profile, err := db.Profile(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, database.Profile{ID: "7", Name: "Ana Diaz", Email: "ana@mail.test", Role: string(auth.RoleAdmin)}, *profile)
}

func TestReadJSON(t *testing.T) {
	var in models.VehicleInput
	require.NoError(t, readJSON("-", strings.NewReader(`{"name": "Kangoo", "capacity": 5}`), &in))
	assert.Equal(t, "Kangoo", in.Name)
	assert.Equal(t, 5, in.Capacity)

	assert.Error(t, readJSON("-", strings.NewReader(`{"colour": "red"}`), &in))

	path := filepath.Join(t.TempDir(), "patch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pricePerDay": 60}`), 0o600))
	var patch models.VehiclePatch
	require.NoError(t, readJSON(path, nil, &patch))
	require.NotNil(t, patch.PricePerDay)
	assert.Equal(t, 60.0, *patch.PricePerDay)

	assert.Error(t, readJSON(filepath.Join(t.TempDir(), "missing.json"), nil, &patch))
}
