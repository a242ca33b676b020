package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(memoryPath, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}

func TestCredentials(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	token, err := db.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, db.SaveToken(ctx, "abc"))
	require.NoError(t, db.SaveToken(ctx, "def"))
	token, err = db.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "def", token)

	profile, err := db.Profile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile)

	require.NoError(t, db.SaveProfile(ctx, Profile{ID: "7", Name: "Ana", Role: "ADMIN"}))
	profile, err = db.Profile(ctx)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "ADMIN", profile.Role)

	token, err = db.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "def", token, "saving the profile keeps the token")

	require.NoError(t, db.ClearToken(ctx))
	token, err = db.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	profile, err = db.Profile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile)
}
