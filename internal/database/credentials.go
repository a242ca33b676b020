package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// defaultCredential is the row used by the single-operator CLI and the service.
const defaultCredential = "default"

// Profile is the cached identity returned at login.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Token returns the stored bearer token, or "" when none is stored.
func (db *DB) Token(ctx context.Context) (string, error) {
	var token string
	err := db.QueryRowContext(ctx, `SELECT token FROM credentials WHERE name = ?`, defaultCredential).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

func (db *DB) SaveToken(ctx context.Context, token string) error {
	_, err := db.ExecContext(ctx, `INSERT INTO credentials (name, token, updated_at) VALUES (?, ?, ?)
              ON CONFLICT(name) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		defaultCredential, token, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// ClearToken drops the token and the cached profile, as a 401 from the API requires.
func (db *DB) ClearToken(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM credentials WHERE name = ?`, defaultCredential); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

func (db *DB) SaveProfile(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO credentials (name, profile, updated_at) VALUES (?, ?, ?)
              ON CONFLICT(name) DO UPDATE SET profile = excluded.profile, updated_at = excluded.updated_at`,
		defaultCredential, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Profile returns the cached profile, or nil when none is stored.
func (db *DB) Profile(ctx context.Context) (*Profile, error) {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT profile FROM credentials WHERE name = ?`, defaultCredential).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}
