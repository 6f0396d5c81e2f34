// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrUserExists is returned when registering an email twice.
var ErrUserExists = errors.New("user already exists")

// ErrNotFound is returned when a user or reset token is absent.
var ErrNotFound = errors.New("not found")

// ResetToken is an outstanding password reset for one email.
type ResetToken struct {
	Email     string
	Secret    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Store keeps users and reset tokens in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and creates) the database at path. ":memory:" keeps
// everything in memory.
func OpenStore(path string) (*Store, error) {
	dsn := ":memory:"
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		email         TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at    INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS reset_tokens (
		email      TEXT PRIMARY KEY,
		secret     TEXT NOT NULL,
		issued_at  INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// =============================================================================
// USERS
// =============================================================================

// CreateUser inserts a user. A duplicate email yields ErrUserExists.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		email, passwordHash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// PasswordHash returns the stored hash for email, or ErrNotFound.
func (s *Store) PasswordHash(ctx context.Context, email string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query user: %w", err)
	}
	return hash, nil
}

// UserExists reports whether email is registered.
func (s *Store) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := s.PasswordHash(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// UpdatePassword replaces the hash for email.
func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE email = ?`,
		passwordHash, time.Now().Unix(), email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// RESET TOKENS
// =============================================================================

// PutResetToken stores t, replacing any earlier token for the same email.
func (s *Store) PutResetToken(ctx context.Context, t ResetToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reset_tokens (email, secret, issued_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			secret = excluded.secret,
			issued_at = excluded.issued_at,
			expires_at = excluded.expires_at`,
		t.Email, t.Secret, t.IssuedAt.UnixNano(), t.ExpiresAt.UnixNano())
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return nil
}

// ResetToken returns the token for email, or ErrNotFound.
func (s *Store) ResetToken(ctx context.Context, email string) (ResetToken, error) {
	var (
		t                 ResetToken
		issued, expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT email, secret, issued_at, expires_at FROM reset_tokens WHERE email = ?`, email).
		Scan(&t.Email, &t.Secret, &issued, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ResetToken{}, ErrNotFound
	}
	if err != nil {
		return ResetToken{}, fmt.Errorf("query reset token: %w", err)
	}
	t.IssuedAt = time.Unix(0, issued)
	t.ExpiresAt = time.Unix(0, expiresAt)
	return t, nil
}

// DeleteResetToken removes the token for email.
func (s *Store) DeleteResetToken(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE email = ?`, email); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}
