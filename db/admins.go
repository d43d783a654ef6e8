// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/models"
)

func (s *Store) GetAdmin(ctx context.Context, id string) (models.AdminUser, error) {
	return s.getAdmin(ctx, `SELECT id, username, password_hash FROM admin_user WHERE id = $1`, id)
}

func (s *Store) GetAdminByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	return s.getAdmin(ctx, `SELECT id, username, password_hash FROM admin_user WHERE username = $1`, username)
}

func (s *Store) getAdmin(ctx context.Context, query, arg string) (models.AdminUser, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var a models.AdminUser
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Username, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdminUser{}, ErrNotFound
	}
	if err != nil {
		return models.AdminUser{}, s.fail(ctx, "get admin", err)
	}
	return a, nil
}

// UpsertAdmin creates the admin or replaces its password hash.
func (s *Store) UpsertAdmin(ctx context.Context, username, passwordHash string) (models.AdminUser, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var a models.AdminUser
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_user (id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash
		RETURNING id, username, password_hash
	`, uuid.NewString(), username, passwordHash).Scan(&a.ID, &a.Username, &a.PasswordHash)
	if err != nil {
		return models.AdminUser{}, s.fail(ctx, "upsert admin", err)
	}
	return a, nil
}
