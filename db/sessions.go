// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

// CreateSession stores a new session row.
func (s *Store) CreateSession(ctx context.Context, sess models.Session) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_session (token, role, subject_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sess.Token, string(sess.Role), sess.SubjectID, sess.CreatedAt.UnixMilli(), sess.ExpiresAt.UnixMilli())
	if err != nil {
		return s.fail(ctx, "insert session", err)
	}
	return nil
}

// GetSession loads a session by token, expired or not.
func (s *Store) GetSession(ctx context.Context, token string) (models.Session, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var sess models.Session
	var role string
	var createdAt, expiresAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT token, role, subject_id, created_at, expires_at
		FROM user_session
		WHERE token = $1
	`, token).Scan(&sess.Token, &role, &sess.SubjectID, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, s.fail(ctx, "get session", err)
	}

	sess.Role = models.Role(role)
	sess.CreatedAt = time.UnixMilli(createdAt)
	sess.ExpiresAt = time.UnixMilli(expiresAt)
	return sess, nil
}

// DeleteSession removes a session. Unknown tokens are not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_session WHERE token = $1`, token); err != nil {
		return s.fail(ctx, "delete session", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session expired at now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM user_session WHERE expires_at <= $1`, now.UnixMilli())
	if err != nil {
		return 0, s.fail(ctx, "delete expired sessions", err)
	}
	return res.RowsAffected()
}
