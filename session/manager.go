// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

const (
	DefaultMemberTTL = 4 * time.Hour
	DefaultAdminTTL  = 8 * time.Hour
)

// Store persists sessions. GetSession returns db.ErrNotFound for unknown
// tokens and may return expired sessions.
type Store interface {
	CreateSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// expiredPurger is implemented by stores that keep expired rows around.
type expiredPurger interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Manager issues and validates opaque bearer tokens.
type Manager struct {
	store     Store
	memberTTL time.Duration
	adminTTL  time.Duration
	now       func() time.Time
}

type Option func(*Manager)

// WithTTL overrides the session lifetimes. Zero keeps the default.
func WithTTL(member, admin time.Duration) Option {
	return func(m *Manager) {
		if member > 0 {
			m.memberTTL = member
		}
		if admin > 0 {
			m.adminTTL = admin
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		memberTTL: DefaultMemberTTL,
		adminTTL:  DefaultAdminTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Manager) ttl(role models.Role) time.Duration {
	if role == models.RoleAdmin {
		return m.adminTTL
	}
	return m.memberTTL
}

// Create issues a new token for subjectID.
func (m *Manager) Create(ctx context.Context, subjectID string, role models.Role) (models.Session, error) {
	token, err := auth.GenerateToken()
	if err != nil {
		return models.Session{}, apperr.Internal(err, "failed to generate session token")
	}

	now := m.now()
	s := models.Session{
		Token:     token,
		Role:      role,
		SubjectID: subjectID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl(role)),
	}
	if err := m.store.CreateSession(ctx, s); err != nil {
		return models.Session{}, apperr.FromStore(err, "failed to create session")
	}
	return s, nil
}

// Validate returns the live session for token. An empty, unknown or expired
// token, or one issued for another role, is ErrInvalidOrExpired. An empty
// requiredRole accepts any role.
func (m *Manager) Validate(ctx context.Context, token string, requiredRole models.Role) (models.Session, error) {
	if token == "" {
		return models.Session{}, apperr.ErrInvalidOrExpired
	}

	s, err := m.store.GetSession(ctx, token)
	if errors.Is(err, db.ErrNotFound) {
		return models.Session{}, apperr.ErrInvalidOrExpired
	}
	if err != nil {
		return models.Session{}, apperr.FromStore(err, "failed to load session")
	}

	if s.Expired(m.now()) {
		if err := m.store.DeleteSession(ctx, token); err != nil {
			slog.Warn("failed to delete expired session", "error", err)
		}
		return models.Session{}, apperr.ErrInvalidOrExpired
	}
	if requiredRole != "" && s.Role != requiredRole {
		return models.Session{}, apperr.ErrInvalidOrExpired
	}
	return s, nil
}

// Revoke deletes the session. Unknown tokens are not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.DeleteSession(ctx, token); err != nil {
		return apperr.FromStore(err, "failed to delete session")
	}
	return nil
}

// PurgeExpired deletes expired sessions when the store keeps them. Stores
// that expire keys on their own report zero.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	p, ok := m.store.(expiredPurger)
	if !ok {
		return 0, nil
	}
	return p.DeleteExpiredSessions(ctx, m.now())
}
