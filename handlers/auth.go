// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/models"
)

type Authenticator interface {
	VerifyMember(ctx context.Context, memberNumber, secret string) (models.Member, error)
	VerifyAdmin(ctx context.Context, username, secret string) (models.AdminUser, error)
}

type SessionIssuer interface {
	SessionValidator
	Create(ctx context.Context, subjectID string, role models.Role) (models.Session, error)
	Revoke(ctx context.Context, token string) error
}

type IdentityStore interface {
	GetMember(ctx context.Context, id string) (models.Member, error)
	GetAdmin(ctx context.Context, id string) (models.AdminUser, error)
}

// AuthHandler serves POST /auth.
type AuthHandler struct {
	creds    Authenticator
	sessions SessionIssuer
	store    IdentityStore
	metrics  *metrics.Metrics
}

func NewAuthHandler(creds Authenticator, sessions SessionIssuer, store IdentityStore, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{creds: creds, sessions: sessions, store: store, metrics: m}
}

// Dispatcher returns the command table of the endpoint.
func (h *AuthHandler) Dispatcher() *Dispatcher {
	return NewDispatcher("/auth", h.sessions, h.metrics).
		Register("member-login", Command{Handle: h.MemberLogin}).
		Register("admin-login", Command{Handle: h.AdminLogin}).
		Register("validate-session", Command{Handle: h.ValidateSession}).
		Register("logout", Command{Handle: h.Logout})
}

func (h *AuthHandler) MemberLogin(ctx context.Context, req *Request) (any, error) {
	var body models.MemberLoginRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(body.MemberNumber)
	idCard := strings.TrimSpace(body.IDCard)
	if number == "" || idCard == "" {
		return nil, apperr.Validation(apperr.CodeMissingFields, "member_number and id_card are required")
	}

	member, err := h.creds.VerifyMember(ctx, number, idCard)
	if err != nil {
		h.metrics.IncLogin(string(models.RoleMember), string(apperr.CodeOf(err)))
		return nil, err
	}

	sess, err := h.sessions.Create(ctx, member.ID, models.RoleMember)
	if err != nil {
		return nil, err
	}
	h.metrics.IncLogin(string(models.RoleMember), "success")
	slog.Info("member logged in", "member_id", member.ID)

	return models.LoginResponse{Token: sess.Token, User: memberView(member)}, nil
}

func (h *AuthHandler) AdminLogin(ctx context.Context, req *Request) (any, error) {
	var body models.AdminLoginRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if body.Username == "" || body.Password == "" {
		return nil, apperr.Validation(apperr.CodeMissingFields, "username and password are required")
	}

	admin, err := h.creds.VerifyAdmin(ctx, body.Username, body.Password)
	if err != nil {
		h.metrics.IncLogin(string(models.RoleAdmin), string(apperr.CodeOf(err)))
		return nil, err
	}

	sess, err := h.sessions.Create(ctx, admin.ID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	h.metrics.IncLogin(string(models.RoleAdmin), "success")
	slog.Info("admin logged in", "admin_id", admin.ID)

	return models.LoginResponse{Token: sess.Token, User: adminView(admin)}, nil
}

// ValidateSession accepts either role and returns who the token belongs to.
func (h *AuthHandler) ValidateSession(ctx context.Context, req *Request) (any, error) {
	sess, err := h.sessions.Validate(ctx, req.Token, "")
	if err != nil {
		return nil, err
	}

	switch sess.Role {
	case models.RoleMember:
		m, err := h.store.GetMember(ctx, sess.SubjectID)
		if err != nil {
			return nil, subjectError(err)
		}
		return models.SessionResponse{UserType: models.RoleMember, User: memberView(m)}, nil
	case models.RoleAdmin:
		a, err := h.store.GetAdmin(ctx, sess.SubjectID)
		if err != nil {
			return nil, subjectError(err)
		}
		return models.SessionResponse{UserType: models.RoleAdmin, User: adminView(a)}, nil
	}
	return nil, apperr.ErrInvalidOrExpired
}

// Logout always succeeds; a failed delete only leaves the token to expire.
func (h *AuthHandler) Logout(ctx context.Context, req *Request) (any, error) {
	if err := h.sessions.Revoke(ctx, req.Token); err != nil {
		slog.Warn("failed to revoke session", "error", err)
	}
	return models.SuccessResponse{Success: true}, nil
}

// subjectError turns a vanished session subject into an invalid session.
func subjectError(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.ErrInvalidOrExpired
	}
	return apperr.FromStore(err, "failed to load session subject")
}

func memberView(m models.Member) models.MemberView {
	return models.MemberView{
		ID:           m.ID,
		Name:         m.Name,
		MemberNumber: m.MemberNumber,
		HasVoted:     m.HasVoted,
	}
}

func adminView(a models.AdminUser) models.AdminView {
	return models.AdminView{ID: a.ID, Username: a.Username}
}
