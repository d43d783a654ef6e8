// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
	tu "github.com/danielhkuo/ballotbox/testutil"
)

func TestMemberLogin(t *testing.T) {
	env := newTestEnv(t)
	member := tu.CreateTestMember(t, env.store, "001", "Ana", "1234567", models.FeePaid)
	tu.CreateTestMember(t, env.store, "002", "Beto", "7654321", models.FeePending)

	t.Run("success", func(t *testing.T) {
		w := call(env.auth, "/auth", map[string]any{
			"action": "member-login", "member_number": "001", "id_card": "1234567",
		})
		tu.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			Token string            `json:"token"`
			User  models.MemberView `json:"user"`
		}
		tu.AssertJSON(t, w, &resp)
		if resp.Token == "" {
			t.Error("Expected a session token")
		}
		if resp.User.ID != member.ID || resp.User.Name != "Ana" || resp.User.HasVoted {
			t.Errorf("Unexpected user: %+v", resp.User)
		}

		sess, err := env.sessions.Validate(context.Background(), resp.Token, models.RoleMember)
		if err != nil {
			t.Fatalf("Issued token does not validate: %v", err)
		}
		if sess.SubjectID != member.ID {
			t.Errorf("Expected subject %s, got %s", member.ID, sess.SubjectID)
		}
	})

	t.Run("pending fee is not eligible", func(t *testing.T) {
		w := call(env.auth, "/auth", map[string]any{
			"action": "member-login", "member_number": "002", "id_card": "7654321",
		})
		assertError(t, w, http.StatusForbidden, "not_eligible")
	})

	t.Run("wrong secret on pending member is a credential error", func(t *testing.T) {
		w := call(env.auth, "/auth", map[string]any{
			"action": "member-login", "member_number": "002", "id_card": "nope",
		})
		assertError(t, w, http.StatusUnauthorized, "invalid_credentials")
	})

	t.Run("unknown member", func(t *testing.T) {
		w := call(env.auth, "/auth", map[string]any{
			"action": "member-login", "member_number": "999", "id_card": "1234567",
		})
		assertError(t, w, http.StatusUnauthorized, "invalid_credentials")
	})

	t.Run("missing fields", func(t *testing.T) {
		w := call(env.auth, "/auth", map[string]any{"action": "member-login", "member_number": "001"})
		assertError(t, w, http.StatusBadRequest, "missing_fields")
	})

	t.Run("blank id card", func(t *testing.T) {
		w := call(env.auth, "/auth", map[string]any{"action": "member-login", "member_number": "001", "id_card": "   "})
		assertError(t, w, http.StatusBadRequest, "missing_fields")
	})

	if got := testutil.ToFloat64(env.metrics.Logins.WithLabelValues("member", "success")); got != 1 {
		t.Errorf("Expected 1 successful member login, got %v", got)
	}
	if got := testutil.ToFloat64(env.metrics.Logins.WithLabelValues("member", "invalid_credentials")); got != 2 {
		t.Errorf("Expected 2 failed member logins, got %v", got)
	}
}

func TestMemberLoginLegacyHash(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.store.UpsertMember(context.Background(), models.MemberUpsert{
		MemberNumber: "010",
		Name:         "Legacy",
		FeeStatus:    models.FeePaid,
		SecretHash:   auth.LegacyHash("5551234"),
	}); err != nil {
		t.Fatalf("Failed to seed legacy member: %v", err)
	}

	w := call(env.auth, "/auth", map[string]any{
		"action": "member-login", "member_number": "010", "id_card": "5551234",
	})
	tu.AssertStatus(t, w, http.StatusOK)
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)
	admin := tu.SeedAdmin(t, env.store)

	w := call(env.auth, "/auth", map[string]any{
		"action": "admin-login", "username": tu.AdminUsername, "password": tu.AdminPassword,
	})
	tu.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		Token string           `json:"token"`
		User  models.AdminView `json:"user"`
	}
	tu.AssertJSON(t, w, &resp)
	if resp.User.ID != admin.ID || resp.User.Username != tu.AdminUsername {
		t.Errorf("Unexpected admin view: %+v", resp.User)
	}

	w = call(env.auth, "/auth", map[string]any{
		"action": "admin-login", "username": tu.AdminUsername, "password": "wrong",
	})
	assertError(t, w, http.StatusUnauthorized, "invalid_credentials")

	w = call(env.auth, "/auth", map[string]any{"action": "admin-login"})
	assertError(t, w, http.StatusBadRequest, "missing_fields")
}

func TestValidateSession(t *testing.T) {
	env := newTestEnv(t)
	member, memberToken := env.memberToken(t, "001")
	adminToken := env.adminToken(t)

	t.Run("member", func(t *testing.T) {
		w := call(env.auth, "/auth", map[string]any{"action": "validate-session", "token": memberToken})
		tu.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			UserType models.Role       `json:"user_type"`
			User     models.MemberView `json:"user"`
		}
		tu.AssertJSON(t, w, &resp)
		if resp.UserType != models.RoleMember || resp.User.ID != member.ID {
			t.Errorf("Unexpected session response: %+v", resp)
		}
	})

	t.Run("admin via bearer header", func(t *testing.T) {
		req := tu.MakeRequest("POST", "/auth", map[string]any{"action": "validate-session"},
			map[string]string{"Authorization": "Bearer " + adminToken})
		w := serve(env.auth, req)
		tu.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			UserType models.Role `json:"user_type"`
		}
		tu.AssertJSON(t, w, &resp)
		if resp.UserType != models.RoleAdmin {
			t.Errorf("Expected admin user_type, got %s", resp.UserType)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := tu.CreateTestSession(t, env.store, member.ID, models.RoleMember, -1)
		w := call(env.auth, "/auth", map[string]any{"action": "validate-session", "token": expired})
		assertError(t, w, http.StatusUnauthorized, "invalid_or_expired")
	})

	t.Run("deleted member", func(t *testing.T) {
		other, token := env.memberToken(t, "002")
		if _, err := env.store.DeleteMembers(context.Background(), []string{other.ID}); err != nil {
			t.Fatal(err)
		}
		w := call(env.auth, "/auth", map[string]any{"action": "validate-session", "token": token})
		assertError(t, w, http.StatusUnauthorized, "invalid_or_expired")
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.memberToken(t, "001")

	for range 2 {
		w := call(env.auth, "/auth", map[string]any{"action": "logout", "token": token})
		tu.AssertStatus(t, w, http.StatusOK)
	}

	w := call(env.auth, "/auth", map[string]any{"action": "validate-session", "token": token})
	assertError(t, w, http.StatusUnauthorized, "invalid_or_expired")

	w = call(env.auth, "/auth", map[string]any{"action": "logout"})
	tu.AssertStatus(t, w, http.StatusOK)
}
