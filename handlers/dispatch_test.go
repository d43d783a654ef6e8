// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

type stubSessions struct {
	role models.Role
}

func (s stubSessions) Validate(ctx context.Context, token string, required models.Role) (models.Session, error) {
	if token != "good" || (required != "" && required != s.role) {
		return models.Session{}, apperr.ErrInvalidOrExpired
	}
	return models.Session{Token: token, Role: s.role, SubjectID: "subject"}, nil
}

func echoDispatcher() *Dispatcher {
	return NewDispatcher("/test", stubSessions{role: models.RoleAdmin}, nil).
		Register("echo", Command{Handle: func(ctx context.Context, req *Request) (any, error) {
			return map[string]string{"token": req.Token}, nil
		}}).
		Register("guarded", Command{Role: models.RoleAdmin, Handle: func(ctx context.Context, req *Request) (any, error) {
			return map[string]string{"subject": req.Session.SubjectID}, nil
		}}).
		Register("fail", Command{Handle: func(ctx context.Context, req *Request) (any, error) {
			return nil, apperr.Internal(errors.New("database exploded"), "failed")
		}}).
		Default("echo")
}

func TestDispatcherRouting(t *testing.T) {
	d := echoDispatcher()

	testCases := []struct {
		name     string
		body     string
		header   string
		status   int
		contains string
	}{
		{"default action", `{}`, "", http.StatusOK, `"token":""`},
		{"token from body", `{"action":"echo","token":"abc"}`, "", http.StatusOK, `"token":"abc"`},
		{"token from header", `{"action":"echo"}`, "Bearer xyz", http.StatusOK, `"token":"xyz"`},
		{"body token wins", `{"action":"echo","token":"abc"}`, "Bearer xyz", http.StatusOK, `"token":"abc"`},
		{"guarded with session", `{"action":"guarded","token":"good"}`, "", http.StatusOK, `"subject":"subject"`},
		{"guarded without session", `{"action":"guarded"}`, "", http.StatusUnauthorized, `"code":"invalid_or_expired"`},
		{"unknown action", `{"action":"nope"}`, "", http.StatusBadRequest, `"code":"unknown_action"`},
		{"invalid json", `{nope`, "", http.StatusBadRequest, `"code":"invalid_json"`},
		{"empty body", ``, "", http.StatusBadRequest, `"code":"invalid_json"`},
		{"internal error hidden", `{"action":"fail"}`, "", http.StatusInternalServerError, `"error":"internal server error"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", strings.NewReader(tc.body))
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			d.ServeHTTP(w, req)

			testutil.AssertStatus(t, w, tc.status)
			if !strings.Contains(w.Body.String(), tc.contains) {
				t.Errorf("Expected body to contain %s, got %s", tc.contains, w.Body.String())
			}
			if strings.Contains(w.Body.String(), "exploded") {
				t.Error("Internal cause leaked to client")
			}
		})
	}
}

func TestDispatcherDuplicateRegistrationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected duplicate registration to panic")
		}
	}()
	echoDispatcher().Register("echo", Command{})
}

func TestCommandTables(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name     string
		d        *Dispatcher
		expected []string
	}{
		{"auth", env.auth, []string{"admin-login", "logout", "member-login", "validate-session"}},
		{"vote", env.vote, []string{"get-status", "list-candidates", "submit-vote"}},
		{"admin", env.admin, []string{
			"add-candidate", "delete-candidate", "delete-members", "get-candidates", "get-config",
			"get-members", "get-results", "get-stats", "hide-results", "import-members",
			"reset-votes", "reveal-results", "toggle-election", "update-candidate",
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actions := tc.d.Actions()
			sort.Strings(actions)
			if strings.Join(actions, ",") != strings.Join(tc.expected, ",") {
				t.Errorf("Expected actions %v, got %v", tc.expected, actions)
			}
		})
	}
}

func TestAdminActionsRequireAdminSession(t *testing.T) {
	env := newTestEnv(t)
	_, memberToken := env.memberToken(t, "001")

	for _, action := range env.admin.Actions() {
		t.Run(action, func(t *testing.T) {
			w := call(env.admin, "/admin", map[string]any{"action": action})
			assertError(t, w, http.StatusUnauthorized, "invalid_or_expired")

			w = call(env.admin, "/admin", map[string]any{"action": action, "token": memberToken})
			assertError(t, w, http.StatusUnauthorized, "invalid_or_expired")
		})
	}
}
