// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/roster"
	"github.com/danielhkuo/ballotbox/session"
	"github.com/danielhkuo/ballotbox/testutil"
	"github.com/danielhkuo/ballotbox/voting"
)

// testEnv wires every endpoint on a fresh in-memory database.
type testEnv struct {
	store    *db.Store
	sessions *session.Manager
	metrics  *metrics.Metrics
	auth     *Dispatcher
	vote     *Dispatcher
	admin    *Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := testutil.SetupTestStore(t)
	sessions := session.NewManager(store)
	m := metrics.New()

	creds := auth.NewCredentials(store, store, bcrypt.MinCost)
	elections := election.NewService(store, m)
	ballots := voting.NewService(sessions, store, m)
	importer := roster.NewImporter(store, bcrypt.MinCost)

	return &testEnv{
		store:    store,
		sessions: sessions,
		metrics:  m,
		auth:     NewAuthHandler(creds, sessions, store, m).Dispatcher(),
		vote:     NewVoteHandler(ballots, store, sessions, m).Dispatcher(),
		admin:    NewAdminHandler(elections, store, importer, sessions, m).Dispatcher(),
	}
}

// call posts body to d and returns the recorder.
func call(d http.Handler, path string, body any) *httptest.ResponseRecorder {
	return serve(d, testutil.MakeRequest("POST", path, body, nil))
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	admin := testutil.SeedAdmin(t, e.store)
	return testutil.CreateTestSession(t, e.store, admin.ID, models.RoleAdmin, session.DefaultAdminTTL)
}

func (e *testEnv) memberToken(t *testing.T, number string) (models.Member, string) {
	t.Helper()
	m := testutil.CreateTestMember(t, e.store, number, "Member "+number, "id-"+number, models.FeePaid)
	return m, testutil.CreateTestSession(t, e.store, m.ID, models.RoleMember, session.DefaultMemberTTL)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v (body %q)", err, w.Body.String())
	}
	return resp
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	testutil.AssertStatus(t, w, status)
	if resp := decodeError(t, w); resp.Code != code {
		t.Errorf("Expected code '%s', got '%s' (%s)", code, resp.Code, resp.Error)
	}
}

func serve(d http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)
	return w
}
