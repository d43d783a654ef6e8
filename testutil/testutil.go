// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

// Admin credentials seeded by SeedAdmin.
const (
	AdminUsername = "comite"
	AdminPassword = "admin-secret"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// The database lives as long as its single connection, which is closed by
// t.Cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.SQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a store over a fresh test database.
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	return db.NewStore(SetupTestDB(t), db.SQLite, 5*time.Second)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      "file::memory:",
		DatabaseType:     "sqlite",
		BcryptCost:       bcrypt.MinCost,
		MemberSessionTTL: 4 * time.Hour,
		AdminSessionTTL:  8 * time.Hour,
		RequestTimeout:   15 * time.Second,
		StoreTimeout:     5 * time.Second,
	}
}

// CreateTestMember upserts a member whose secret is idCard and returns it.
// feeStatus should be "paid" or "pending".
func CreateTestMember(t *testing.T, store *db.Store, memberNumber, name, idCard, feeStatus string) models.Member {
	t.Helper()

	hash, err := auth.HashSecret(idCard, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash secret: %v", err)
	}

	ctx := context.Background()
	if _, err := store.UpsertMember(ctx, models.MemberUpsert{
		MemberNumber: memberNumber,
		Name:         name,
		FeeStatus:    feeStatus,
		SecretHash:   hash,
	}); err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}

	m, err := store.GetMemberByNumber(ctx, memberNumber)
	if err != nil {
		t.Fatalf("Failed to reload test member: %v", err)
	}
	return m
}

// AddTestCandidate adds a candidate and returns its ID
func AddTestCandidate(t *testing.T, store *db.Store, name string) string {
	t.Helper()

	c, err := store.CreateCandidate(context.Background(), models.CandidateProfile{
		Name: name,
		Bio:  name + " bio",
	})
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return c.ID
}

// SeedAdmin creates the test administrator.
func SeedAdmin(t *testing.T, store *db.Store) models.AdminUser {
	t.Helper()

	hash, err := auth.HashSecret(AdminPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash admin password: %v", err)
	}
	a, err := store.UpsertAdmin(context.Background(), AdminUsername, hash)
	if err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
	return a
}

// SetElectionOpen opens or closes voting.
func SetElectionOpen(t *testing.T, store *db.Store, open bool) {
	t.Helper()
	if _, err := store.SetElectionOpen(context.Background(), open); err != nil {
		t.Fatalf("Failed to set election open=%v: %v", open, err)
	}
}

// CreateTestSession stores a session that expires after ttl.
func CreateTestSession(t *testing.T, store *db.Store, subjectID string, role models.Role, ttl time.Duration) string {
	t.Helper()

	token, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	now := time.Now()
	if err := store.CreateSession(context.Background(), models.Session{
		Token:     token,
		Role:      role,
		SubjectID: subjectID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}); err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return token
}

// TallyInvariant returns the sum of president votes and the number of
// members who voted. The two must always be equal.
func TallyInvariant(t *testing.T, store *db.Store) (presidentVotes int64, voted int) {
	t.Helper()

	ctx := context.Background()
	candidates, err := store.ListCandidates(ctx)
	if err != nil {
		t.Fatalf("Failed to list candidates: %v", err)
	}
	for _, c := range candidates {
		presidentVotes += c.PresidentVotes
	}
	voted, err = store.CountVoted(ctx)
	if err != nil {
		t.Fatalf("Failed to count voted members: %v", err)
	}
	return presidentVotes, voted
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
