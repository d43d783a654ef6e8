// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Should be URL-safe (no padding)
	if strings.ContainsAny(token, "=+/") {
		t.Errorf("GenerateToken() is not URL-safe: %s", token)
	}

	// 32 bytes encoded without padding
	if len(token) != 43 {
		t.Errorf("GenerateToken() length = %d, want 43", len(token))
	}

	tokens := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken() error on iteration %d: %v", i, err)
		}
		if tokens[token] {
			t.Errorf("GenerateToken() produced duplicate token: %s", token)
		}
		tokens[token] = true
	}
}

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("1234567", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashSecret() error = %v", err)
	}
	if hash == "1234567" || !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("HashSecret() did not produce a bcrypt hash: %s", hash)
	}

	again, _ := HashSecret("1234567", bcrypt.MinCost)
	if again == hash {
		t.Error("HashSecret() is not salted")
	}

	if _, err := HashSecret("", bcrypt.MinCost); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("HashSecret(\"\") error = %v, want ErrEmptySecret", err)
	}
}

func TestVerifySecret(t *testing.T) {
	bcryptHash, err := HashSecret("1234567", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	legacy := LegacyHash("1234567")

	tests := []struct {
		name    string
		secret  string
		hash    string
		wantErr error
	}{
		{"bcrypt match", "1234567", bcryptHash, nil},
		{"bcrypt mismatch", "7654321", bcryptHash, ErrSecretMismatch},
		{"legacy match", "1234567", legacy, nil},
		{"legacy upper-case digest", "1234567", strings.ToUpper(legacy), nil},
		{"legacy mismatch", "7654321", legacy, ErrSecretMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySecret(tt.secret, tt.hash)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifySecret() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("malformed hash", func(t *testing.T) {
		err := VerifySecret("1234567", "not-a-hash")
		if err == nil || errors.Is(err, ErrSecretMismatch) {
			t.Errorf("VerifySecret() error = %v, want a verification failure", err)
		}
	})
}

func TestLegacyHash(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := LegacyHash("abc"); got != want {
		t.Errorf("LegacyHash() = %s, want %s", got, want)
	}
}

type fakeFinder struct {
	members map[string]models.Member
	admins  map[string]models.AdminUser
	err     error
}

func (f fakeFinder) GetMemberByNumber(ctx context.Context, number string) (models.Member, error) {
	if f.err != nil {
		return models.Member{}, f.err
	}
	m, ok := f.members[number]
	if !ok {
		return models.Member{}, db.ErrNotFound
	}
	return m, nil
}

func (f fakeFinder) GetAdminByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	if f.err != nil {
		return models.AdminUser{}, f.err
	}
	a, ok := f.admins[username]
	if !ok {
		return models.AdminUser{}, db.ErrNotFound
	}
	return a, nil
}

func newFakeCredentials(t *testing.T) *Credentials {
	t.Helper()
	hash := func(s string) string {
		h, err := HashSecret(s, bcrypt.MinCost)
		if err != nil {
			t.Fatal(err)
		}
		return h
	}
	f := fakeFinder{
		members: map[string]models.Member{
			"001": {ID: "m1", MemberNumber: "001", FeeStatus: models.FeePaid, SecretHash: hash("111")},
			"002": {ID: "m2", MemberNumber: "002", FeeStatus: models.FeePending, SecretHash: hash("222")},
		},
		admins: map[string]models.AdminUser{
			"comite": {ID: "a1", Username: "comite", PasswordHash: hash("admin-secret")},
		},
	}
	return NewCredentials(f, f, bcrypt.MinCost)
}

func TestVerifyMember(t *testing.T) {
	creds := newFakeCredentials(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		number  string
		secret  string
		wantErr error
	}{
		{"paid member", "001", "111", nil},
		{"pending member", "002", "222", apperr.ErrNotEligible},
		{"pending member with wrong secret", "002", "999", apperr.ErrInvalidCredentials},
		{"wrong secret", "001", "999", apperr.ErrInvalidCredentials},
		{"unknown member", "404", "111", apperr.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := creds.VerifyMember(ctx, tt.number, tt.secret)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("VerifyMember() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && m.ID != "m1" {
				t.Errorf("VerifyMember() returned %+v", m)
			}
		})
	}
}

func TestVerifyAdmin(t *testing.T) {
	creds := newFakeCredentials(t)
	ctx := context.Background()

	admin, err := creds.VerifyAdmin(ctx, "comite", "admin-secret")
	if err != nil || admin.ID != "a1" {
		t.Fatalf("VerifyAdmin() = %+v, %v", admin, err)
	}
	if _, err := creds.VerifyAdmin(ctx, "comite", "nope"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := creds.VerifyAdmin(ctx, "ghost", "admin-secret"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("unknown admin error = %v", err)
	}
}

func TestVerifyStoreFailure(t *testing.T) {
	f := fakeFinder{err: context.DeadlineExceeded}
	creds := NewCredentials(f, f, bcrypt.MinCost)

	_, err := creds.VerifyMember(context.Background(), "001", "111")
	if got := apperr.HTTPStatus(err); got != 503 {
		t.Errorf("store timeout status = %d, want 503", got)
	}
}

// Benchmark tests
func BenchmarkGenerateToken(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateToken()
	}
}

func BenchmarkVerifySecret(b *testing.B) {
	hash, _ := HashSecret("1234567", bcrypt.DefaultCost)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		VerifySecret("1234567", hash)
	}
}
