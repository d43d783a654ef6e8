// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSecretMismatch = errors.New("secret does not match")
	ErrEmptySecret    = errors.New("secret cannot be empty")
)

// legacyHashLen is the hex length of the unsalted SHA-256 digests found in
// rosters imported before bcrypt was introduced.
const legacyHashLen = sha256.Size * 2

// GenerateToken creates a random session token.
// 32 bytes = 256 bits of entropy, URL-safe base64 without padding.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSecret creates a salted bcrypt hash of secret.
func HashSecret(secret string, cost int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("could not hash secret: %w", err)
	}
	return string(hashed), nil
}

// LegacyHash returns the unsalted SHA-256 hex digest of secret.
func LegacyHash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifySecret checks secret against a bcrypt hash or a legacy SHA-256 digest.
func VerifySecret(secret, hash string) error {
	if isLegacyHash(hash) {
		want := LegacyHash(secret)
		if subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(hash))) != 1 {
			return ErrSecretMismatch
		}
		return nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrSecretMismatch
		}
		return fmt.Errorf("could not verify secret: %w", err)
	}
	return nil
}

func isLegacyHash(hash string) bool {
	if len(hash) != legacyHashLen {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
