// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

type MemberFinder interface {
	GetMemberByNumber(ctx context.Context, memberNumber string) (models.Member, error)
}

type AdminFinder interface {
	GetAdminByUsername(ctx context.Context, username string) (models.AdminUser, error)
}

// Credentials verifies member and admin secrets against stored hashes.
type Credentials struct {
	members MemberFinder
	admins  AdminFinder
	cost    int

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentials(members MemberFinder, admins AdminFinder, cost int) *Credentials {
	return &Credentials{members: members, admins: admins, cost: cost}
}

// VerifyMember returns the member whose number and secret match. Credentials
// are checked before fee eligibility.
func (c *Credentials) VerifyMember(ctx context.Context, memberNumber, secret string) (models.Member, error) {
	member, err := c.members.GetMemberByNumber(ctx, memberNumber)
	if errors.Is(err, db.ErrNotFound) {
		c.burnComparison(secret)
		return models.Member{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return models.Member{}, apperr.FromStore(err, "failed to load member")
	}

	if err := c.verify(secret, member.SecretHash); err != nil {
		return models.Member{}, err
	}

	if member.FeeStatus != models.FeePaid {
		return models.Member{}, apperr.ErrNotEligible
	}
	return member, nil
}

func (c *Credentials) VerifyAdmin(ctx context.Context, username, secret string) (models.AdminUser, error) {
	admin, err := c.admins.GetAdminByUsername(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		c.burnComparison(secret)
		return models.AdminUser{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return models.AdminUser{}, apperr.FromStore(err, "failed to load admin")
	}

	if err := c.verify(secret, admin.PasswordHash); err != nil {
		return models.AdminUser{}, err
	}
	return admin, nil
}

func (c *Credentials) verify(secret, hash string) error {
	err := VerifySecret(secret, hash)
	if errors.Is(err, ErrSecretMismatch) {
		return apperr.ErrInvalidCredentials
	}
	if err != nil {
		return apperr.Internal(err, "failed to verify credentials")
	}
	return nil
}

// burnComparison spends one bcrypt comparison so unknown identities take as
// long as wrong secrets.
func (c *Credentials) burnComparison(secret string) {
	c.dummyOnce.Do(func() {
		c.dummyHash, _ = HashSecret("not-a-real-secret", c.cost)
	})
	if c.dummyHash != "" {
		_ = VerifySecret(secret, c.dummyHash)
	}
}
