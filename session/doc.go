// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session issues and validates the bearer tokens used by members and
administrators.

Tokens are 32 random bytes, base64url encoded. Member sessions last 4 hours
and admin sessions 8 hours by default. Sessions live in the SQL store, or in
Redis when one is configured:

	mgr := session.NewManager(store, session.WithTTL(cfg.MemberSessionTTL, cfg.AdminSessionTTL))

	s, err := mgr.Create(ctx, member.ID, models.RoleMember)
	s, err = mgr.Validate(ctx, token, models.RoleMember)

Validate fails with apperr.ErrInvalidOrExpired for every kind of bad token,
so callers cannot tell a forged token from an expired one.
*/
package session
