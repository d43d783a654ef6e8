// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies member and committee credentials.

# Secrets

Member ID-card numbers and admin passwords are stored as salted bcrypt
hashes:

	hash, err := auth.HashSecret(idCard, cfg.BcryptCost)
	err = auth.VerifySecret(idCard, hash)

Rosters imported before bcrypt carry unsalted SHA-256 hex digests.
VerifySecret recognises them by shape and still accepts them; the next
import of that member replaces the digest with a bcrypt hash.

# Credentials

Credentials looks identities up through narrow finder interfaces
(satisfied by *db.Store) and maps every outcome onto apperr values:

	creds := auth.NewCredentials(store, store, cfg.BcryptCost)
	member, err := creds.VerifyMember(ctx, number, idCard)

The secret is checked before fee status, so a wrong secret is always
invalid_credentials and only a correct one can reveal not_eligible.
Unknown identities spend one bcrypt comparison like a wrong secret does.

# Session Tokens

	token, err := auth.GenerateToken()

Tokens are 32 random bytes, URL-safe base64 without padding.
*/
package auth
