// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr defines the error taxonomy shared by every service.

# Kinds and Statuses

	KindValidation   → 400  malformed or missing input
	KindAuth         → 401  bad credentials, invalid or expired session
	KindForbidden    → 403  election closed, already voted, results hidden, not eligible
	KindNotFound     → 404  unknown candidate or member reference
	KindUnavailable  → 503  store timeout, safe to retry
	KindInternal     → 500  anything else, logged and never echoed

# Matching

Errors compare by Code, so wrapped or re-created errors still match:

	if errors.Is(err, apperr.ErrAlreadyVoted) { ... }

Handlers turn any error into a response with HTTPStatus and PublicMessage.
*/
package apperr
