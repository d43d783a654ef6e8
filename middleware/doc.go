// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("POST /vote", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).
Bodies are never logged; they carry secrets and ballots.

# Timeouts and Limits

	middleware.WithTimeout(15*time.Second, middleware.LimitBody(handler))

WithTimeout bounds the request context; LimitBody caps bodies at MaxBodyBytes.

# CORS Middleware

Enable cross-origin requests for the voting frontend:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.WriteError(w, r, err)

WriteError maps an apperr value to its status and writes
{"error": message, "code": code}. Internal errors are logged and replaced
by a generic message.

# Client IP and Tokens

	ip := middleware.GetClientIP(r)
	token := middleware.BearerToken(r)
*/
package middleware
