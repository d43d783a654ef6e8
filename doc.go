// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballotbox API server.

ballotbox runs one society election: members with fees up to date log in
with their member number and ID card, choose a president and up to ten
member candidates, answer the ethics code question and vote once. The
election committee opens and closes voting, manages the roster and the
candidates, and reveals the results.

# Starting the Server

	DATABASE_URL=postgres://... go run .

Or against SQLite with flags:

	go run . -t sqlite -d ballotbox.db -admin-user comite -admin-password ...

Settings may also come from a .env file. See package cliparse.

# Architecture

  - handlers: action dispatch for /auth, /vote and /admin
  - router: route definitions using Go 1.22+ routing
  - middleware: logging, timeouts, body limit, CORS, JSON helpers
  - voting: ballot decoding, validation and commit
  - election: open/close, reveal/hide and reset
  - roster: member import and header normalisation
  - session: session tokens over SQL or Redis
  - auth: credential hashing and verification
  - db: schema and the SQL store (Postgres or SQLite)
  - apperr: error kinds, codes and HTTP status mapping
  - metrics: Prometheus collectors
  - models: domain, request and response types
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
