// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP endpoints of the ballot box.

# Action Dispatch

Each endpoint accepts a JSON body with an "action" field and routes it
through a Dispatcher to a Command:

	d := handlers.NewDispatcher("/admin", sessions, m).
		Register("get-config", handlers.Command{Role: models.RoleAdmin, Handle: h.GetConfig})

A Command with a Role is only run after the session token validates for
that role. The token is read from the "token" field of the body, or from
an "Authorization: Bearer" header.

# Endpoints

	POST /auth   member-login, admin-login, validate-session, logout
	POST /vote   submit-vote (default), list-candidates, get-status
	POST /admin  get-config, toggle-election, reveal-results, hide-results,
	             reset-votes, get-candidates, add-candidate, update-candidate,
	             delete-candidate, get-members, import-members,
	             delete-members, get-stats, get-results

Handlers are created with constructor functions that take narrow
interfaces, so the services in election, voting and roster, or the
db.Store itself, can be passed directly:

	vote := handlers.NewVoteHandler(ballots, store, sessions, m).Dispatcher()

# Errors

Failures are written as {"error": ..., "code": ...} with the status
derived from the apperr kind. Internal causes are logged, never returned.
*/
package handlers
