// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballot box API.

# Route Registration

NewRouter builds the services over one store and returns a configured
http.ServeMux:

	mux := router.NewRouter(store, sessions, metrics.New(), cfg)

# Endpoints

	POST /auth     - login, session validation, logout
	POST /vote     - ballot submission, candidate list, voter status
	POST /admin    - committee command table
	GET  /health   - database ping, 503 when unreachable
	GET  /metrics  - Prometheus exposition
	GET  /         - banner

The three POST endpoints are wrapped with request logging, the request
timeout and the body size limit. See package handlers for the actions.
*/
package router
