// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/handlers"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/roster"
	"github.com/danielhkuo/ballotbox/session"
	"github.com/danielhkuo/ballotbox/voting"
)

func NewRouter(store *db.Store, sessions *session.Manager, m *metrics.Metrics, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Services
	creds := auth.NewCredentials(store, store, cfg.BcryptCost)
	elections := election.NewService(store, m)
	ballots := voting.NewService(sessions, store, m)
	importer := roster.NewImporter(store, cfg.BcryptCost)

	// Endpoints
	authHandler := handlers.NewAuthHandler(creds, sessions, store, m)
	voteHandler := handlers.NewVoteHandler(ballots, store, sessions, m)
	adminHandler := handlers.NewAdminHandler(elections, store, importer, sessions, m)

	wrap := func(d *handlers.Dispatcher) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithTimeout(cfg.RequestTimeout, middleware.LimitBody(d.ServeHTTP)))
	}

	mux.HandleFunc("POST /auth", wrap(authHandler.Dispatcher()))
	mux.HandleFunc("POST /vote", wrap(voteHandler.Dispatcher()))
	mux.HandleFunc("POST /admin", wrap(adminHandler.Dispatcher()))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", m.Handler())

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotbox API v1"))
	})

	return mux
}
