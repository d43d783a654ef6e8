// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

// SessionValidator resolves bearer tokens for role-guarded commands.
type SessionValidator interface {
	Validate(ctx context.Context, token string, requiredRole models.Role) (models.Session, error)
}

// Request is what a command sees of the HTTP request.
type Request struct {
	Body    []byte
	Token   string
	Session models.Session // set when the command requires a role
	HTTP    *http.Request
}

// Decode unmarshals the body into v.
func (r *Request) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return apperr.Validation(apperr.CodeInvalidJSON, "invalid JSON")
	}
	return nil
}

// Command is one action of an endpoint. A non-empty Role makes the
// dispatcher validate the session before Handle runs.
type Command struct {
	Role   models.Role
	Handle func(ctx context.Context, req *Request) (any, error)
}

// Dispatcher routes {"action": ...} bodies to registered commands.
type Dispatcher struct {
	endpoint      string
	defaultAction string
	commands      map[string]Command
	sessions      SessionValidator
	metrics       *metrics.Metrics
}

func NewDispatcher(endpoint string, sessions SessionValidator, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		endpoint: endpoint,
		commands: make(map[string]Command),
		sessions: sessions,
		metrics:  m,
	}
}

// Register adds a command. Registering an action twice panics.
func (d *Dispatcher) Register(action string, cmd Command) *Dispatcher {
	if _, dup := d.commands[action]; dup {
		panic("handlers: duplicate action " + action)
	}
	d.commands[action] = cmd
	return d
}

// Default names the action used when the body has none.
func (d *Dispatcher) Default(action string) *Dispatcher {
	d.defaultAction = action
	return d
}

// Actions lists the registered actions.
func (d *Dispatcher) Actions() []string {
	out := make([]string, 0, len(d.commands))
	for a := range d.commands {
		out = append(out, a)
	}
	return out
}

type envelope struct {
	Action string `json:"action"`
	Token  string `json:"token"`
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			middleware.WriteError(w, r, apperr.Validation(apperr.CodeInvalidJSON, "request body too large"))
			return
		}
		middleware.WriteError(w, r, apperr.Validation(apperr.CodeInvalidJSON, "failed to read request body"))
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		middleware.WriteError(w, r, apperr.Validation(apperr.CodeInvalidJSON, "invalid JSON"))
		return
	}

	action := env.Action
	if action == "" {
		action = d.defaultAction
	}
	cmd, ok := d.commands[action]
	if !ok {
		middleware.WriteError(w, r, apperr.Validation(apperr.CodeUnknownAction, "unknown action"))
		return
	}
	defer d.metrics.ObserveRequest(d.endpoint, action, start)

	req := &Request{Body: body, Token: env.Token, HTTP: r}
	if req.Token == "" {
		req.Token = middleware.BearerToken(r)
	}

	ctx := r.Context()
	if cmd.Role != "" {
		sess, err := d.sessions.Validate(ctx, req.Token, cmd.Role)
		if err != nil {
			middleware.WriteError(w, r, err)
			return
		}
		req.Session = sess
	}

	result, err := cmd.Handle(ctx, req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}
