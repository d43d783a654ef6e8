// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/models"
)

type ElectionController interface {
	State(ctx context.Context) (models.ElectionConfig, error)
	Toggle(ctx context.Context, open *bool) (models.ElectionConfig, error)
	RevealResults(ctx context.Context) (models.ElectionConfig, error)
	HideResults(ctx context.Context) (models.ElectionConfig, error)
	Reset(ctx context.Context) error
	Stats(ctx context.Context) (models.Stats, error)
	Results(ctx context.Context) ([]models.CandidateResult, error)
}

type RosterImporter interface {
	ImportBatch(ctx context.Context, rows []map[string]any) (models.ImportResult, error)
}

type AdminStore interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	CreateCandidate(ctx context.Context, c models.CandidateProfile) (models.Candidate, error)
	UpdateCandidate(ctx context.Context, p models.CandidatePatch) (models.Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error
	ListMembers(ctx context.Context) ([]models.Member, error)
	DeleteMembers(ctx context.Context, ids []string) (int, error)
}

// AdminHandler serves POST /admin. Every action needs an admin session.
type AdminHandler struct {
	election ElectionController
	store    AdminStore
	roster   RosterImporter
	sessions SessionValidator
	metrics  *metrics.Metrics
}

func NewAdminHandler(election ElectionController, store AdminStore, roster RosterImporter, sessions SessionValidator, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{election: election, store: store, roster: roster, sessions: sessions, metrics: m}
}

func (h *AdminHandler) Dispatcher() *Dispatcher {
	d := NewDispatcher("/admin", h.sessions, h.metrics)
	for action, handle := range map[string]func(context.Context, *Request) (any, error){
		"get-config":       h.GetConfig,
		"toggle-election":  h.ToggleElection,
		"reveal-results":   h.RevealResults,
		"hide-results":     h.HideResults,
		"reset-votes":      h.ResetVotes,
		"get-candidates":   h.GetCandidates,
		"add-candidate":    h.AddCandidate,
		"update-candidate": h.UpdateCandidate,
		"delete-candidate": h.DeleteCandidate,
		"get-members":      h.GetMembers,
		"import-members":   h.ImportMembers,
		"delete-members":   h.DeleteMembers,
		"get-stats":        h.GetStats,
		"get-results":      h.GetResults,
	} {
		d.Register(action, Command{Role: models.RoleAdmin, Handle: handle})
	}
	return d
}

func (h *AdminHandler) GetConfig(ctx context.Context, req *Request) (any, error) {
	return h.election.State(ctx)
}

func (h *AdminHandler) ToggleElection(ctx context.Context, req *Request) (any, error) {
	var body models.ToggleElectionRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	cfg, err := h.election.Toggle(ctx, body.IsOpen)
	if err != nil {
		return nil, err
	}
	slog.Info("election toggled", "admin_id", req.Session.SubjectID, "is_open", cfg.IsOpen)
	return models.ConfigResponse{Success: true, Config: cfg}, nil
}

func (h *AdminHandler) RevealResults(ctx context.Context, req *Request) (any, error) {
	cfg, err := h.election.RevealResults(ctx)
	if err != nil {
		return nil, err
	}
	return models.ConfigResponse{Success: true, Config: cfg}, nil
}

func (h *AdminHandler) HideResults(ctx context.Context, req *Request) (any, error) {
	cfg, err := h.election.HideResults(ctx)
	if err != nil {
		return nil, err
	}
	return models.ConfigResponse{Success: true, Config: cfg}, nil
}

func (h *AdminHandler) ResetVotes(ctx context.Context, req *Request) (any, error) {
	var body models.ResetVotesRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if !body.Confirm {
		return nil, apperr.Validation(apperr.CodeMissingFields, "reset requires \"confirm\": true")
	}
	if err := h.election.Reset(ctx); err != nil {
		return nil, err
	}
	slog.Warn("votes reset", "admin_id", req.Session.SubjectID)
	return models.SuccessResponse{Success: true}, nil
}

// GetCandidates omits the counters; tallies only leave through get-results.
func (h *AdminHandler) GetCandidates(ctx context.Context, req *Request) (any, error) {
	return candidateProfiles(ctx, h.store)
}

func (h *AdminHandler) AddCandidate(ctx context.Context, req *Request) (any, error) {
	var body models.CandidateRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	profile := candidateProfile(body)
	if profile.Name == "" {
		return nil, apperr.Validation(apperr.CodeMissingFields, "name is required")
	}

	c, err := h.store.CreateCandidate(ctx, profile)
	if err != nil {
		return nil, apperr.FromStore(err, "failed to create candidate")
	}
	slog.Info("candidate added", "candidate_id", c.ID)
	return c.Profile(), nil
}

func (h *AdminHandler) UpdateCandidate(ctx context.Context, req *Request) (any, error) {
	var body models.CandidateRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	patch := models.CandidatePatch{
		ID:       strings.TrimSpace(body.ID),
		Name:     strings.TrimSpace(body.Name),
		Bio:      trimmed(body.Bio),
		PhotoURL: trimmed(body.PhotoURL),
	}
	if patch.ID == "" || patch.Name == "" {
		return nil, apperr.Validation(apperr.CodeMissingFields, "id and name are required")
	}

	c, err := h.store.UpdateCandidate(ctx, patch)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "candidate not found")
	}
	if err != nil {
		return nil, apperr.FromStore(err, "failed to update candidate")
	}
	return c.Profile(), nil
}

func (h *AdminHandler) DeleteCandidate(ctx context.Context, req *Request) (any, error) {
	var body models.CandidateRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if body.ID == "" {
		return nil, apperr.Validation(apperr.CodeMissingFields, "id is required")
	}

	err := h.store.DeleteCandidate(ctx, body.ID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return nil, apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "candidate not found")
	case errors.Is(err, db.ErrHasVotes):
		return nil, apperr.ErrHasVotes
	case err != nil:
		return nil, apperr.FromStore(err, "failed to delete candidate")
	}
	slog.Info("candidate deleted", "candidate_id", body.ID)
	return models.SuccessResponse{Success: true}, nil
}

func (h *AdminHandler) GetMembers(ctx context.Context, req *Request) (any, error) {
	members, err := h.store.ListMembers(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "failed to list members")
	}
	return members, nil
}

func (h *AdminHandler) ImportMembers(ctx context.Context, req *Request) (any, error) {
	var body struct {
		Members json.RawMessage `json:"members"`
	}
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(body.Members, &rows); err != nil || rows == nil {
		return nil, apperr.Validation(apperr.CodeMissingFields, "members must be a list of rows")
	}

	result, err := h.roster.ImportBatch(ctx, rows)
	if err != nil {
		return nil, err
	}
	slog.Info("members imported", "admin_id", req.Session.SubjectID, "imported", result.Imported)
	return result, nil
}

func (h *AdminHandler) DeleteMembers(ctx context.Context, req *Request) (any, error) {
	var body models.DeleteMembersRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	ids := dedupe(body.MemberIDs)
	if len(ids) == 0 {
		return nil, apperr.Validation(apperr.CodeMissingFields, "member_ids must not be empty")
	}

	deleted, err := h.store.DeleteMembers(ctx, ids)
	if err != nil {
		return nil, apperr.FromStore(err, "failed to delete members")
	}
	slog.Info("members deleted", "admin_id", req.Session.SubjectID, "deleted", deleted)
	return models.DeleteMembersResponse{Success: true, Deleted: deleted, Skipped: len(ids) - deleted}, nil
}

func (h *AdminHandler) GetStats(ctx context.Context, req *Request) (any, error) {
	return h.election.Stats(ctx)
}

func (h *AdminHandler) GetResults(ctx context.Context, req *Request) (any, error) {
	return h.election.Results(ctx)
}

func candidateProfile(r models.CandidateRequest) models.CandidateProfile {
	return models.CandidateProfile{
		ID:       strings.TrimSpace(r.ID),
		Name:     strings.TrimSpace(r.Name),
		Bio:      strings.TrimSpace(deref(r.Bio)),
		PhotoURL: strings.TrimSpace(deref(r.PhotoURL)),
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// dedupe drops empty and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
