// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/voting"
)

type BallotSubmitter interface {
	Submit(ctx context.Context, token string, b models.Ballot) error
}

type VoteStore interface {
	ElectionConfig(ctx context.Context) (models.ElectionConfig, error)
	GetMember(ctx context.Context, id string) (models.Member, error)
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
}

// VoteHandler serves POST /vote.
type VoteHandler struct {
	ballots  BallotSubmitter
	store    VoteStore
	sessions SessionValidator
	metrics  *metrics.Metrics
}

func NewVoteHandler(ballots BallotSubmitter, store VoteStore, sessions SessionValidator, m *metrics.Metrics) *VoteHandler {
	return &VoteHandler{ballots: ballots, store: store, sessions: sessions, metrics: m}
}

func (h *VoteHandler) Dispatcher() *Dispatcher {
	return NewDispatcher("/vote", h.sessions, h.metrics).
		Register("submit-vote", Command{Handle: h.SubmitVote}).
		Register("list-candidates", Command{Handle: h.ListCandidates}).
		Register("get-status", Command{Role: models.RoleMember, Handle: h.GetStatus}).
		Default("submit-vote")
}

// SubmitVote validates the session itself so that session failures are
// counted as rejected ballots.
func (h *VoteHandler) SubmitVote(ctx context.Context, req *Request) (any, error) {
	ballot, err := voting.DecodeBallot(req.Body)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidJSON, "invalid JSON")
	}
	if err := h.ballots.Submit(ctx, req.Token, ballot); err != nil {
		return nil, err
	}
	return models.SuccessResponse{Success: true, Message: "vote recorded"}, nil
}

// ListCandidates is public and never carries counters.
func (h *VoteHandler) ListCandidates(ctx context.Context, req *Request) (any, error) {
	return candidateProfiles(ctx, h.store)
}

func (h *VoteHandler) GetStatus(ctx context.Context, req *Request) (any, error) {
	cfg, err := h.store.ElectionConfig(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "failed to read election state")
	}
	m, err := h.store.GetMember(ctx, req.Session.SubjectID)
	if err != nil {
		return nil, subjectError(err)
	}
	return models.VoterStatusResponse{IsOpen: cfg.IsOpen, HasVoted: m.HasVoted}, nil
}

type candidateLister interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
}

func candidateProfiles(ctx context.Context, store candidateLister) ([]models.CandidateProfile, error) {
	candidates, err := store.ListCandidates(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "failed to list candidates")
	}
	out := make([]models.CandidateProfile, len(candidates))
	for i, c := range candidates {
		out[i] = c.Profile()
	}
	return out, nil
}
