// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/models"
)

// Store is the slice of db.Store the election lifecycle needs.
type Store interface {
	ElectionConfig(ctx context.Context) (models.ElectionConfig, error)
	SetElectionOpen(ctx context.Context, open bool) (models.ElectionConfig, error)
	ToggleElectionOpen(ctx context.Context) (models.ElectionConfig, error)
	SetResultsRevealed(ctx context.Context, revealed bool) (models.ElectionConfig, error)
	ResetElection(ctx context.Context) error
	MemberStats(ctx context.Context) (models.Stats, error)
	Results(ctx context.Context) ([]models.CandidateResult, error)
}

// Service drives the election lifecycle. All state lives in the store.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	resets  singleflight.Group
}

func NewService(store Store, m *metrics.Metrics) *Service {
	return &Service{store: store, metrics: m}
}

// State returns the current {is_open, results_revealed} pair.
func (s *Service) State(ctx context.Context) (models.ElectionConfig, error) {
	cfg, err := s.store.ElectionConfig(ctx)
	if err != nil {
		return models.ElectionConfig{}, apperr.FromStore(err, "failed to read election state")
	}
	return cfg, nil
}

func (s *Service) Open(ctx context.Context) (models.ElectionConfig, error) {
	return s.setOpen(ctx, true)
}

func (s *Service) Close(ctx context.Context) (models.ElectionConfig, error) {
	return s.setOpen(ctx, false)
}

// Toggle sets is_open to *open, or flips it when open is nil.
func (s *Service) Toggle(ctx context.Context, open *bool) (models.ElectionConfig, error) {
	if open != nil {
		return s.setOpen(ctx, *open)
	}

	cfg, err := s.store.ToggleElectionOpen(ctx)
	if err != nil {
		return models.ElectionConfig{}, apperr.FromStore(err, "failed to toggle election")
	}
	s.recordOpen(cfg.IsOpen)
	return cfg, nil
}

func (s *Service) setOpen(ctx context.Context, open bool) (models.ElectionConfig, error) {
	cfg, err := s.store.SetElectionOpen(ctx, open)
	if err != nil {
		return models.ElectionConfig{}, apperr.FromStore(err, "failed to update election")
	}
	s.recordOpen(cfg.IsOpen)
	return cfg, nil
}

func (s *Service) recordOpen(open bool) {
	transition := "close"
	if open {
		transition = "open"
	}
	s.metrics.IncTransition(transition)
	slog.Info("election state changed", "is_open", open)
}

// RevealResults publishes the tallies. Refused with ErrElectionOpen while
// voting is open.
func (s *Service) RevealResults(ctx context.Context) (models.ElectionConfig, error) {
	cfg, err := s.store.SetResultsRevealed(ctx, true)
	if errors.Is(err, db.ErrElectionOpen) {
		return models.ElectionConfig{}, apperr.ErrElectionOpen
	}
	if err != nil {
		return models.ElectionConfig{}, apperr.FromStore(err, "failed to reveal results")
	}
	s.metrics.IncTransition("reveal")
	slog.Info("results revealed")
	return cfg, nil
}

func (s *Service) HideResults(ctx context.Context) (models.ElectionConfig, error) {
	cfg, err := s.store.SetResultsRevealed(ctx, false)
	if err != nil {
		return models.ElectionConfig{}, apperr.FromStore(err, "failed to hide results")
	}
	s.metrics.IncTransition("hide")
	slog.Info("results hidden")
	return cfg, nil
}

// Reset zeroes every tally and vote flag and leaves the election closed
// with results hidden. Concurrent calls in this process share one run,
// which outlives the caller that started it; the store timeout bounds it.
func (s *Service) Reset(ctx context.Context) error {
	shared := context.WithoutCancel(ctx)
	_, err, joined := s.resets.Do("reset", func() (any, error) {
		return nil, s.store.ResetElection(shared)
	})
	if err != nil {
		return apperr.FromStore(err, "failed to reset election")
	}
	if !joined {
		s.metrics.IncTransition("reset")
	}
	slog.Warn("election reset", "shared", joined)
	return nil
}

// Stats aggregates roster counters with the current state.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	st, err := s.store.MemberStats(ctx)
	if err != nil {
		return models.Stats{}, apperr.FromStore(err, "failed to load stats")
	}
	cfg, err := s.State(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	st.Config = cfg
	return st, nil
}

// Results returns the ordered tallies, or ErrResultsHidden while sealed.
func (s *Service) Results(ctx context.Context) ([]models.CandidateResult, error) {
	results, err := s.store.Results(ctx)
	if errors.Is(err, db.ErrResultsHidden) {
		return nil, apperr.ErrResultsHidden
	}
	if err != nil {
		return nil, apperr.FromStore(err, "failed to load results")
	}
	return results, nil
}
