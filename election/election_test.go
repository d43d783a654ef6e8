// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election_test

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/models"
	tu "github.com/danielhkuo/ballotbox/testutil"
)

type ElectionSuite struct {
	suite.Suite
	store   *db.Store
	metrics *metrics.Metrics
	svc     *election.Service
	ctx     context.Context
}

func TestElectionSuite(t *testing.T) {
	suite.Run(t, new(ElectionSuite))
}

func (s *ElectionSuite) SetupTest() {
	s.store = tu.SetupTestStore(s.T())
	s.metrics = metrics.New()
	s.svc = election.NewService(s.store, s.metrics)
	s.ctx = context.Background()
}

func (s *ElectionSuite) TestInitialState() {
	cfg, err := s.svc.State(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.ElectionConfig{}, cfg)
}

func (s *ElectionSuite) TestOpenCloseIdempotent() {
	for range 2 {
		cfg, err := s.svc.Open(s.ctx)
		s.Require().NoError(err)
		s.True(cfg.IsOpen)
	}
	for range 2 {
		cfg, err := s.svc.Close(s.ctx)
		s.Require().NoError(err)
		s.False(cfg.IsOpen)
	}
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Transitions.WithLabelValues("open")))
}

func (s *ElectionSuite) TestToggle() {
	cfg, err := s.svc.Toggle(s.ctx, nil)
	s.Require().NoError(err)
	s.True(cfg.IsOpen)

	cfg, err = s.svc.Toggle(s.ctx, nil)
	s.Require().NoError(err)
	s.False(cfg.IsOpen)

	open := true
	for range 2 {
		cfg, err = s.svc.Toggle(s.ctx, &open)
		s.Require().NoError(err)
		s.True(cfg.IsOpen)
	}
}

func (s *ElectionSuite) TestRevealRequiresClosedElection() {
	_, err := s.svc.Open(s.ctx)
	s.Require().NoError(err)

	_, err = s.svc.RevealResults(s.ctx)
	s.ErrorIs(err, apperr.ErrElectionOpen)

	state, err := s.svc.State(s.ctx)
	s.Require().NoError(err)
	s.False(state.ResultsRevealed)

	_, err = s.svc.Close(s.ctx)
	s.Require().NoError(err)
	cfg, err := s.svc.RevealResults(s.ctx)
	s.Require().NoError(err)
	s.True(cfg.ResultsRevealed)

	// Opening again keeps results visible.
	cfg, err = s.svc.Open(s.ctx)
	s.Require().NoError(err)
	s.True(cfg.IsOpen)
	s.True(cfg.ResultsRevealed)

	cfg, err = s.svc.HideResults(s.ctx)
	s.Require().NoError(err)
	s.False(cfg.ResultsRevealed)
}

func (s *ElectionSuite) TestResultsHiddenUntilRevealed() {
	tu.AddTestCandidate(s.T(), s.store, "A")

	_, err := s.svc.Results(s.ctx)
	s.ErrorIs(err, apperr.ErrResultsHidden)

	_, err = s.svc.RevealResults(s.ctx)
	s.Require().NoError(err)
	results, err := s.svc.Results(s.ctx)
	s.Require().NoError(err)
	s.Len(results, 1)

	_, err = s.svc.HideResults(s.ctx)
	s.Require().NoError(err)
	_, err = s.svc.Results(s.ctx)
	s.ErrorIs(err, apperr.ErrResultsHidden)
}

func (s *ElectionSuite) TestResetTwiceEqualsOnce() {
	a := tu.AddTestCandidate(s.T(), s.store, "A")
	m := tu.CreateTestMember(s.T(), s.store, "1", "Ana", "s1", models.FeePaid)
	tu.CreateTestMember(s.T(), s.store, "2", "Beto", "s2", models.FeePending)
	_, err := s.svc.Open(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CommitBallot(s.ctx, m.ID, models.ValidatedBallot{
		PresidentID: a, MemberIDs: []string{a}, EthicsAccepted: true,
	}))

	s.Require().NoError(s.svc.Reset(s.ctx))
	once, err := s.svc.Stats(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Reset(s.ctx))
	twice, err := s.svc.Stats(s.ctx)
	s.Require().NoError(err)

	s.Equal(once, twice)
	s.Equal(models.Stats{Total: 2, Eligible: 1}, twice)

	votes, voted := tu.TallyInvariant(s.T(), s.store)
	s.Zero(votes)
	s.Zero(voted)
}

func (s *ElectionSuite) TestConcurrentResets() {
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.svc.Reset(s.ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.NoError(err)
	}
	cfg, err := s.svc.State(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.ElectionConfig{}, cfg)
}

func (s *ElectionSuite) TestStats() {
	a := tu.AddTestCandidate(s.T(), s.store, "A")
	m1 := tu.CreateTestMember(s.T(), s.store, "1", "Ana", "s1", models.FeePaid)
	m2 := tu.CreateTestMember(s.T(), s.store, "2", "Beto", "s2", models.FeePaid)
	tu.CreateTestMember(s.T(), s.store, "3", "Cata", "s3", models.FeePending)
	_, err := s.svc.Open(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.store.CommitBallot(s.ctx, m1.ID, models.ValidatedBallot{PresidentID: a, MemberIDs: []string{a}, EthicsAccepted: true}))
	s.Require().NoError(s.store.CommitBallot(s.ctx, m2.ID, models.ValidatedBallot{PresidentID: a, MemberIDs: []string{a}, EthicsAccepted: false}))

	st, err := s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.Stats{
		Total:          3,
		Eligible:       2,
		Voted:          2,
		EthicsAccepted: 1,
		EthicsRejected: 1,
		Config:         models.ElectionConfig{IsOpen: true},
	}, st)
}

func (s *ElectionSuite) TestStoreTimeoutIsUnavailable() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.svc.State(ctx)
	s.Equal(apperr.KindUnavailable, apperr.KindOf(err))
}

func (s *ElectionSuite) TestResetSurvivesCancelledCaller() {
	_, err := s.svc.Open(s.ctx)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.Require().NoError(s.svc.Reset(ctx))

	cfg, err := s.svc.State(s.ctx)
	s.Require().NoError(err)
	s.False(cfg.IsOpen)
}
