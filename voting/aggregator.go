// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/models"
)

type Committer interface {
	CommitBallot(ctx context.Context, memberID string, b models.ValidatedBallot) error
}

// Aggregator applies validated ballots to the tallies.
type Aggregator struct {
	store   Committer
	metrics *metrics.Metrics
}

func NewAggregator(store Committer, m *metrics.Metrics) *Aggregator {
	return &Aggregator{store: store, metrics: m}
}

// Commit records b for memberID or changes nothing at all. It is never
// retried here; a failed commit leaves the member free to submit again.
func (a *Aggregator) Commit(ctx context.Context, memberID string, b models.ValidatedBallot) error {
	err := a.store.CommitBallot(ctx, memberID, b)
	if err == nil {
		a.metrics.IncBallotCommitted()
		// Only the member id: choices are never logged.
		slog.Info("ballot recorded", "member_id", memberID)
		return nil
	}

	appErr := translateCommitError(err)
	a.metrics.IncBallotRejected(string(apperr.CodeOf(appErr)))
	return appErr
}

func translateCommitError(err error) error {
	switch {
	case errors.Is(err, db.ErrAlreadyVoted):
		return apperr.ErrAlreadyVoted
	case errors.Is(err, db.ErrElectionClosed):
		return apperr.ErrElectionClosed
	case errors.Is(err, db.ErrUnknownCandidate):
		return apperr.ErrUnknownCandidate
	case errors.Is(err, db.ErrNotFound):
		return apperr.ErrInvalidOrExpired
	}
	return apperr.FromStore(err, "failed to record ballot")
}
