// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/models"
)

type Store interface {
	Reader
	Committer
}

// SessionValidator resolves a bearer token to its session.
type SessionValidator interface {
	Validate(ctx context.Context, token string, requiredRole models.Role) (models.Session, error)
}

// Service is the ballot submission path: session, validation, commit.
type Service struct {
	sessions   SessionValidator
	validator  *Validator
	aggregator *Aggregator
	metrics    *metrics.Metrics
}

func NewService(sessions SessionValidator, store Store, m *metrics.Metrics) *Service {
	return &Service{
		sessions:   sessions,
		validator:  NewValidator(store),
		aggregator: NewAggregator(store, m),
		metrics:    m,
	}
}

// Submit validates and records a ballot for the member behind token.
func (s *Service) Submit(ctx context.Context, token string, b models.Ballot) error {
	sess, err := s.sessions.Validate(ctx, token, models.RoleMember)
	if err != nil {
		s.reject(err)
		return err
	}

	validated, err := s.validator.Validate(ctx, sess.SubjectID, b)
	if err != nil {
		s.reject(err)
		return err
	}

	return s.aggregator.Commit(ctx, sess.SubjectID, validated)
}

func (s *Service) reject(err error) {
	s.metrics.IncBallotRejected(string(apperr.CodeOf(err)))
}
