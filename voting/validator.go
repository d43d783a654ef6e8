// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"

	"github.com/danielhkuo/ballotbox/apperr"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

// Reader is what validation needs to read from the store.
type Reader interface {
	ElectionConfig(ctx context.Context) (models.ElectionConfig, error)
	GetMember(ctx context.Context, id string) (models.Member, error)
	MissingCandidates(ctx context.Context, ids []string) ([]string, error)
}

// Validator checks a ballot for a member whose session is already valid.
type Validator struct {
	store Reader
}

func NewValidator(store Reader) *Validator {
	return &Validator{store: store}
}

// Validate runs the checks in a fixed order and stops at the first failure:
// election open, member has not voted, president set, member list present
// and short enough, ethics answered, every candidate known.
//
// The result is advisory. CommitBallot enforces the open and not-voted
// conditions again atomically.
func (v *Validator) Validate(ctx context.Context, memberID string, b models.Ballot) (models.ValidatedBallot, error) {
	cfg, err := v.store.ElectionConfig(ctx)
	if err != nil {
		return models.ValidatedBallot{}, apperr.FromStore(err, "failed to read election state")
	}
	if !cfg.IsOpen {
		return models.ValidatedBallot{}, apperr.ErrElectionClosed
	}

	member, err := v.store.GetMember(ctx, memberID)
	if errors.Is(err, db.ErrNotFound) {
		// The session outlived its member.
		return models.ValidatedBallot{}, apperr.ErrInvalidOrExpired
	}
	if err != nil {
		return models.ValidatedBallot{}, apperr.FromStore(err, "failed to load member")
	}
	if member.HasVoted {
		return models.ValidatedBallot{}, apperr.ErrAlreadyVoted
	}

	if b.PresidentID == "" {
		return models.ValidatedBallot{}, apperr.ErrMissingPresident
	}
	if b.MemberIDs == nil || len(b.MemberIDs) > models.MaxMemberChoices {
		return models.ValidatedBallot{}, apperr.ErrTooManyMembers
	}
	if b.EthicsAccepted == nil {
		return models.ValidatedBallot{}, apperr.ErrMissingEthicsAnswer
	}

	effective := EffectiveMembers(b.PresidentID, b.MemberIDs)
	missing, err := v.store.MissingCandidates(ctx, effective)
	if err != nil {
		return models.ValidatedBallot{}, apperr.FromStore(err, "failed to check candidates")
	}
	if len(missing) > 0 {
		return models.ValidatedBallot{}, apperr.ErrUnknownCandidate
	}

	return models.ValidatedBallot{
		PresidentID:    b.PresidentID,
		MemberIDs:      effective,
		EthicsAccepted: *b.EthicsAccepted,
	}, nil
}
