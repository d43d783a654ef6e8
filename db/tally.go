// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/danielhkuo/ballotbox/models"
)

// CommitBallot records the effect of a validated ballot in one transaction:
//
//  1. flip member.has_voted false→true, guarded by the election being open
//  2. president_votes+1 on the president
//  3. member_votes+1 on every candidate of the effective member set
//
// Steps 2 and 3 touch each candidate row once, in id order.
//
// If the flip matches no row nothing else runs and the reason is returned
// (ErrElectionClosed, ErrAlreadyVoted or ErrNotFound). A candidate removed
// in the meantime aborts the transaction with ErrUnknownCandidate. No row
// links the member to the candidates.
func (s *Store) CommitBallot(ctx context.Context, memberID string, b models.ValidatedBallot) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.inTx(ctx, "commit ballot", func(tx *sql.Tx) error {
		if s.dialect == Postgres {
			// Shared lock: ballots run side by side, close and reset wait.
			var open bool
			err := tx.QueryRowContext(ctx, `
				SELECT is_open FROM election_config WHERE id = 1 FOR SHARE
			`).Scan(&open)
			if err != nil {
				return s.fail(ctx, "lock election config", err)
			}
			if !open {
				return ErrElectionClosed
			}
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE member
			SET has_voted = TRUE, ethics_accepted = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1
			  AND has_voted = FALSE
			  AND EXISTS (SELECT 1 FROM election_config WHERE id = 1 AND is_open = TRUE)
		`, memberID, b.EthicsAccepted)
		if err != nil {
			return s.fail(ctx, "mark member voted", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return s.fail(ctx, "mark member voted", err)
		}
		if n != 1 {
			return s.whyNotCommitted(ctx, tx, memberID)
		}

		for _, t := range tallyOrder(b) {
			if err := incrementTally(ctx, tx, t); err != nil {
				return s.fail(ctx, "increment tallies", err)
			}
		}
		return nil
	})
}

type tallyDelta struct {
	candidateID string
	president   int
	member      int
}

// tallyOrder folds the ballot into one delta per candidate, sorted by id.
// Every ballot locks candidate rows in the same order, so concurrent
// commits queue on a shared row instead of deadlocking.
func tallyOrder(b models.ValidatedBallot) []tallyDelta {
	byID := make(map[string]*tallyDelta, len(b.MemberIDs)+1)
	get := func(id string) *tallyDelta {
		d, ok := byID[id]
		if !ok {
			d = &tallyDelta{candidateID: id}
			byID[id] = d
		}
		return d
	}
	get(b.PresidentID).president = 1
	for _, id := range b.MemberIDs {
		get(id).member = 1
	}

	out := make([]tallyDelta, 0, len(byID))
	for _, d := range byID {
		out = append(out, *d)
	}
	slices.SortFunc(out, func(x, y tallyDelta) int { return strings.Compare(x.candidateID, y.candidateID) })
	return out
}

// incrementTally adds the delta in place, so concurrent voters never
// overwrite each other's increments.
func incrementTally(ctx context.Context, tx *sql.Tx, d tallyDelta) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE candidate
		SET president_votes = president_votes + $2, member_votes = member_votes + $3
		WHERE id = $1
	`, d.candidateID, d.president, d.member)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrUnknownCandidate
	}
	return nil
}

func (s *Store) whyNotCommitted(ctx context.Context, tx *sql.Tx, memberID string) error {
	var open bool
	if err := tx.QueryRowContext(ctx, `
		SELECT is_open FROM election_config WHERE id = 1
	`).Scan(&open); err != nil {
		return s.fail(ctx, "read election config", err)
	}
	if !open {
		return ErrElectionClosed
	}

	var voted bool
	err := tx.QueryRowContext(ctx, `
		SELECT has_voted FROM member WHERE id = $1
	`, memberID).Scan(&voted)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return s.fail(ctx, "read member", err)
	}
	if !voted {
		return fmt.Errorf("commit ballot: member %s could not be marked voted", memberID)
	}
	return ErrAlreadyVoted
}
