// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns the schema and every query of the election service.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same script runs on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

  - member: roster, fee status, has_voted, ethics_accepted
  - candidate: profile plus president_votes and member_votes
  - user_session: opaque tokens with role and expiry (unix ms)
  - election_config: singleton row (id = 1) with is_open, results_revealed
  - admin_user: administrator credentials

There is no ballot table. A submission only leaves the candidate counters
and the member's has_voted/ethics_accepted fields behind.

# Store

	store := db.NewStore(conn, db.Postgres, 5*time.Second)

Every method runs under the store timeout. A timeout surfaces as an error
wrapping context.DeadlineExceeded. Domain facts are returned as sentinels
(ErrNotFound, ErrAlreadyVoted, ErrElectionClosed, ErrElectionOpen,
ErrResultsHidden, ErrHasVotes, ErrUnknownCandidate).

# Ballot Commit

CommitBallot is the only multi-row write on the hot path:

	BEGIN
	SELECT is_open FROM election_config WHERE id = 1 FOR SHARE   -- Postgres only
	UPDATE member SET has_voted = TRUE ... WHERE id = $1 AND has_voted = FALSE AND <open>
	UPDATE candidate SET president_votes = president_votes + 1 WHERE id = $1
	UPDATE candidate SET member_votes = member_votes + 1 WHERE id = $1   -- per member choice
	COMMIT

The conditional UPDATE is the compare-and-set; losing it aborts before any
counter moves. ResetElection takes the same row FOR UPDATE, so resets and
commits never interleave.
*/
package db
