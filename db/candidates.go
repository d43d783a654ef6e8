// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/models"
)

const candidateColumns = `id, name, bio, photo_url, president_votes, member_votes`

func scanCandidate(row scanner) (models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.Bio, &c.PhotoURL, &c.PresidentVotes, &c.MemberVotes)
	return c, err
}

// ListCandidates returns all candidates ordered by name.
func (s *Store) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+candidateColumns+` FROM candidate ORDER BY name, id
	`)
	if err != nil {
		return nil, s.fail(ctx, "list candidates", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, s.fail(ctx, "scan candidate", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list candidates", err)
	}
	return candidates, nil
}

// GetCandidate loads one candidate with its counters.
func (s *Store) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	c, err := scanCandidate(s.db.QueryRowContext(ctx, `
		SELECT `+candidateColumns+` FROM candidate WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, s.fail(ctx, "get candidate", err)
	}
	return c, nil
}

// MissingCandidates returns the ids in ids that match no candidate.
func (s *Store) MissingCandidates(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM candidate WHERE id IN (`+placeholders(1, len(ids))+`)
	`, stringArgs(ids)...)
	if err != nil {
		return nil, s.fail(ctx, "check candidates", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, s.fail(ctx, "scan candidate id", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "check candidates", err)
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// CreateCandidate inserts a candidate with zeroed counters.
func (s *Store) CreateCandidate(ctx context.Context, c models.CandidateProfile) (models.Candidate, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	created, err := scanCandidate(s.db.QueryRowContext(ctx, `
		INSERT INTO candidate (id, name, bio, photo_url)
		VALUES ($1, $2, $3, $4)
		RETURNING `+candidateColumns,
		uuid.NewString(), c.Name, c.Bio, c.PhotoURL))
	if err != nil {
		return models.Candidate{}, s.fail(ctx, "insert candidate", err)
	}
	return created, nil
}

// UpdateCandidate sets the name and any profile field present in p. Counters
// are left alone.
func (s *Store) UpdateCandidate(ctx context.Context, p models.CandidatePatch) (models.Candidate, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	updated, err := scanCandidate(s.db.QueryRowContext(ctx, `
		UPDATE candidate
		SET name = $2, bio = COALESCE($3, bio), photo_url = COALESCE($4, photo_url)
		WHERE id = $1
		RETURNING `+candidateColumns,
		p.ID, p.Name, p.Bio, p.PhotoURL))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, s.fail(ctx, "update candidate", err)
	}
	return updated, nil
}

// DeleteCandidate removes a candidate that holds no votes. A candidate with
// votes returns ErrHasVotes; deleting it would break the tally invariant.
func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.inTx(ctx, "delete candidate", func(tx *sql.Tx) error {
		var president, member int64
		err := tx.QueryRowContext(ctx, `
			SELECT president_votes, member_votes FROM candidate WHERE id = $1`+s.lockFor("UPDATE"),
			id).Scan(&president, &member)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return s.fail(ctx, "lock candidate", err)
		}
		if president > 0 || member > 0 {
			return ErrHasVotes
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM candidate WHERE id = $1`, id); err != nil {
			return s.fail(ctx, "delete candidate", err)
		}
		return nil
	})
}

// Results returns the tallies ordered by president votes, or
// ErrResultsHidden while the results are sealed. The flag and the counters
// are read in one transaction.
func (s *Store) Results(ctx context.Context) ([]models.CandidateResult, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var results []models.CandidateResult
	err := s.inTx(ctx, "results", func(tx *sql.Tx) error {
		var revealed bool
		err := tx.QueryRowContext(ctx, `
			SELECT results_revealed FROM election_config WHERE id = 1`+s.lockFor("SHARE"),
		).Scan(&revealed)
		if err != nil {
			return s.fail(ctx, "read election config", err)
		}
		if !revealed {
			return ErrResultsHidden
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT id, name, photo_url, president_votes, member_votes
			FROM candidate
			ORDER BY president_votes DESC, member_votes DESC, name
		`)
		if err != nil {
			return s.fail(ctx, "query results", err)
		}
		defer rows.Close()

		results = []models.CandidateResult{}
		for rows.Next() {
			var r models.CandidateResult
			if err := rows.Scan(&r.ID, &r.Name, &r.PhotoURL, &r.PresidentVotes, &r.MemberVotes); err != nil {
				return s.fail(ctx, "scan result", err)
			}
			results = append(results, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
