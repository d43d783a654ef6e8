// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/danielhkuo/ballotbox/models"
)

// ElectionConfig reads the singleton configuration row.
func (s *Store) ElectionConfig(ctx context.Context) (models.ElectionConfig, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var cfg models.ElectionConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT is_open, results_revealed FROM election_config WHERE id = 1
	`).Scan(&cfg.IsOpen, &cfg.ResultsRevealed)
	if err != nil {
		return models.ElectionConfig{}, s.fail(ctx, "read election config", err)
	}
	return cfg, nil
}

// SetElectionOpen sets is_open and returns the resulting configuration.
func (s *Store) SetElectionOpen(ctx context.Context, open bool) (models.ElectionConfig, error) {
	return s.updateConfig(ctx, "set election open", `
		UPDATE election_config
		SET is_open = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING is_open, results_revealed
	`, open)
}

// ToggleElectionOpen flips is_open in place.
func (s *Store) ToggleElectionOpen(ctx context.Context) (models.ElectionConfig, error) {
	return s.updateConfig(ctx, "toggle election", `
		UPDATE election_config
		SET is_open = NOT is_open, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING is_open, results_revealed
	`)
}

// SetResultsRevealed reveals or hides the results. Revealing only succeeds
// while voting is closed; otherwise ErrElectionOpen.
func (s *Store) SetResultsRevealed(ctx context.Context, revealed bool) (models.ElectionConfig, error) {
	if !revealed {
		return s.updateConfig(ctx, "hide results", `
			UPDATE election_config
			SET results_revealed = FALSE, updated_at = CURRENT_TIMESTAMP
			WHERE id = 1
			RETURNING is_open, results_revealed
		`)
	}

	cfg, err := s.updateConfig(ctx, "reveal results", `
		UPDATE election_config
		SET results_revealed = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1 AND is_open = FALSE
		RETURNING is_open, results_revealed
	`)
	if errors.Is(err, ErrNotFound) {
		return models.ElectionConfig{}, ErrElectionOpen
	}
	return cfg, err
}

func (s *Store) updateConfig(ctx context.Context, op, query string, args ...any) (models.ElectionConfig, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var cfg models.ElectionConfig
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&cfg.IsOpen, &cfg.ResultsRevealed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ElectionConfig{}, ErrNotFound
	}
	if err != nil {
		return models.ElectionConfig{}, s.fail(ctx, op, err)
	}
	return cfg, nil
}

// ResetElection zeroes every tally, clears every member's vote and ethics
// answer and forces the election closed with results hidden, all in one
// transaction. On Postgres the configuration row is locked first, which
// serializes resets with each other and with ballot commits.
func (s *Store) ResetElection(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	return s.inTx(ctx, "reset election", func(tx *sql.Tx) error {
		var open bool
		err := tx.QueryRowContext(ctx, `
			SELECT is_open FROM election_config WHERE id = 1`+s.lockFor("UPDATE"),
		).Scan(&open)
		if err != nil {
			return s.fail(ctx, "lock election config", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE candidate SET president_votes = 0, member_votes = 0
		`); err != nil {
			return s.fail(ctx, "reset candidate tallies", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE member
			SET has_voted = FALSE, ethics_accepted = NULL, updated_at = CURRENT_TIMESTAMP
			WHERE has_voted = TRUE OR ethics_accepted IS NOT NULL
		`); err != nil {
			return s.fail(ctx, "reset member votes", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE election_config
			SET is_open = FALSE, results_revealed = FALSE, updated_at = CURRENT_TIMESTAMP
			WHERE id = 1
		`); err != nil {
			return s.fail(ctx, "reset election config", err)
		}
		return nil
	})
}
