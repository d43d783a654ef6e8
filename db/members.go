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

const memberColumns = `id, member_number, name, fee_status, secret_hash, has_voted, ethics_accepted`

func scanMember(row scanner) (models.Member, error) {
	var m models.Member
	var ethics sql.NullBool
	if err := row.Scan(&m.ID, &m.MemberNumber, &m.Name, &m.FeeStatus, &m.SecretHash, &m.HasVoted, &ethics); err != nil {
		return models.Member{}, err
	}
	if ethics.Valid {
		v := ethics.Bool
		m.EthicsAccepted = &v
	}
	return m, nil
}

// GetMember loads a member by id.
func (s *Store) GetMember(ctx context.Context, id string) (models.Member, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	m, err := scanMember(s.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+` FROM member WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, ErrNotFound
	}
	if err != nil {
		return models.Member{}, s.fail(ctx, "get member", err)
	}
	return m, nil
}

// GetMemberByNumber loads a member by its human-assigned number.
func (s *Store) GetMemberByNumber(ctx context.Context, memberNumber string) (models.Member, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	m, err := scanMember(s.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+` FROM member WHERE member_number = $1
	`, memberNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, ErrNotFound
	}
	if err != nil {
		return models.Member{}, s.fail(ctx, "get member by number", err)
	}
	return m, nil
}

// ListMembers returns the roster ordered by name.
func (s *Store) ListMembers(ctx context.Context) ([]models.Member, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+memberColumns+` FROM member ORDER BY name, member_number
	`)
	if err != nil {
		return nil, s.fail(ctx, "list members", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, s.fail(ctx, "scan member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list members", err)
	}
	return members, nil
}

// UpsertMember creates the member or refreshes name, fee status and hash of
// an existing one with the same number. has_voted and ethics_accepted are
// never touched. Reports whether a new row was created.
func (s *Store) UpsertMember(ctx context.Context, u models.MemberUpsert) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	newID := uuid.NewString()
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO member (id, member_number, name, fee_status, secret_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (member_number) DO UPDATE
		SET name = excluded.name,
		    fee_status = excluded.fee_status,
		    secret_hash = excluded.secret_hash,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, newID, u.MemberNumber, u.Name, u.FeeStatus, u.SecretHash).Scan(&id)
	if err != nil {
		return false, s.fail(ctx, "upsert member "+u.MemberNumber, err)
	}
	return id == newID, nil
}

// DeleteMembers removes the given members, skipping anyone who has already
// voted so the tallies keep matching the voted count. Returns the number of
// rows deleted.
func (s *Store) DeleteMembers(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM member
		WHERE has_voted = FALSE AND id IN (`+placeholders(1, len(ids))+`)
	`, stringArgs(ids)...)
	if err != nil {
		return 0, s.fail(ctx, "delete members", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail(ctx, "delete members", err)
	}
	return int(n), nil
}

// MemberStats aggregates roster counters and the ethics answers.
func (s *Store) MemberStats(ctx context.Context) (models.Stats, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var st models.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN fee_status = 'paid' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN has_voted = TRUE THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN ethics_accepted = TRUE THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN ethics_accepted = FALSE THEN 1 ELSE 0 END), 0)
		FROM member
	`).Scan(&st.Total, &st.Eligible, &st.Voted, &st.EthicsAccepted, &st.EthicsRejected)
	if err != nil {
		return models.Stats{}, s.fail(ctx, "member stats", err)
	}
	return st, nil
}

// CountVoted returns how many members have voted.
func (s *Store) CountVoted(ctx context.Context) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM member WHERE has_voted = TRUE`).Scan(&n); err != nil {
		return 0, s.fail(ctx, "count voted", err)
	}
	return n, nil
}
