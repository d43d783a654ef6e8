// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The same script runs on PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Members (roster)
CREATE TABLE IF NOT EXISTS member (
    id TEXT PRIMARY KEY,
    member_number TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    fee_status TEXT NOT NULL DEFAULT 'pending' CHECK (fee_status IN ('paid', 'pending')),
    secret_hash TEXT NOT NULL,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    ethics_accepted BOOLEAN,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_member_name ON member(name);

-- Candidates with their anonymous tallies
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    bio TEXT NOT NULL DEFAULT '',
    photo_url TEXT NOT NULL DEFAULT '',
    president_votes BIGINT NOT NULL DEFAULT 0 CHECK (president_votes >= 0),
    member_votes BIGINT NOT NULL DEFAULT 0 CHECK (member_votes >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candidate_name ON candidate(name);

-- Sessions (timestamps in unix milliseconds)
CREATE TABLE IF NOT EXISTS user_session (
    token TEXT PRIMARY KEY,
    role TEXT NOT NULL CHECK (role IN ('member', 'admin')),
    subject_id TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    expires_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_user_session_expires_at ON user_session(expires_at);

-- Election configuration (singleton row)
CREATE TABLE IF NOT EXISTS election_config (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    is_open BOOLEAN NOT NULL DEFAULT FALSE,
    results_revealed BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO election_config (id) VALUES (1) ON CONFLICT (id) DO NOTHING;

-- Administrators
CREATE TABLE IF NOT EXISTS admin_user (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
