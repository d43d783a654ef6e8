// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL driver and the locking clauses it supports.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Sentinel errors for storage facts. Services translate them into apperr
// values.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyVoted     = errors.New("member already voted")
	ErrElectionClosed   = errors.New("election closed")
	ErrElectionOpen     = errors.New("election open")
	ErrResultsHidden    = errors.New("results hidden")
	ErrHasVotes         = errors.New("candidate has votes")
	ErrUnknownCandidate = errors.New("unknown candidate")
)

// ParseDialect accepts the DATABASE_TYPE values.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database type %q", s)
}

// Open connects to the database for dialect. SQLite gets a single
// connection and immediate transactions so writers never interleave.
func Open(dialect Dialect, url string) (*sql.DB, error) {
	switch dialect {
	case Postgres:
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return conn, nil
	case SQLite:
		conn, err := sql.Open("sqlite", SQLiteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
		return conn, nil
	}
	return nil, fmt.Errorf("unsupported dialect %q", dialect)
}

// SQLiteDSN adds the pragmas the store relies on unless url already sets them.
func SQLiteDSN(url string) string {
	params := []string{}
	if !strings.Contains(url, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(url, "_txlock") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(params, "&")
}

// Store holds every query the service runs. Each call is bounded by timeout.
type Store struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
}

func NewStore(conn *sql.DB, dialect Dialect, timeout time.Duration) *Store {
	return &Store{db: conn, dialect: dialect, timeout: timeout}
}

func (s *Store) DB() *sql.DB { return s.db }

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return s.fail(ctx, "ping", err)
	}
	return nil
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// fail wraps err with op, preferring the context error so callers can tell
// a timeout from a query failure.
func (s *Store) fail(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// inTx runs fn in a transaction and commits when fn returns nil.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail(ctx, op+": begin", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return s.fail(ctx, op+": commit", err)
	}
	return nil
}

// lockFor returns the row-locking suffix for mode ("SHARE" or "UPDATE").
// SQLite transactions are already exclusive.
func (s *Store) lockFor(mode string) string {
	if s.dialect == Postgres {
		return " FOR " + mode
	}
	return ""
}

// placeholders renders n positional parameters starting at $start.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

type scanner interface {
	Scan(dest ...any) error
}
