// Package repository implements MySQL persistence for advertisers, agenda
// events and waitlist entries.  The sentinel values below let the service
// layer tell failure scenarios apart; ErrConflict in particular signals that
// a conditional update matched no row because another writer changed the
// entry first.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrConflict is returned when a compare-and-set update affected no rows:
// the row was no longer in the expected state.
var ErrConflict = errors.New("conflict")

// ErrAdvertiserNotFound indicates that an advertiser was not located in the DB.
var ErrAdvertiserNotFound = errors.New("advertiser not found")

// ErrEventNotFound indicates that an agenda event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// ErrEntryNotFound indicates that a waitlist entry was not located in the DB.
var ErrEntryNotFound = errors.New("waitlist entry not found")

// querier is satisfied by both *sql.DB and *sql.Tx so inserts can run
// standalone or inside a caller's transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
