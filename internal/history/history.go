// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps a local log of authentication events in SQLite:
// logins (and how they failed), logouts, inactivity expirations, and
// server-side revocations. The log is device-local and append-only.
package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// EVENT KINDS
// =============================================================================

// Well-known event kinds. Free-form kinds are accepted; these are the ones
// the client itself emits.
const (
	KindLoginOK      = "login_ok"
	KindLoginFail    = "login_fail"
	KindLogout       = "logout"
	KindExpired      = "expired"
	KindRevoked      = "revoked"
	KindResetRequest = "reset_request"
	KindResetConfirm = "reset_confirm"
)

// Event is one recorded authentication event.
type Event struct {
	ID     int64
	Kind   string
	Email  string
	Detail string
	At     time.Time
}

// =============================================================================
// LOG
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS auth_events (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    kind   TEXT NOT NULL,
    email  TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_auth_events_at ON auth_events(at);
CREATE INDEX IF NOT EXISTS idx_auth_events_kind ON auth_events(kind);
`

// Log is a SQLite-backed auth event log. It satisfies the client's
// Recorder interface.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the event log at path.
func Open(path string) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the log.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends an event. Best-effort: failures are swallowed so that a
// broken local log never blocks an auth operation.
func (l *Log) Record(kind, email, detail string) {
	_, err := l.db.Exec(
		"INSERT INTO auth_events (kind, email, detail, at) VALUES (?, ?, ?, ?)",
		kind, email, detail, time.Now().Unix(),
	)
	if err != nil {
		// Recording is advisory only.
		log.Printf("HISTORY | RECORD_FAILED | kind=%s err=%v", kind, err)
	}
}

// Recent returns the newest events, most recent first, up to limit.
func (l *Log) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(
		"SELECT id, kind, email, detail, at FROM auth_events ORDER BY at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ByKind returns the newest events of one kind, most recent first.
func (l *Log) ByKind(kind string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(
		"SELECT id, kind, email, detail, at FROM auth_events WHERE kind = ? ORDER BY at DESC, id DESC LIMIT ?",
		kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Prune deletes events older than the cutoff and returns how many went.
func (l *Log) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	res, err := l.db.Exec("DELETE FROM auth_events WHERE at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var at int64
		if err := rows.Scan(&e.ID, &e.Kind, &e.Email, &e.Detail, &at); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.At = time.Unix(at, 0)
		events = append(events, e)
	}
	return events, rows.Err()
}
