package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for all tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS templates (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		version     TEXT NOT NULL,
		spec        TEXT NOT NULL,
		parameters  TEXT NOT NULL DEFAULT '[]',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		state       TEXT NOT NULL DEFAULT 'PENDING',
		arguments   TEXT NOT NULL DEFAULT '{}',
		messages    TEXT NOT NULL DEFAULT '[]',
		resources   TEXT NOT NULL DEFAULT '{}',
		created_at  TEXT NOT NULL,
		started_at  TEXT,
		finished_at TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_template_id ON runs(template_id)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state)`,
}

// migrate applies all schema statements in order.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// Surface the failing statement's table for easier debugging.
			return &migrationError{stmt: firstLine(stmt), err: err}
		}
	}
	return nil
}

type migrationError struct {
	stmt string
	err  error
}

func (e *migrationError) Error() string {
	return "migrate: " + e.stmt + ": " + e.err.Error()
}

func (e *migrationError) Unwrap() error {
	return e.err
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
