package store

import (
	"context"
	"fmt"
)

// schemaObject is a single idempotent DDL statement.
type schemaObject struct {
	name string
	sql  string
}

// schema is the complete cache layout: two tables and four indexes.
// Every statement is "IF NOT EXISTS" so it is safe to apply on each open,
// including against a cache file created by an older tool.
var schema = []schemaObject{
	{
		name: "emails",
		sql: `
CREATE TABLE IF NOT EXISTS emails (
	id        TEXT PRIMARY KEY,
	subject   TEXT,
	sender    TEXT,
	date      TEXT,
	folder    TEXT DEFAULT 'Inbox',
	snippet   TEXT,
	synced_at TEXT
)`,
	},
	{
		name: "sync_log",
		sql: `
CREATE TABLE IF NOT EXISTS sync_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	synced_at      TEXT,
	emails_added   INTEGER,
	emails_removed INTEGER
)`,
	},
	{name: "idx_sender", sql: "CREATE INDEX IF NOT EXISTS idx_sender ON emails(sender)"},
	{name: "idx_subject", sql: "CREATE INDEX IF NOT EXISTS idx_subject ON emails(subject)"},
	{name: "idx_date", sql: "CREATE INDEX IF NOT EXISTS idx_date ON emails(date)"},
	{name: "idx_folder", sql: "CREATE INDEX IF NOT EXISTS idx_folder ON emails(folder)"},
}

// ensureSchema creates any missing table or index. Existing objects and
// their data are left untouched.
func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	for _, obj := range schema {
		if _, err := s.db.ExecContext(ctx, obj.sql); err != nil {
			return fmt.Errorf("creating %s: %w", obj.name, err)
		}
	}
	return nil
}
