package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/mailcache/internal/model"
)

// syncLogRow mirrors the sync_log table for sqlx scanning.
type syncLogRow struct {
	ID            int64  `db:"id"`
	SyncedAt      string `db:"synced_at"`
	EmailsAdded   int    `db:"emails_added"`
	EmailsRemoved int    `db:"emails_removed"`
}

// LogSync appends one sync log entry stamped with the current time.
func (s *SQLiteStore) LogSync(
	ctx context.Context,
	added, removed int,
) (model.SyncLogEntry, error) {
	if added < 0 || removed < 0 {
		return model.SyncLogEntry{}, &ValidationError{
			Field:  "sync counts",
			Reason: fmt.Sprintf("must not be negative (added=%d, removed=%d)", added, removed),
		}
	}

	now := s.now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_log (synced_at, emails_added, emails_removed)
		VALUES (?, ?, ?)`,
		formatTimestamp(now), added, removed,
	)
	if err != nil {
		return model.SyncLogEntry{}, fmt.Errorf("logging sync: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.SyncLogEntry{}, fmt.Errorf("reading sync log id: %w", err)
	}

	return model.SyncLogEntry{
		ID:            id,
		SyncedAt:      now,
		EmailsAdded:   added,
		EmailsRemoved: removed,
	}, nil
}

// LastSync returns the time of the most recent sync, or nil if none has
// been logged.
func (s *SQLiteStore) LastSync(ctx context.Context) (*time.Time, error) {
	var syncedAt sql.NullString
	err := s.db.GetContext(ctx, &syncedAt,
		"SELECT synced_at FROM sync_log ORDER BY id DESC LIMIT 1",
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last sync: %w", err)
	}
	if !syncedAt.Valid {
		return nil, nil
	}

	t := parseTimestamp(syncedAt.String)
	return &t, nil
}

// SyncHistory returns up to limit sync log entries, most recent first.
func (s *SQLiteStore) SyncHistory(
	ctx context.Context,
	limit int,
) ([]model.SyncLogEntry, error) {
	var rows []syncLogRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id,
			COALESCE(synced_at, '') AS synced_at,
			COALESCE(emails_added, 0) AS emails_added,
			COALESCE(emails_removed, 0) AS emails_removed
		FROM sync_log
		ORDER BY id DESC
		LIMIT ?`,
		limitOrDefault(limit, DefaultHistoryLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying sync history: %w", err)
	}

	entries := make([]model.SyncLogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, model.SyncLogEntry{
			ID:            r.ID,
			SyncedAt:      parseTimestamp(r.SyncedAt),
			EmailsAdded:   r.EmailsAdded,
			EmailsRemoved: r.EmailsRemoved,
		})
	}
	return entries, nil
}

// Stats returns aggregate counts and the last sync time. Both distinct
// sender figures are reported: across all folders and inbox only.
func (s *SQLiteStore) Stats(ctx context.Context) (model.Stats, error) {
	var counts struct {
		Inbox        int `db:"inbox_count"`
		Total        int `db:"total_count"`
		SendersAll   int `db:"unique_senders_all"`
		SendersInbox int `db:"unique_senders_inbox"`
	}
	err := s.db.GetContext(ctx, &counts, `
		SELECT
			(SELECT COUNT(*) FROM emails WHERE folder = ?1) AS inbox_count,
			(SELECT COUNT(*) FROM emails) AS total_count,
			(SELECT COUNT(DISTINCT sender) FROM emails) AS unique_senders_all,
			(SELECT COUNT(DISTINCT sender) FROM emails WHERE folder = ?1) AS unique_senders_inbox`,
		model.FolderInbox,
	)
	if err != nil {
		return model.Stats{}, fmt.Errorf("reading cache stats: %w", err)
	}

	lastSync, err := s.LastSync(ctx)
	if err != nil {
		return model.Stats{}, err
	}

	return model.Stats{
		InboxCount:             counts.Inbox,
		TotalCount:             counts.Total,
		UniqueSendersAll:       counts.SendersAll,
		UniqueSendersInboxOnly: counts.SendersInbox,
		LastSync:               lastSync,
	}, nil
}
