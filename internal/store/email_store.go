package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nhle/mailcache/internal/model"
)

// emailColumns selects an emails row with NULLs flattened, so rows written
// by older tools (which left snippet unset) scan cleanly.
const emailColumns = `id,
	COALESCE(subject, '') AS subject,
	COALESCE(sender, '') AS sender,
	COALESCE(date, '') AS date,
	COALESCE(folder, '') AS folder,
	COALESCE(snippet, '') AS snippet,
	COALESCE(synced_at, '') AS synced_at`

// emailRow mirrors the emails table for sqlx scanning.
type emailRow struct {
	ID       string `db:"id"`
	Subject  string `db:"subject"`
	Sender   string `db:"sender"`
	Date     string `db:"date"`
	Folder   string `db:"folder"`
	Snippet  string `db:"snippet"`
	SyncedAt string `db:"synced_at"`
}

func (r emailRow) toModel() model.EmailRecord {
	return model.EmailRecord{
		ID:       r.ID,
		Subject:  r.Subject,
		Sender:   r.Sender,
		Date:     r.Date,
		Folder:   r.Folder,
		Snippet:  r.Snippet,
		SyncedAt: parseTimestamp(r.SyncedAt),
	}
}

// Upsert inserts or replaces each record keyed by ID and returns the number
// written. Every record in the call is stamped with the same synced_at.
//
// Rows are committed one at a time: a record that fails validation or that
// the database rejects is logged and skipped, and the rest of the batch
// still lands. The returned error joins the per-record failures.
func (s *SQLiteStore) Upsert(
	ctx context.Context,
	records []model.EmailRecord,
) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	const query = `
		INSERT OR REPLACE INTO emails (
			id, subject, sender, date, folder, snippet, synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	stmt, err := s.db.PreparexContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert statement: %w: %w", ErrStorageUnavailable, err)
	}
	defer stmt.Close()

	syncedAt := formatTimestamp(s.now())

	var (
		written int
		errs    []error
	)
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if err := validateRecord(r); err != nil {
			s.log.Warn("skipping invalid email record",
				zap.String("id", r.ID), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		folder := r.Folder
		if strings.TrimSpace(folder) == "" {
			folder = model.FolderInbox
		}

		_, err := stmt.ExecContext(ctx,
			r.ID, r.Subject, r.Sender, r.Date, folder, r.Snippet, syncedAt,
		)
		if err != nil {
			err = fmt.Errorf("upserting email %s: %w", r.ID, err)
			s.log.Warn("skipping email record", zap.String("id", r.ID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		written++
	}

	s.log.Debug("upserted email records",
		zap.Int("written", written), zap.Int("skipped", len(records)-written))

	return written, errors.Join(errs...)
}

// validateRecord rejects records that cannot be keyed or stored as text.
func validateRecord(r model.EmailRecord) error {
	if strings.TrimSpace(r.ID) == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	fields := []struct {
		name  string
		value string
	}{
		{"id", r.ID},
		{"subject", r.Subject},
		{"sender", r.Sender},
		{"date", r.Date},
		{"folder", r.Folder},
		{"snippet", r.Snippet},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return &ValidationError{ID: r.ID, Field: f.name, Reason: "not valid UTF-8"}
		}
		if strings.ContainsRune(f.value, 0) {
			return &ValidationError{ID: r.ID, Field: f.name, Reason: "contains NUL byte"}
		}
	}
	return nil
}

// UpdateFolder moves a single email to folder. An unknown id is a no-op.
func (s *SQLiteStore) UpdateFolder(ctx context.Context, id, folder string) error {
	if strings.TrimSpace(folder) == "" {
		return &ValidationError{ID: id, Field: "folder", Reason: "must not be empty"}
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE emails SET folder = ? WHERE id = ?", folder, id,
	)
	if err != nil {
		return fmt.Errorf("updating folder for email %s: %w", id, err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		s.log.Debug("folder update for unknown email", zap.String("id", id))
	}
	return nil
}

// Archive marks an email as no longer in the inbox.
func (s *SQLiteStore) Archive(ctx context.Context, id string) error {
	return s.UpdateFolder(ctx, id, model.FolderArchived)
}

// Get retrieves a single email by ID, in any folder.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.EmailRecord, error) {
	var row emailRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+emailColumns+" FROM emails WHERE id = ?", id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting email %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting email %s: %w", id, err)
	}

	rec := row.toModel()
	return &rec, nil
}

// Search finds inbox emails whose sender, subject, or snippet contains
// opts.Term, newest first by date text.
func (s *SQLiteStore) Search(
	ctx context.Context,
	opts SearchOptions,
) ([]model.EmailRecord, error) {
	pattern := "%" + opts.Term + "%"

	var match string
	var args []interface{}
	switch opts.Field {
	case FieldAny:
		match = "(sender LIKE ? OR subject LIKE ? OR snippet LIKE ?)"
		args = append(args, pattern, pattern, pattern)
	case FieldSender:
		match = "sender LIKE ?"
		args = append(args, pattern)
	case FieldSubject:
		match = "subject LIKE ?"
		args = append(args, pattern)
	default:
		return nil, fmt.Errorf("unknown search field %q", opts.Field)
	}

	return s.queryInbox(ctx, []string{match}, args, limitOrDefault(opts.Limit, DefaultSearchLimit))
}

// SearchBySender finds inbox emails whose sender contains pattern.
// A non-positive limit returns every match.
func (s *SQLiteStore) SearchBySender(
	ctx context.Context,
	pattern string,
	limit int,
) ([]model.EmailRecord, error) {
	return s.queryInbox(ctx,
		[]string{"sender LIKE ?"}, []interface{}{"%" + pattern + "%"}, limit,
	)
}

// SearchByDateToken matches the display date text against month, and
// year when given (e.g., "October" or "October" + "2025"). The date column
// is free-form, so this is a substring search rather than a calendar query.
func (s *SQLiteStore) SearchByDateToken(
	ctx context.Context,
	month, year string,
	limit int,
) ([]model.EmailRecord, error) {
	pattern := "%" + month + "%"
	if year != "" {
		pattern += year + "%"
	}
	return s.queryInbox(ctx,
		[]string{"date LIKE ?"}, []interface{}{pattern},
		limitOrDefault(limit, DefaultDateLimit),
	)
}

// SearchByDateRange matches inbox emails whose date text contains any month
// name between startMonth and endMonth inclusive. Arguments given in reverse
// order are swapped. An unknown month name yields an empty result and an
// *InvalidRangeError.
func (s *SQLiteStore) SearchByDateRange(
	ctx context.Context,
	startMonth, endMonth string,
	limit int,
) ([]model.EmailRecord, error) {
	names, err := monthRange(startMonth, endMonth)
	if err != nil {
		return []model.EmailRecord{}, err
	}

	conditions := make([]string, 0, len(names))
	args := make([]interface{}, 0, len(names))
	for _, name := range names {
		conditions = append(conditions, "date LIKE ?")
		args = append(args, "%"+name+"%")
	}

	return s.queryInbox(ctx,
		[]string{"(" + strings.Join(conditions, " OR ") + ")"}, args,
		limitOrDefault(limit, DefaultRangeLimit),
	)
}

// queryInbox runs a SELECT over inbox emails with the given extra
// conditions, ordered newest first. A non-positive limit means no limit.
func (s *SQLiteStore) queryInbox(
	ctx context.Context,
	conditions []string,
	args []interface{},
	limit int,
) ([]model.EmailRecord, error) {
	conditions = append(conditions, "folder = ?")
	args = append(args, model.FolderInbox)

	query := "SELECT " + emailColumns + " FROM emails WHERE " +
		strings.Join(conditions, " AND ") +
		" ORDER BY date DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []emailRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying emails: %w", err)
	}

	records := make([]model.EmailRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toModel())
	}
	return records, nil
}
