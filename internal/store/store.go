package store

import (
	"context"
	"time"

	"github.com/nhle/mailcache/internal/model"
)

// SearchField selects which columns a keyword search matches against.
type SearchField string

const (
	// FieldAny matches sender, subject, or snippet.
	FieldAny     SearchField = ""
	FieldSender  SearchField = "sender"
	FieldSubject SearchField = "subject"
)

// Default result limits, one per query family.
const (
	DefaultSearchLimit     = 50
	DefaultSenderLimit     = 100
	DefaultDateLimit       = 100
	DefaultRangeLimit      = 200
	DefaultTopSendersLimit = 20
	DefaultExternalLimit   = 50
	DefaultHistoryLimit    = 20
)

// SearchOptions controls a keyword search. Term is wrapped as %Term%
// and matched with LIKE, so LIKE wildcards in Term are honored.
type SearchOptions struct {
	Term  string
	Field SearchField
	Limit int
}

// Store defines the persistence interface for cached email metadata and
// the sync log. Every search and ranking is scoped to the Inbox folder.
type Store interface {
	Init(ctx context.Context) error

	// === Emails ===

	Upsert(ctx context.Context, records []model.EmailRecord) (int, error)
	UpdateFolder(ctx context.Context, id, folder string) error
	Archive(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.EmailRecord, error)

	// === Queries ===

	Search(ctx context.Context, opts SearchOptions) ([]model.EmailRecord, error)
	SearchBySender(ctx context.Context, pattern string, limit int) ([]model.EmailRecord, error)
	SearchByDateToken(ctx context.Context, month, year string, limit int) ([]model.EmailRecord, error)
	SearchByDateRange(ctx context.Context, startMonth, endMonth string, limit int) ([]model.EmailRecord, error)
	SenderCounts(ctx context.Context, limit int) ([]model.SenderCount, error)
	ExternalSenders(ctx context.Context, internalDomain string, limit int) ([]model.SenderCount, error)
	Stats(ctx context.Context) (model.Stats, error)

	// === Sync log ===

	LogSync(ctx context.Context, added, removed int) (model.SyncLogEntry, error)
	LastSync(ctx context.Context) (*time.Time, error)
	SyncHistory(ctx context.Context, limit int) ([]model.SyncLogEntry, error)

	Close() error
}
