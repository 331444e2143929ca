package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// memoryDSN opens a private in-memory database, used by tests.
const memoryDSN = ":memory:"

// timestampLayout is fixed-width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db             *sqlx.DB
	log            *zap.Logger
	clock          func() time.Time
	internalDomain string

	mu       gosync.Mutex
	lastTime time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the logger used to report skipped records.
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used for synced_at stamps.
func WithClock(clock func() time.Time) Option {
	return func(s *SQLiteStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithInternalDomain sets the domain ExternalSenders falls back to when
// called with an empty domain.
func WithInternalDomain(domain string) Option {
	return func(s *SQLiteStore) {
		s.internalDomain = strings.TrimPrefix(strings.TrimSpace(domain), "@")
	}
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and ensures the cache schema exists.
// Failures to open or reach the file wrap ErrStorageUnavailable.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	inMemory := dbPath == memoryDSN
	if !inMemory {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf(
				"creating db directory %s: %w: %w", dir, ErrStorageUnavailable, err,
			)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w: %w", ErrStorageUnavailable, err)
	}

	if inMemory {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db %s: %w: %w", dbPath, ErrStorageUnavailable, err)
	}

	if !inMemory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w: %w", ErrStorageUnavailable, err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting busy timeout: %w", err)
		}
	}

	s := &SQLiteStore{
		db:    db,
		log:   zap.NewNop(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Init ensures both tables and all four indexes exist. It is safe to call
// repeatedly and never removes data.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database handle for advanced queries.
func (s *SQLiteStore) DB() *sqlx.DB {
	return s.db
}

// now returns the current store time, never earlier than a value it has
// already handed out.
func (s *SQLiteStore) now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.clock().UTC()
	if t.Before(s.lastTime) {
		t = s.lastTime
	}
	s.lastTime = t
	return t
}

// formatTimestamp renders t for storage in a TEXT column.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp accepts the store's own layout plus the naive ISO-8601
// form written by older cache tools. Unparseable input yields the zero time.
func parseTimestamp(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		timestampLayout,
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
	} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// limitOrDefault returns limit, or def when limit is not positive.
func limitOrDefault(limit, def int) int {
	if limit > 0 {
		return limit
	}
	return def
}
