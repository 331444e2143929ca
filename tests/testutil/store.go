package testutil

import (
	"testing"
	"time"

	"github.com/nhle/mailcache/internal/model"
	"github.com/nhle/mailcache/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with the schema applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T, opts ...store.Option) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", opts...)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// FixedClock returns a clock that starts at start and advances by step on
// every call.
func FixedClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

// Email builds an inbox EmailRecord with the given fields.
func Email(id, sender, subject, date string) model.EmailRecord {
	return model.EmailRecord{
		ID:      id,
		Sender:  sender,
		Subject: subject,
		Date:    date,
		Folder:  model.FolderInbox,
	}
}

// IDs returns the IDs of records in order.
func IDs(records []model.EmailRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}
