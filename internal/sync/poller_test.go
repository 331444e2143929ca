package sync_test

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailcache/internal/model"
	"github.com/nhle/mailcache/internal/source"
	mailsync "github.com/nhle/mailcache/internal/sync"
	"github.com/nhle/mailcache/tests/testutil"
)

type fakeSource struct {
	records []model.EmailRecord
	err     error

	mu    gosync.Mutex
	calls []source.FetchOptions
}

func (f *fakeSource) Type() source.SourceType { return source.SourceTypeEmail }

func (f *fakeSource) ValidateConnection(context.Context) (string, error) {
	return "fake", f.err
}

func (f *fakeSource) FetchMessages(_ context.Context, opts source.FetchOptions) (*source.FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &source.FetchResult{Records: f.records, Total: len(f.records)}, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func sourceConfig(id string) model.SourceConfig {
	return model.SourceConfig{ID: id, Type: "email", Mailbox: "INBOX", Enabled: true}
}

func TestSyncOnceCachesAndLogs(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	src := &fakeSource{records: []model.EmailRecord{
		testutil.Email("a", "x@example.com", "Hello", "Monday, January 6, 2025 9:00 AM"),
		testutil.Email("b", "y@example.com", "World", "Tuesday, January 7, 2025 9:00 AM"),
	}}

	p := mailsync.New(s, nil, mailsync.Options{FetchLimit: 50, Lookback: 24 * time.Hour})
	p.RegisterSource(src, sourceConfig("work"))

	results := p.SyncOnce(ctx)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Fetched)
	assert.Equal(t, 2, results[0].Written)
	assert.Equal(t, 2, results[0].Entry.EmailsAdded)
	assert.Equal(t, 0, results[0].Entry.EmailsRemoved)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.InboxCount)
	require.NotNil(t, stats.LastSync)

	require.Len(t, src.calls, 1)
	assert.Equal(t, "INBOX", src.calls[0].Mailbox)
	assert.Equal(t, 50, src.calls[0].Limit)
	assert.False(t, src.calls[0].Since.IsZero())
	assert.True(t, src.calls[0].Since.Before(time.Now()))

	statuses := p.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, mailsync.SyncIdle, statuses[0].State)
	assert.Equal(t, 2, statuses[0].LastWritten)
	assert.False(t, statuses[0].LastSync.IsZero())
}

func TestSyncOnceAuthFailure(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	src := &fakeSource{err: &source.AuthError{SourceType: source.SourceTypeEmail, Message: "bad password"}}
	p := mailsync.New(s, nil, mailsync.Options{})
	p.RegisterSource(src, sourceConfig("work"))

	results := p.SyncOnce(ctx)
	require.Len(t, results, 1)
	assert.True(t, source.IsAuthError(results[0].Err))

	history, err := s.SyncHistory(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history, "failed fetch must not be logged")

	statuses := p.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, mailsync.SyncError, statuses[0].State)
	assert.Error(t, statuses[0].Error)
	assert.True(t, statuses[0].LastSync.IsZero())
}

func TestSyncOnceZeroLookbackFetchesAll(t *testing.T) {
	s := testutil.NewTestStore(t)
	src := &fakeSource{}
	p := mailsync.New(s, nil, mailsync.Options{})
	p.RegisterSource(src, sourceConfig("work"))

	p.SyncOnce(context.Background())
	require.Len(t, src.calls, 1)
	assert.True(t, src.calls[0].Since.IsZero())
}

func TestSyncOnceLogsPartialBatch(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	src := &fakeSource{records: []model.EmailRecord{
		testutil.Email("good", "x@example.com", "Kept", "January 2025"),
		testutil.Email("", "y@example.com", "Dropped", "January 2025"),
	}}
	p := mailsync.New(s, nil, mailsync.Options{})
	p.RegisterSource(src, sourceConfig("work"))

	results := p.SyncOnce(ctx)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Equal(t, 2, results[0].Fetched)
	assert.Equal(t, 1, results[0].Written)
	assert.Equal(t, 1, results[0].Entry.EmailsAdded)

	_, err := s.Get(ctx, "good")
	require.NoError(t, err)
}

func TestSyncOnceContinuesAfterSourceFailure(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	broken := &fakeSource{err: errors.New("connection refused")}
	healthy := &fakeSource{records: []model.EmailRecord{
		testutil.Email("a", "x@example.com", "Hi", "March 2025"),
	}}

	p := mailsync.New(s, nil, mailsync.Options{})
	p.RegisterSource(broken, sourceConfig("b-broken"))
	p.RegisterSource(healthy, sourceConfig("a-healthy"))

	results := p.SyncOnce(ctx)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)

	statuses := p.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "a-healthy", statuses[0].SourceID)
	assert.Equal(t, mailsync.SyncIdle, statuses[0].State)
	assert.Equal(t, "b-broken", statuses[1].SourceID)
	assert.Equal(t, mailsync.SyncError, statuses[1].State)
}

func TestRunSyncsImmediatelyAndOnTrigger(t *testing.T) {
	s := testutil.NewTestStore(t)
	src := &fakeSource{records: []model.EmailRecord{
		testutil.Email("a", "x@example.com", "Hi", "March 2025"),
	}}

	p := mailsync.New(s, nil, mailsync.Options{PollInterval: time.Hour})
	p.RegisterSource(src, sourceConfig("work"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return src.callCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	p.Trigger()
	require.Eventually(t, func() bool {
		history, err := s.SyncHistory(context.Background(), 0)
		return err == nil && len(history) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, src.callCount())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRejectsInvalidSchedule(t *testing.T) {
	s := testutil.NewTestStore(t)
	src := &fakeSource{}

	p := mailsync.New(s, nil, mailsync.Options{Schedule: "every tuesday"})
	p.RegisterSource(src, sourceConfig("work"))

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
	assert.Equal(t, 0, src.callCount())
}

func TestRunWithScheduleSyncsImmediately(t *testing.T) {
	s := testutil.NewTestStore(t)
	src := &fakeSource{}

	p := mailsync.New(s, nil, mailsync.Options{Schedule: "0 3 * * *"})
	p.RegisterSource(src, sourceConfig("work"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return src.callCount() == 1 },
		2*time.Second, 10*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestSyncStateString(t *testing.T) {
	assert.Equal(t, "idle", mailsync.SyncIdle.String())
	assert.Equal(t, "running", mailsync.SyncRunning.String())
	assert.Equal(t, "error", mailsync.SyncError.String())
}
