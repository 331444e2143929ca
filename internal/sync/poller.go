package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nhle/mailcache/internal/model"
	"github.com/nhle/mailcache/internal/source"
	"github.com/nhle/mailcache/internal/store"
)

// SyncState represents the current state of a source sync operation.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncRunning:
		return "running"
	case SyncError:
		return "error"
	default:
		return fmt.Sprintf("SyncState(%d)", int(s))
	}
}

// SyncStatus holds the sync state for a single source.
type SyncStatus struct {
	SourceID    string
	State       SyncState
	LastSync    time.Time
	LastWritten int
	Error       error
}

// Result describes one source's part of a sync pass.
type Result struct {
	SourceID string
	Fetched  int
	Written  int

	// Entry is the sync log row appended for this batch. It is zero when
	// the fetch failed and nothing was logged.
	Entry model.SyncLogEntry

	// Err is the fetch, upsert, or log failure, if any. Upsert errors for
	// individual records do not prevent the rest of the batch from landing.
	Err error
}

// Options controls polling cadence and fetch size.
type Options struct {
	// PollInterval is the delay between passes. Ignored when Schedule is set.
	PollInterval time.Duration

	// Schedule is a five-field cron expression.
	Schedule string

	// Lookback limits each fetch to messages newer than now minus Lookback.
	// Zero fetches regardless of age.
	Lookback time.Duration

	// FetchLimit caps the messages fetched per source per pass.
	FetchLimit int
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// defaultPollInterval applies when neither an interval nor a schedule is set.
const defaultPollInterval = time.Duration(model.DefaultPollIntervalSec) * time.Second

// sourceEntry holds a registered source and its configuration.
type sourceEntry struct {
	src source.Source
	cfg model.SourceConfig
}

// Poller feeds the cache from registered sources: each pass fetches from
// every source, upserts what it got, and appends a sync log entry.
type Poller struct {
	store   store.Store
	log     *zap.Logger
	opts    Options
	now     func() time.Time
	sources []sourceEntry

	statuses  map[string]*SyncStatus
	triggerCh chan struct{}
	mu        gosync.Mutex
	passMu    gosync.Mutex
}

// New creates a new Poller writing to s.
func New(s store.Store, log *zap.Logger, opts Options) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		store:     s,
		log:       log.Named("poller"),
		opts:      opts,
		now:       time.Now,
		statuses:  make(map[string]*SyncStatus),
		triggerCh: make(chan struct{}, 1),
	}
}

// RegisterSource adds a source adapter and its configuration to the poller.
func (p *Poller) RegisterSource(src source.Source, cfg model.SourceConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sources = append(p.sources, sourceEntry{src: src, cfg: cfg})
	p.statuses[cfg.ID] = &SyncStatus{
		SourceID: cfg.ID,
		State:    SyncIdle,
	}
}

// Run performs an immediate pass and then one pass per interval (or per
// cron schedule) until ctx is cancelled. It returns an error only if the
// schedule is invalid.
func (p *Poller) Run(ctx context.Context) error {
	var tick <-chan time.Time

	if p.opts.Schedule != "" {
		c := cron.New(
			cron.WithParser(cron.NewParser(
				cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow,
			)),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		)
		if _, err := c.AddFunc(p.opts.Schedule, func() { p.SyncOnce(ctx) }); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", p.opts.Schedule, err)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		p.log.Info("sync scheduled", zap.String("schedule", p.opts.Schedule))
	} else {
		interval := p.opts.PollInterval
		if interval <= 0 {
			interval = defaultPollInterval
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
		p.log.Info("sync polling", zap.Duration("interval", interval))
	}

	p.SyncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			p.SyncOnce(ctx)
		case <-p.triggerCh:
			p.SyncOnce(ctx)
		}
	}
}

// Trigger asks a running Run loop for an immediate pass. It never blocks;
// a trigger already pending absorbs this one.
func (p *Poller) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// SyncOnce runs one pass over every registered source. Passes never
// overlap; a second caller waits for the first to finish.
func (p *Poller) SyncOnce(ctx context.Context) []Result {
	p.passMu.Lock()
	defer p.passMu.Unlock()

	p.mu.Lock()
	sources := make([]sourceEntry, len(p.sources))
	copy(sources, p.sources)
	p.mu.Unlock()

	results := make([]Result, 0, len(sources))
	for _, entry := range sources {
		if ctx.Err() != nil {
			break
		}
		results = append(results, p.syncSource(ctx, entry))
	}
	return results
}

// syncSource fetches from one source, upserts the records, and logs the
// batch.
func (p *Poller) syncSource(ctx context.Context, entry sourceEntry) Result {
	id := entry.cfg.ID
	log := p.log.With(zap.String("source", id))
	res := Result{SourceID: id}

	p.setStatus(id, SyncRunning, 0, nil)

	opts := source.FetchOptions{
		Mailbox: entry.cfg.Mailbox,
		Limit:   p.opts.FetchLimit,
	}
	if p.opts.Lookback > 0 {
		opts.Since = p.now().Add(-p.opts.Lookback)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	fetched, err := entry.src.FetchMessages(fetchCtx, opts)
	cancel()
	if err != nil {
		if source.IsAuthError(err) {
			log.Error("authentication failed; update the stored password", zap.Error(err))
		} else {
			log.Warn("fetch failed", zap.Error(err))
		}
		res.Err = err
		p.setStatus(id, SyncError, 0, err)
		return res
	}
	res.Fetched = len(fetched.Records)

	written, upsertErr := p.store.Upsert(ctx, fetched.Records)
	res.Written = written
	if upsertErr != nil {
		log.Warn("some records were not cached",
			zap.Int("skipped", res.Fetched-written), zap.Error(upsertErr))
		if errors.Is(upsertErr, store.ErrStorageUnavailable) {
			res.Err = upsertErr
			p.setStatus(id, SyncError, written, upsertErr)
			return res
		}
	}

	logEntry, err := p.store.LogSync(ctx, written, 0)
	if err != nil {
		res.Err = fmt.Errorf("logging sync for %s: %w", id, err)
		p.setStatus(id, SyncError, written, res.Err)
		return res
	}
	res.Entry = logEntry
	res.Err = upsertErr

	log.Info("sync complete",
		zap.Int("fetched", res.Fetched),
		zap.Int("written", written),
		zap.Int("server_total", fetched.Total))

	p.setStatus(id, SyncIdle, written, nil)
	return res
}

// Statuses returns the current sync status of all registered sources,
// ordered by source ID.
func (p *Poller) Statuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]SyncStatus, 0, len(p.statuses))
	for _, s := range p.statuses {
		statuses = append(statuses, *s)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].SourceID < statuses[j].SourceID
	})
	return statuses
}

// setStatus updates the sync status for a source.
func (p *Poller) setStatus(id string, state SyncState, written int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[id]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == SyncIdle && err == nil {
		status.LastSync = p.now()
		status.LastWritten = written
	}
}
