package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mailcache/internal/credential"
	"github.com/nhle/mailcache/internal/model"
	"github.com/nhle/mailcache/internal/source"
	"github.com/nhle/mailcache/internal/source/email"
	mailsync "github.com/nhle/mailcache/internal/sync"
)

func newSyncCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch recent messages from configured IMAP accounts",
		Long: `Fetch recent message metadata from every enabled source in the config
file and upsert it into the cache. With --watch, keep running and sync on
sync.poll_interval_sec (or the sync.schedule cron expression) until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			p := mailsync.New(s, a.log, pollerOptions(a.cfg.Sync))
			n, err := a.registerSources(p)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("no enabled sources in %s", a.configPath())
			}

			if watch {
				return p.Run(cmd.Context())
			}

			var failed []error
			out := cmd.OutOrStdout()
			for _, r := range p.SyncOnce(cmd.Context()) {
				if r.Err != nil && r.Entry.ID == 0 {
					fmt.Fprintf(out, "%s: failed: %v\n", r.SourceID, r.Err)
					failed = append(failed, r.Err)
					continue
				}
				fmt.Fprintf(out, "%s: fetched %d, cached %d\n", r.SourceID, r.Fetched, r.Written)
			}
			if len(failed) > 0 {
				return fmt.Errorf("sync failed: %w", errors.Join(failed...))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep syncing until interrupted")
	return cmd
}

func pollerOptions(cfg model.SyncConfig) mailsync.Options {
	return mailsync.Options{
		PollInterval: time.Duration(cfg.PollIntervalSec) * time.Second,
		Schedule:     cfg.Schedule,
		Lookback:     time.Duration(cfg.SinceDays) * 24 * time.Hour,
		FetchLimit:   cfg.FetchLimit,
	}
}

// registerSources adds an adapter for every enabled source and returns
// how many were registered.
func (a *app) registerSources(p *mailsync.Poller) (int, error) {
	n := 0
	for _, src := range a.cfg.Sources {
		if !src.Enabled {
			continue
		}
		if source.SourceType(src.Type) != source.SourceTypeEmail {
			a.log.Warn("skipping source with unsupported type",
				zap.String("source", src.ID), zap.String("type", src.Type))
			continue
		}

		adapter, err := a.newEmailAdapter(src)
		if err != nil {
			return 0, err
		}
		p.RegisterSource(adapter, src)
		n++
	}
	return n, nil
}

func (a *app) newEmailAdapter(src model.SourceConfig) (*email.Adapter, error) {
	password, err := credential.IMAPPassword(src.Username)
	if errors.Is(err, credential.ErrNotFound) {
		return nil, fmt.Errorf("no password stored for %s: run 'mailcache set-password %s' or set %s",
			src.Username, src.Username, credential.PasswordEnv)
	}
	if err != nil {
		return nil, fmt.Errorf("loading password for %s: %w", src.Username, err)
	}
	return email.NewAdapter(src, password), nil
}
