// Package cmd wires configuration, logging, the SQLite cache, and the IMAP
// poller into the mailcache command line.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mailcache/internal/logging"
	"github.com/nhle/mailcache/internal/model"
	"github.com/nhle/mailcache/internal/store"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	dbPath  string
	verbose bool

	cfg *model.AppConfig
	log *zap.Logger
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mailcache",
		Short: "Local cache of email metadata",
		Long: `mailcache keeps a local SQLite cache of email metadata (sender,
subject, date, folder, snippet) fed from IMAP, and answers search and
sender-ranking queries against it without touching the mail server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/mailcache/config.yaml)")
	flags.StringVar(&a.dbPath, "db", "", "cache database path (overrides database.path)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		newInitCmd(a),
		newStatsCmd(a),
		newHistoryCmd(a),
		newSearchCmd(a),
		newSenderCmd(a),
		newDateCmd(a),
		newRangeCmd(a),
		newTopCmd(a),
		newExternalCmd(a),
		newShowCmd(a),
		newMoveCmd(a),
		newSyncCmd(a),
		newSetPasswordCmd(a),
	)

	return root
}

// ExecuteContext runs the command line with ctx, which is cancelled on
// SIGINT or SIGTERM.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) setup() error {
	log, err := logging.New(a.verbose)
	if err != nil {
		return err
	}
	a.log = log

	cfg, err := model.LoadConfig(a.configPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	return nil
}

func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return model.DefaultConfigPath()
}

// databasePath resolves the cache file: --db, then database.path, then the
// default location.
func (a *app) databasePath() string {
	if a.dbPath != "" {
		return a.dbPath
	}
	if a.cfg != nil && a.cfg.Database.Path != "" {
		return a.cfg.Database.Path
	}
	return model.DefaultDatabasePath()
}

// openStore opens the cache, creating the file and schema on first use.
func (a *app) openStore() (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(a.databasePath(),
		store.WithLogger(a.log),
		store.WithInternalDomain(a.cfg.Database.InternalDomain),
	)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return s, nil
}
