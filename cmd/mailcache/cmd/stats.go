package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}

			lastSync := "never"
			if stats.LastSync != nil {
				lastSync = formatTime(*stats.LastSync)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", a.databasePath())
			fmt.Fprintf(out, "  Inbox emails:   %d\n", stats.InboxCount)
			fmt.Fprintf(out, "  Total emails:   %d\n", stats.TotalCount)
			fmt.Fprintf(out, "  Unique senders: %d (%d in inbox)\n",
				stats.UniqueSenderCount(), stats.UniqueSendersInboxOnly)
			fmt.Fprintf(out, "  Last sync:      %s\n", lastSync)
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.SyncHistory(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("get sync history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No syncs recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSYNCED AT\tADDED\tREMOVED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", e.ID, formatTime(e.SyncedAt), e.EmailsAdded, e.EmailsRemoved)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum entries to show (default 20)")
	return cmd
}
