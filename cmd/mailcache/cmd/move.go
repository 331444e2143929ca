package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailcache/internal/model"
	"github.com/nhle/mailcache/internal/store"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one cached email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.Get(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no cached email with id %q", args[0])
			}
			if err != nil {
				return fmt.Errorf("get email: %w", err)
			}

			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> [folder]",
		Short: "Record that an email moved to another folder",
		Long: `Record that an email moved to another folder (default "Archived").
Emails outside "Inbox" no longer appear in searches or sender rankings.
Moving an id that is not cached does nothing.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := model.FolderArchived
			if len(args) == 2 {
				folder = args[1]
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.UpdateFolder(cmd.Context(), args[0], folder); err != nil {
				return fmt.Errorf("move email: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], folder)
			return nil
		},
	}
}
