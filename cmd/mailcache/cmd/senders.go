package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTopCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank inbox senders by message count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			counts, err := s.SenderCounts(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("rank senders: %w", err)
			}

			printSenderCounts(cmd.OutOrStdout(), counts)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum senders (default 20)")
	return cmd
}

func newExternalCmd(a *app) *cobra.Command {
	var domain string
	var limit int

	cmd := &cobra.Command{
		Use:   "external",
		Short: "Rank inbox senders outside the internal domain",
		Long: `Rank inbox senders whose address does not end in @<domain>. The domain
defaults to database.internal_domain from the config file. The suffix
comparison is case-sensitive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			counts, err := s.ExternalSenders(cmd.Context(), domain, limit)
			if err != nil {
				return fmt.Errorf("rank external senders: %w", err)
			}

			printSenderCounts(cmd.OutOrStdout(), counts)
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "internal mail domain (default: database.internal_domain)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum senders (default 50)")
	return cmd
}
