package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailcache/internal/store"
)

func newSearchCmd(a *app) *cobra.Command {
	var field string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search inbox emails by sender, subject, or snippet",
		Long: `Search inbox emails whose sender, subject, or snippet contains the term.
Matching is case-insensitive for ASCII letters. Use --field to restrict the
match to the sender or subject.

Examples:
  mailcache search invoice
  mailcache search --field sender acme.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseSearchField(field)
			if err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.Search(cmd.Context(), store.SearchOptions{
				Term:  args[0],
				Field: f,
				Limit: limit,
			})
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", "any", "field to match: any, sender, or subject")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (default 50)")
	return cmd
}

func parseSearchField(s string) (store.SearchField, error) {
	switch s {
	case "", "any":
		return store.FieldAny, nil
	case "sender":
		return store.FieldSender, nil
	case "subject":
		return store.FieldSubject, nil
	default:
		return "", fmt.Errorf("invalid --field %q: must be any, sender, or subject", s)
	}
}

func newSenderCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sender <pattern>",
		Short: "List inbox emails from senders matching a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.SearchBySender(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("search by sender: %w", err)
			}

			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultSenderLimit, "maximum results (0 for all)")
	return cmd
}

func newDateCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "date <month> [year]",
		Short: "List inbox emails whose date mentions a month (and year)",
		Example: `  mailcache date October
  mailcache date October 2025`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var year string
			if len(args) == 2 {
				year = args[1]
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.SearchByDateToken(cmd.Context(), args[0], year, limit)
			if err != nil {
				return fmt.Errorf("search by date: %w", err)
			}

			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (default 100)")
	return cmd
}

func newRangeCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "range <start-month> <end-month>",
		Short:   "List inbox emails dated in a span of months",
		Example: `  mailcache range January March`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.SearchByDateRange(cmd.Context(), args[0], args[1], limit)
			if err != nil {
				return fmt.Errorf("search by date range: %w", err)
			}

			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (default 200)")
	return cmd
}
