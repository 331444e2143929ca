package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/mailcache/internal/model"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the cache database and a default config file",
		Long: `Create the cache database (tables and indexes) if it does not exist and
write a config file with default settings if none is present. Running it
again leaves existing data untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache ready at %s\n", a.databasePath())

			path := a.configPath()
			if _, err := os.Stat(path); err == nil {
				return nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking config %s: %w", path, err)
			}

			cfg := *a.cfg
			cfg.Database.Path = a.databasePath()
			if err := model.SaveConfig(path, &cfg); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote default config to %s\n", path)
			return nil
		},
	}
}
