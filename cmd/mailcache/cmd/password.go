package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nhle/mailcache/internal/credential"
	"github.com/nhle/mailcache/internal/model"
)

func newSetPasswordCmd(a *app) *cobra.Command {
	var remove, check bool

	cmd := &cobra.Command{
		Use:   "set-password [username]",
		Short: "Store an IMAP password in the system keyring",
		Long: `Store the IMAP password for an account in the system keyring. The
username defaults to the only configured source. The password is read from
the terminal without echo, or from the first line of stdin when piped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.resolveUsername(args)
			if err != nil {
				return err
			}
			key := credential.IMAPPasswordKey(username)
			out := cmd.OutOrStdout()

			if remove {
				if err := credential.Delete(key); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed password for %s\n", username)
				return nil
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "IMAP password for %s: ", username)
			password, err := readPassword(cmd.InOrStdin())
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if password == "" {
				return fmt.Errorf("password is required")
			}

			if err := credential.Set(key, password); err != nil {
				return err
			}
			fmt.Fprintf(out, "Stored password for %s\n", username)

			if !check {
				return nil
			}
			src, ok := a.sourceFor(username)
			if !ok {
				return fmt.Errorf("no configured source for %s to check", username)
			}
			adapter, err := a.newEmailAdapter(src)
			if err != nil {
				return err
			}
			who, err := adapter.ValidateConnection(cmd.Context())
			if err != nil {
				return fmt.Errorf("connection check failed: %w", err)
			}
			fmt.Fprintf(out, "Connected to %s as %s\n", src.Host, who)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "delete", false, "remove the stored password instead")
	cmd.Flags().BoolVar(&check, "check", false, "log in to the server after storing the password")
	return cmd
}

func (a *app) resolveUsername(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if len(a.cfg.Sources) == 1 {
		return a.cfg.Sources[0].Username, nil
	}
	return "", fmt.Errorf("username required: %d sources configured", len(a.cfg.Sources))
}

func (a *app) sourceFor(username string) (model.SourceConfig, bool) {
	for _, src := range a.cfg.Sources {
		if strings.EqualFold(src.Username, username) {
			return src, true
		}
	}
	return model.SourceConfig{}, false
}

// readPassword reads without echo from a terminal, or one line otherwise.
func readPassword(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
