package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yllada/mullvad-supervisor/secrets"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the Mullvad account token",
}

var accountGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show whether an account is configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		configured, err := a.client.AccountConfigured(cmd.Context())
		if err != nil {
			return err
		}

		if configured {
			fmt.Fprintln(cmd.OutOrStdout(), "Account is configured.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No account configured.")
		}

		if a.tokens.Exists() {
			fmt.Fprintln(cmd.OutOrStdout(), "A token is available in the secret store.")
		}
		return nil
	},
}

var accountPrompt bool

var accountSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the account token and configure the client",
	Long: `Store the account token in the secret store and pass it to the
client. The token can be given as an argument, piped on stdin, or typed
at a hidden prompt with --prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		token, err := resolveToken(args, a.tokens)
		if err != nil {
			return err
		}

		if err := a.tokens.StoreToken(token); err != nil {
			return err
		}
		if err := a.client.SetAccount(cmd.Context(), token); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Account token configured.")
		return nil
	},
}

// resolveToken picks the token from the argument, the prompt, or the
// secret store, in that order.
func resolveToken(args []string, store *secrets.Store) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}

	if accountPrompt {
		fmt.Fprint(os.Stderr, "Account token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		token := strings.TrimSpace(string(raw))
		if token == "" {
			return "", errors.New("empty token")
		}
		return token, nil
	}

	token, err := store.Token()
	if err != nil {
		return "", fmt.Errorf("no token given and none stored: %w", err)
	}
	return token, nil
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountGetCmd)
	accountCmd.AddCommand(accountSetCmd)
	accountSetCmd.Flags().BoolVar(&accountPrompt, "prompt", false,
		"read the token from a hidden terminal prompt")
}
