package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yllada/mullvad-supervisor/supervisor"
)

var updateCheckOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Install the latest client version",
	Long: `Compare the installed client version against the latest advertised
one and, when they differ, download and run the installer unattended.

With --check the comparison is reported without installing anything.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false,
		"only report whether an update is available")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if updateCheckOnly {
		info, err := a.client.Version(cmd.Context())
		if err != nil {
			return err
		}
		if info.UpToDate() {
			fmt.Fprintf(cmd.OutOrStdout(), "Up to date (%s)\n", info.Current)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Update available: %s -> %s\n", info.Current, info.Latest)
		}
		return nil
	}

	run := a.beginRun()
	s := a.supervisor(supervisor.WithJournal(run))

	if err := s.EnsureLatest(cmd.Context()); err != nil {
		run.End("update failed")
		return err
	}

	run.End("ok")
	fmt.Fprintln(cmd.OutOrStdout(), "Client is up to date.")
	return nil
}
