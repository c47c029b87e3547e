package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yllada/mullvad-supervisor/common"
	"github.com/yllada/mullvad-supervisor/supervisor"
)

var superviseRequired bool

var superviseCmd = &cobra.Command{
	Use:   "supervise",
	Short: "Run one full supervision pass",
	Long: `Run one full supervision pass: install a pending update, ensure an
account token is configured, and drive the tunnel to the connected state.

With --required=false the connection step is a single status check
instead of the polling/remediation loop.`,
	RunE: runSupervise,
}

func init() {
	rootCmd.AddCommand(superviseCmd)
	superviseCmd.Flags().BoolVar(&superviseRequired, "required", true,
		"keep remediating until the tunnel connects")
}

func runSupervise(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	run := a.beginRun()
	s := a.supervisor(supervisor.WithJournal(run))
	ctx := cmd.Context()

	if !superviseRequired {
		if err := s.EnsureLatest(ctx); err != nil {
			common.LogWarn("Update pass failed: %v", err)
		}
		if err := s.EnsureAccount(ctx); err != nil {
			run.End("account failed")
			return err
		}
		connected, err := s.CheckConnection(ctx)
		if err != nil {
			run.End("status failed")
			return err
		}
		if !connected {
			run.End("not connected")
			return common.ErrNotConnected
		}
		run.End("ok")
		fmt.Fprintln(cmd.OutOrStdout(), "Tunnel connected.")
		return nil
	}

	if err := s.Run(ctx); err != nil {
		if errors.Is(err, common.ErrNotConnected) {
			run.End("gave up")
		} else {
			run.End("failed")
		}
		return err
	}

	run.End("ok")
	fmt.Fprintln(cmd.OutOrStdout(), "Supervision pass complete; tunnel connected.")
	return nil
}
