package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yllada/mullvad-supervisor/mullvad"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)

	stateStyles = map[mullvad.TunnelState]lipgloss.Style{
		mullvad.StateConnected:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // green
		mullvad.StateConnecting:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")), // yellow
		mullvad.StateDisconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // gray
		mullvad.StateBlocked:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		mullvad.StateUnknown:      lipgloss.NewStyle().Foreground(lipgloss.Color("213")), // magenta
	}
)

// renderState colors a tunnel state for terminal output.
func renderState(state mullvad.TunnelState) string {
	style, ok := stateStyles[state]
	if !ok {
		return state.String()
	}
	return style.Render(state.String())
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current tunnel status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		state, err := a.client.Status(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
			labelStyle.Render("Tunnel:"), renderState(state))

		info, err := a.client.Version(cmd.Context())
		if err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s", labelStyle.Render("Version:"), info.Current)
			if !info.UpToDate() {
				fmt.Fprintf(cmd.OutOrStdout(), " (latest: %s)", info.Latest)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
