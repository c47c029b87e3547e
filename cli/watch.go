package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yllada/mullvad-supervisor/mullvad"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the tunnel status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sp := spinner.New()
		sp.Spinner = spinner.Dot
		sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

		m := watchModel{
			client:   a.client,
			timeout:  a.cfg.CommandTimeout(),
			interval: watchInterval,
			spinner:  sp,
		}

		_, err = tea.NewProgram(m).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 2*time.Second, "poll interval")
}

type statusMsg struct {
	state mullvad.TunnelState
	err   error
}

type pollTickMsg struct{}

type watchModel struct {
	client   *mullvad.Client
	timeout  time.Duration
	interval time.Duration
	spinner  spinner.Model

	state    mullvad.TunnelState
	polls    int
	lastPoll time.Time
	err      error
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

// poll queries the client status off the UI loop.
func (m watchModel) poll() tea.Cmd {
	client := m.client
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		state, err := client.Status(ctx)
		return statusMsg{state: state, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.poll()
		}

	case statusMsg:
		m.state = msg.state
		m.err = msg.err
		m.polls++
		m.lastPoll = time.Now()
		interval := m.interval
		return m, tea.Tick(interval, func(time.Time) tea.Msg {
			return pollTickMsg{}
		})

	case pollTickMsg:
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m watchModel) View() string {
	header := labelStyle.Render("Mullvad tunnel")

	var line string
	switch {
	case m.polls == 0:
		line = fmt.Sprintf("%s waiting for first poll...", m.spinner.View())
	case m.err != nil:
		line = fmt.Sprintf("%s poll failed: %v", m.spinner.View(), m.err)
	default:
		line = fmt.Sprintf("%s %s", m.spinner.View(), renderState(m.state))
	}

	footer := lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("polls: %d   interval: %s   q quit, r refresh", m.polls, m.interval))

	return fmt.Sprintf("%s\n\n%s\n\n%s\n", header, line, footer)
}
