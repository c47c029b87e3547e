// Package cli provides the command-line interface for Mullvad Supervisor.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yllada/mullvad-supervisor/common"
	"github.com/yllada/mullvad-supervisor/config"
	"github.com/yllada/mullvad-supervisor/history"
	"github.com/yllada/mullvad-supervisor/mullvad"
	"github.com/yllada/mullvad-supervisor/secrets"
	"github.com/yllada/mullvad-supervisor/supervisor"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mullvad-supervisor",
	Short: "Lifecycle supervision for the Mullvad VPN client",
	Long: `Mullvad Supervisor keeps the Mullvad VPN client healthy:
it installs updates, ensures an account token is configured, and drives
the tunnel toward the connected state.

All interaction with the client goes through its command-line interface;
the supervisor itself holds no network tunnel.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := common.LevelInfo
		if flagVerbose {
			level = common.LevelDebug
		}
		if err := common.InitLogger(common.LogConfig{
			Level:      level,
			EnableFile: true,
		}); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		common.CloseLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// ExecuteContext runs the CLI with the given build version. The context
// carries shutdown cancellation; commands pass it to every external call.
func ExecuteContext(ctx context.Context, version string) error {
	rootCmd.Version = version
	return rootCmd.ExecuteContext(ctx)
}

// app bundles the wired-up collaborators the commands work against.
type app struct {
	cfg    *config.Config
	client *mullvad.Client
	tokens *secrets.Store
	hist   *history.Store
}

// newApp loads configuration and wires the client, token store, and
// history journal. The external binary must be resolvable.
func newApp() (*app, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, common.WrapError(common.ErrConfigLoad, err.Error())
	}

	runner := mullvad.NewExecRunner(cfg.BinaryPath, cfg.CommandTimeout())
	if !runner.Available() {
		return nil, common.ErrClientNotFound
	}

	client := mullvad.NewClient(runner)
	client.StrictStatus = cfg.StrictStatusMatch

	tokens, err := secrets.Open(cfg.LegacyTokenFile)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, client: client, tokens: tokens}

	if cfg.HistoryEnabled {
		path := cfg.HistoryPath
		if path == "" {
			dataDir, err := common.GetDataDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dataDir, common.HistoryFileName)
		}
		hist, err := history.Open(path)
		if err != nil {
			// History is observational; a broken journal must not stop
			// supervision.
			common.LogWarn("History disabled: %v", err)
		} else {
			a.hist = hist
		}
	}

	return a, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.hist != nil {
		a.hist.Close()
	}
}

// beginRun starts a history run, or returns nil when history is off.
func (a *app) beginRun() *history.Run {
	if a.hist == nil {
		return nil
	}
	return a.hist.BeginRun()
}

// supervisor builds a supervisor over the app's collaborators.
func (a *app) supervisor(opts ...supervisor.Option) *supervisor.Supervisor {
	return supervisor.New(a.client, a.tokens, supervisor.FromConfig(a.cfg), opts...)
}
