package supervisor

import (
	"context"
	"net/http"
	"os/exec"
	"time"

	"github.com/yllada/mullvad-supervisor/common"
	"github.com/yllada/mullvad-supervisor/config"
	"github.com/yllada/mullvad-supervisor/history"
	"github.com/yllada/mullvad-supervisor/mullvad"
)

// Config holds the supervision policy: retry bounds, escalation
// thresholds, and pacing.
type Config struct {
	// UpdateAttempts is the total number of install attempts per update
	// request (one initial attempt plus retries).
	UpdateAttempts int
	// DownloadURL is where the installer is fetched from.
	DownloadURL string
	// DownloadDir is where the installer artifact is written.
	DownloadDir string
	// InstallerName is the file name the installer is saved under.
	InstallerName string
	// InstallerArgs are the silent-install flags.
	InstallerArgs []string
	// KeepInstaller leaves the artifact on disk after a successful run.
	KeepInstaller bool
	// DownloadSettle is the pause between writing the installer and
	// verifying it is in place.
	DownloadSettle time.Duration
	// DownloadTimeout bounds the installer download.
	DownloadTimeout time.Duration

	// PollInterval is the delay between tunnel status polls.
	PollInterval time.Duration
	// MaxPolls bounds the required-connection loop.
	MaxPolls int
	// BlockedThreshold is how many polls a blocked tunnel is tolerated
	// before remediation.
	BlockedThreshold int
	// FactoryResetAfter escalates to a factory reset once the poll count
	// reaches this value. 0 disables the escalation.
	FactoryResetAfter int
	// ReconnectSettle is the pause after issuing connect or reconnect.
	ReconnectSettle time.Duration
	// RestartSettle is the pause after a full client restart.
	RestartSettle time.Duration
}

// DefaultConfig returns the shipped supervision policy.
func DefaultConfig() Config {
	return Config{
		UpdateAttempts:    common.UpdateAttempts,
		DownloadURL:       common.DefaultDownloadURL,
		InstallerName:     common.DefaultInstallerName,
		InstallerArgs:     []string{"/S"},
		KeepInstaller:     true,
		DownloadSettle:    common.DownloadSettle,
		DownloadTimeout:   common.DownloadTimeout,
		PollInterval:      common.PollInterval,
		MaxPolls:          common.MaxPolls,
		BlockedThreshold:  common.BlockedThreshold,
		FactoryResetAfter: 0,
		ReconnectSettle:   common.ReconnectSettle,
		RestartSettle:     common.RestartSettle,
	}
}

// FromConfig converts the persisted application configuration into a
// supervision policy.
func FromConfig(cfg *config.Config) Config {
	c := DefaultConfig()
	c.UpdateAttempts = cfg.UpdateAttempts
	c.DownloadURL = cfg.DownloadURL
	c.DownloadDir = cfg.DownloadDir
	c.InstallerName = cfg.InstallerName
	if len(cfg.InstallerArgs) > 0 {
		c.InstallerArgs = cfg.InstallerArgs
	}
	c.KeepInstaller = cfg.KeepInstaller
	c.DownloadSettle = cfg.DownloadSettle()
	c.PollInterval = cfg.PollInterval()
	c.MaxPolls = cfg.MaxPolls
	c.BlockedThreshold = cfg.BlockedThreshold
	c.FactoryResetAfter = cfg.FactoryResetAfter
	c.ReconnectSettle = cfg.ReconnectSettle()
	c.RestartSettle = cfg.RestartSettle()
	return c
}

// SleepFunc pauses for the given duration, returning early with the
// context's error if it is cancelled. Tests inject a recording fake.
type SleepFunc func(ctx context.Context, d time.Duration) error

// sleepContext is the production SleepFunc.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// installFunc runs a downloaded installer binary and waits for it to
// exit. Tests substitute a fake.
type installFunc func(ctx context.Context, path string, args []string) error

func runInstaller(ctx context.Context, path string, args []string) error {
	cmd := exec.CommandContext(ctx, path, args...)
	return cmd.Run()
}

// Supervisor drives the external VPN client toward the desired state:
// up to date, account configured, tunnel connected.
type Supervisor struct {
	client  *mullvad.Client
	tokens  common.TokenStore
	config  Config
	sleep   SleepFunc
	install installFunc
	httpc   *http.Client
	journal *history.Run
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithSleep replaces the pacing function. Used by tests to avoid
// wall-clock delays.
func WithSleep(sleep SleepFunc) Option {
	return func(s *Supervisor) { s.sleep = sleep }
}

// WithInstaller replaces the installer execution function.
func WithInstaller(install installFunc) Option {
	return func(s *Supervisor) { s.install = install }
}

// WithHTTPClient replaces the download HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Supervisor) { s.httpc = c }
}

// WithJournal attaches a history run; events are recorded against it.
// A nil journal disables recording.
func WithJournal(run *history.Run) Option {
	return func(s *Supervisor) { s.journal = run }
}

// New creates a supervisor over the given client and token store.
func New(client *mullvad.Client, tokens common.TokenStore, cfg Config, opts ...Option) *Supervisor {
	s := &Supervisor{
		client:  client,
		tokens:  tokens,
		config:  cfg,
		sleep:   sleepContext,
		install: runInstaller,
		httpc:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one full supervision pass: ensure the client is current,
// ensure an account is configured, and drive the tunnel to connected.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.EnsureLatest(ctx); err != nil {
		// An out-of-date client can usually still connect; log and
		// keep going rather than abandoning the pass.
		common.LogWarn("Update pass failed: %v", err)
	}

	if err := s.EnsureAccount(ctx); err != nil {
		return err
	}

	return s.EnsureConnected(ctx)
}

// record journals an event if a journal is attached.
func (s *Supervisor) record(kind, detail string) {
	s.journal.Event(kind, detail)
}
