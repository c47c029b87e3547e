// Package config provides configuration management for Mullvad Supervisor.
// It handles loading, saving, and validating supervisor settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/mullvad-supervisor/common"
)

// Config represents the supervisor configuration.
// All settings are persisted to a YAML file in the user's config directory.
// Delays and intervals are expressed in seconds so the file stays readable
// and hand-editable.
type Config struct {
	// BinaryPath is the Mullvad CLI executable. Empty means resolve
	// "mullvad" through PATH.
	BinaryPath string `yaml:"binary_path"`
	// CommandTimeoutSeconds bounds a single invocation of the client.
	CommandTimeoutSeconds int `yaml:"command_timeout_seconds"`

	// DownloadURL is where the installer is fetched from.
	DownloadURL string `yaml:"download_url"`
	// DownloadDir is where the installer is written. Empty means the
	// application data directory.
	DownloadDir string `yaml:"download_dir"`
	// InstallerName is the file name the installer is saved under.
	InstallerName string `yaml:"installer_name"`
	// InstallerArgs are the silent-install flags passed to the installer.
	InstallerArgs []string `yaml:"installer_args"`
	// KeepInstaller leaves the downloaded artifact on disk after a
	// successful install.
	KeepInstaller bool `yaml:"keep_installer"`
	// DownloadSettleSeconds is the pause between writing the installer
	// and verifying it is in place.
	DownloadSettleSeconds int `yaml:"download_settle_seconds"`
	// UpdateAttempts is the total number of install attempts per update
	// request (initial attempt plus retries).
	UpdateAttempts int `yaml:"update_attempts"`

	// PollIntervalSeconds is the delay between tunnel status polls.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	// MaxPolls bounds the required-connection loop.
	MaxPolls int `yaml:"max_polls"`
	// BlockedThreshold is how many polls a blocked tunnel is tolerated
	// before remediation.
	BlockedThreshold int `yaml:"blocked_threshold"`
	// FactoryResetAfter triggers a factory reset once the poll count
	// reaches this value. 0 disables the escalation.
	FactoryResetAfter int `yaml:"factory_reset_after"`
	// ReconnectSettleSeconds is the pause after connect/reconnect.
	ReconnectSettleSeconds int `yaml:"reconnect_settle_seconds"`
	// RestartSettleSeconds is the pause after a full client restart.
	RestartSettleSeconds int `yaml:"restart_settle_seconds"`

	// StrictStatusMatch reproduces the original exact-literal status
	// matching, including the divergent capitalization of the
	// disconnected line. Off by default: matching is case-insensitive.
	StrictStatusMatch bool `yaml:"strict_status_match"`

	// LegacyTokenFile is a plaintext token file imported into the secret
	// store on first use. Empty disables the import.
	LegacyTokenFile string `yaml:"legacy_token_file"`

	// HistoryEnabled records supervision runs and events to SQLite.
	HistoryEnabled bool `yaml:"history_enabled"`
	// HistoryPath overrides the history database location.
	HistoryPath string `yaml:"history_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BinaryPath:             "",
		CommandTimeoutSeconds:  int(common.CommandTimeout / time.Second),
		DownloadURL:            common.DefaultDownloadURL,
		InstallerName:          common.DefaultInstallerName,
		InstallerArgs:          []string{"/S"},
		KeepInstaller:          true,
		DownloadSettleSeconds:  int(common.DownloadSettle / time.Second),
		UpdateAttempts:         common.UpdateAttempts,
		PollIntervalSeconds:    int(common.PollInterval / time.Second),
		MaxPolls:               common.MaxPolls,
		BlockedThreshold:       common.BlockedThreshold,
		FactoryResetAfter:      0,
		ReconnectSettleSeconds: int(common.ReconnectSettle / time.Second),
		RestartSettleSeconds:   int(common.RestartSettle / time.Second),
		StrictStatusMatch:      false,
		HistoryEnabled:         true,
	}
}

// Load loads the configuration from the config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from an explicit path.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.SaveTo(configPath); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("error opening configuration: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	config.validate()
	return &config, nil
}

// validate replaces out-of-range values with defaults rather than failing:
// a hand-edited file with one bad value should not stop the supervisor.
func (c *Config) validate() {
	def := DefaultConfig()

	if c.CommandTimeoutSeconds <= 0 {
		c.CommandTimeoutSeconds = def.CommandTimeoutSeconds
	}
	if c.DownloadURL == "" {
		c.DownloadURL = def.DownloadURL
	}
	if c.InstallerName == "" {
		c.InstallerName = def.InstallerName
	}
	if c.DownloadSettleSeconds < 0 {
		c.DownloadSettleSeconds = def.DownloadSettleSeconds
	}
	if c.UpdateAttempts <= 0 {
		c.UpdateAttempts = def.UpdateAttempts
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = def.PollIntervalSeconds
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = def.MaxPolls
	}
	if c.BlockedThreshold <= 0 {
		c.BlockedThreshold = def.BlockedThreshold
	}
	if c.FactoryResetAfter < 0 {
		c.FactoryResetAfter = 0
	}
	if c.ReconnectSettleSeconds < 0 {
		c.ReconnectSettleSeconds = def.ReconnectSettleSeconds
	}
	if c.RestartSettleSeconds < 0 {
		c.RestartSettleSeconds = def.RestartSettleSeconds
	}
}

// Save saves the configuration to the default config file.
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to an explicit path.
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing configuration: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	return nil
}

// CommandTimeout returns the per-command timeout as a duration.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// PollInterval returns the status poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// DownloadSettle returns the post-download settle delay as a duration.
func (c *Config) DownloadSettle() time.Duration {
	return time.Duration(c.DownloadSettleSeconds) * time.Second
}

// ReconnectSettle returns the post-connect settle delay as a duration.
func (c *Config) ReconnectSettle() time.Duration {
	return time.Duration(c.ReconnectSettleSeconds) * time.Second
}

// RestartSettle returns the post-restart settle delay as a duration.
func (c *Config) RestartSettle() time.Duration {
	return time.Duration(c.RestartSettleSeconds) * time.Second
}

func getConfigPath() (string, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, common.ConfigFileName), nil
}
