// Package common provides shared constants, types, and utilities
// used across the Mullvad Supervisor application.
package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "Mullvad Supervisor"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "mullvad-supervisor"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	CredentialsFileName = ".credentials"
	HistoryFileName     = "history.db"
	LogFileName         = "mullvad-supervisor.log"
)

// Default pacing and escalation policy. All of these can be overridden
// through the configuration file; these are the shipped defaults.
const (
	// CommandTimeout bounds a single invocation of the external client.
	CommandTimeout = 30 * time.Second
	// PollInterval is the delay between tunnel status polls.
	PollInterval = 2 * time.Second
	// MaxPolls is the iteration ceiling of the required-connection loop.
	MaxPolls = 24
	// BlockedThreshold is how many polls a blocked tunnel is tolerated
	// before remediation kicks in.
	BlockedThreshold = 3
	// UpdateAttempts is the total number of installer runs per update
	// request (one initial attempt plus retries).
	UpdateAttempts = 4
	// ReconnectSettle is the pause after issuing connect or reconnect.
	ReconnectSettle = 5 * time.Second
	// RestartSettle is the pause after a full client restart.
	RestartSettle = 60 * time.Second
	// DownloadSettle is the pause between writing the installer to disk
	// and checking that it is in place.
	DownloadSettle = 10 * time.Second
	// DownloadTimeout bounds the installer download as a whole.
	DownloadTimeout = 5 * time.Minute
)

// Installer defaults.
const (
	// DefaultInstallerName is the file name the downloaded installer is
	// saved under.
	DefaultInstallerName = "MullvadInstaller.exe"
	// DefaultDownloadURL is where the latest installer is fetched from.
	DefaultDownloadURL = "https://mullvad.net/download/app/exe/latest"
)
