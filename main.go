// Package main provides the entry point for Mullvad Supervisor, a
// lifecycle supervisor for the Mullvad VPN desktop client. It drives
// the client's own command-line interface to keep the installation
// up to date, the account configured, and the tunnel connected.
//
// Usage:
//
//	mullvad-supervisor [command]
//
// Environment:
//
//	The Mullvad VPN client must be installed and its "mullvad" binary
//	resolvable on PATH (or pointed to via the configuration file).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yllada/mullvad-supervisor/cli"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	version := appVersion
	if buildTime != "unknown" {
		version = fmt.Sprintf("%s (build %s, commit %s)", appVersion, buildTime, commitSHA)
	}

	if err := cli.ExecuteContext(ctx, version); err != nil {
		os.Exit(1)
	}
}
