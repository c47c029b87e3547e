// Package supervisor implements lifecycle supervision of the Mullvad VPN
// client: keeping it up to date, keeping an account configured, and driving
// the tunnel toward the connected state.
//
// The package is organized around a single Supervisor type whose
// responsibilities are split across files:
//
//   - version.go: compares installed against advertised version and runs
//     the updater with bounded retries
//   - updater.go: downloads the installer and runs it unattended
//   - account.go: verifies and sets the account token
//   - connection.go: polls tunnel status and applies per-state remediation
//     until connected or the poll ceiling is reached
//
// # Supervision flow
//
// One supervision pass:
//
//  1. EnsureLatest — install an update if the version report shows one
//  2. EnsureAccount — set the account token if none is configured
//  3. EnsureConnected — poll and remediate until the tunnel is up
//
// All pacing goes through an injectable sleep so retry behavior is
// testable without wall-clock delay, and every external call is bounded
// by the caller's context.
package supervisor
