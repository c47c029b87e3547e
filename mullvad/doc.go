// Package mullvad provides the binding to the external Mullvad VPN client.
//
// All interaction with the client goes through its command-line interface:
// the supervisor never speaks a wire protocol, it invokes subcommands
// (version, account, status, connect, reconnect, disconnect, factory-reset)
// and interprets their line-oriented text output.
//
// The package is organized around three types:
//
//   - Runner: executes the external binary and returns structured output,
//     so business logic never shells out directly and tests can substitute
//     a scripted fake
//   - Client: typed wrappers for each subcommand of the external tool
//   - TunnelState: the client's self-reported connection phase, derived by
//     pattern-matching status text
//
// # Process boundary
//
// Every invocation is bounded by a context; a hung external tool is killed
// when the per-command timeout expires rather than stalling the supervisor.
// Exit codes are captured but most decisions are made on the output text,
// which is all the external tool reliably communicates through.
package mullvad
