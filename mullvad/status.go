package mullvad

import "strings"

// TunnelState represents the external client's self-reported tunnel phase.
type TunnelState int

const (
	// StateUnknown indicates status text that matched no known phase.
	StateUnknown TunnelState = iota
	// StateConnected indicates an active, established tunnel.
	StateConnected
	// StateConnecting indicates a tunnel being established.
	StateConnecting
	// StateDisconnected indicates no active tunnel.
	StateDisconnected
	// StateBlocked indicates the client is blocking traffic because the
	// tunnel could not be established.
	StateBlocked
)

// String returns a human-readable representation of the tunnel state.
func (s TunnelState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateConnecting:
		return "Connecting"
	case StateDisconnected:
		return "Disconnected"
	case StateBlocked:
		return "Blocked"
	default:
		return "Unknown"
	}
}

// Status literals as printed by the external client. The disconnected line
// historically capitalizes "Status" differently from the others; strict
// matching reproduces that, lenient matching ignores case entirely.
const (
	litConnected    = "Tunnel status: Connected"
	litConnecting   = "Tunnel status: Connecting"
	litBlocked      = "Tunnel status: Blocked"
	litDisconnected = "Tunnel Status: Disconnected"
)

// ParseStatus maps the client's status output to a TunnelState.
// Each known literal maps to exactly one state; anything else is
// StateUnknown. With strict=false the match is case-insensitive, with
// strict=true the original exact literals are required, including the
// divergent capitalization of the disconnected line.
func ParseStatus(output string, strict bool) TunnelState {
	if strict {
		switch {
		case strings.Contains(output, litConnecting):
			return StateConnecting
		case strings.Contains(output, litDisconnected):
			return StateDisconnected
		case strings.Contains(output, litBlocked):
			return StateBlocked
		case strings.Contains(output, litConnected):
			return StateConnected
		default:
			return StateUnknown
		}
	}

	lower := strings.ToLower(output)
	if !strings.Contains(lower, "tunnel status:") {
		return StateUnknown
	}
	// "disconnected" and "connecting" both contain "connected", so order
	// of checks matters here.
	switch {
	case strings.Contains(lower, "connecting"):
		return StateConnecting
	case strings.Contains(lower, "disconnected"):
		return StateDisconnected
	case strings.Contains(lower, "blocked"):
		return StateBlocked
	case strings.Contains(lower, "connected"):
		return StateConnected
	default:
		return StateUnknown
	}
}
