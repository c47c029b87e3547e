package supervisor

import (
	"context"
	"fmt"

	"github.com/yllada/mullvad-supervisor/common"
	"github.com/yllada/mullvad-supervisor/history"
	"github.com/yllada/mullvad-supervisor/mullvad"
)

// CheckConnection performs a single status read and maps it to a
// connected/not-connected answer. An Unknown status is treated as
// disconnect-worthy: the tunnel is torn down once and the check reports
// not connected.
func (s *Supervisor) CheckConnection(ctx context.Context) (bool, error) {
	state, err := s.client.Status(ctx)
	if err != nil {
		return false, err
	}

	switch state {
	case mullvad.StateConnected:
		return true, nil
	case mullvad.StateUnknown:
		common.LogWarn("Tunnel status unknown, disconnecting")
		if err := s.client.Disconnect(ctx); err != nil {
			common.LogWarn("Disconnect failed: %v", err)
		}
		return false, nil
	default:
		return false, nil
	}
}

// EnsureConnected polls tunnel status up to MaxPolls times and applies
// per-state remediation until the tunnel reports connected:
//
//   - Connecting: keep polling
//   - Blocked: once tolerated for BlockedThreshold polls, disconnect,
//     re-assert the account, and reconnect (once per threshold crossing)
//   - Disconnected: issue connect
//   - Unknown: full restart of the tunnel (disconnect then connect)
//
// Settle delays after remediation are not counted against the iteration
// bound. If the loop exhausts its polls and FactoryResetAfter is enabled
// and reached, the client is factory-reset as a last resort.
func (s *Supervisor) EnsureConnected(ctx context.Context) error {
	remediatedBlocked := false
	polls := 0

	for attempt := 1; attempt <= s.config.MaxPolls; attempt++ {
		polls = attempt

		state, err := s.client.Status(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			// A failed poll is not a tunnel state; log it and try again
			// on the next iteration.
			common.LogWarn("Status poll %d failed: %v", attempt, err)
			state = mullvad.StateUnknown
		}

		common.LogDebug("Poll %d/%d: tunnel %s", attempt, s.config.MaxPolls, state)

		if state != mullvad.StateBlocked {
			// Leaving the blocked state re-arms remediation.
			remediatedBlocked = false
		}

		switch state {
		case mullvad.StateConnected:
			common.LogInfo("Tunnel connected after %d poll(s)", attempt)
			s.record(history.KindState, "Connected")
			return nil

		case mullvad.StateConnecting:
			// In progress; nothing to do but wait.

		case mullvad.StateBlocked:
			if attempt > s.config.BlockedThreshold && !remediatedBlocked {
				common.LogWarn("Tunnel blocked for %d polls, remediating", attempt)
				s.record(history.KindRemediation, "blocked")
				if err := s.client.Disconnect(ctx); err != nil {
					common.LogWarn("Disconnect failed: %v", err)
				}
				if err := s.EnsureAccount(ctx); err != nil {
					common.LogWarn("Account assert failed: %v", err)
				} else {
					if err := s.client.Reconnect(ctx); err != nil {
						common.LogWarn("Reconnect failed: %v", err)
					}
					if err := s.sleep(ctx, s.config.ReconnectSettle); err != nil {
						return err
					}
				}
				remediatedBlocked = true
			}

		case mullvad.StateDisconnected:
			common.LogInfo("Tunnel disconnected, connecting")
			if err := s.client.Connect(ctx); err != nil {
				common.LogWarn("Connect failed: %v", err)
			}
			if err := s.sleep(ctx, s.config.ReconnectSettle); err != nil {
				return err
			}

		case mullvad.StateUnknown:
			common.LogWarn("Tunnel status unknown, restarting client tunnel")
			s.record(history.KindRemediation, "restart")
			if err := s.restart(ctx); err != nil {
				common.LogWarn("Restart failed: %v", err)
			}
			if err := s.sleep(ctx, s.config.RestartSettle); err != nil {
				return err
			}
		}

		if attempt < s.config.MaxPolls {
			if err := s.sleep(ctx, s.config.PollInterval); err != nil {
				return err
			}
		}
	}

	if s.config.FactoryResetAfter > 0 && polls >= s.config.FactoryResetAfter {
		common.LogError("Tunnel never connected after %d polls, factory resetting", polls)
		s.record(history.KindFactoryReset, fmt.Sprintf("after %d polls", polls))
		if err := s.client.FactoryReset(ctx); err != nil {
			common.LogError("Factory reset failed: %v", err)
		}
	}

	return common.WrapError(common.ErrNotConnected,
		fmt.Sprintf("gave up after %d polls", polls))
}

// restart tears the tunnel down and brings it back up. The external
// boundary only exposes connect/disconnect, so a "full restart" is
// expressed through those.
func (s *Supervisor) restart(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return err
	}
	return s.client.Connect(ctx)
}
