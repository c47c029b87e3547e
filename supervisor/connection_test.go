package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yllada/mullvad-supervisor/common"
)

const (
	statusConnected    = "Tunnel status: Connected\n"
	statusConnecting   = "Tunnel status: Connecting\n"
	statusBlocked      = "Tunnel status: Blocked\n"
	statusDisconnected = "Tunnel Status: Disconnected\n"
	statusGarbage      = "daemon is restarting\n"
)

func TestEnsureConnected_ConnectedFirstPoll(t *testing.T) {
	runner := &scriptRunner{statuses: []string{statusConnected}}
	s, rs := newTestSupervisor(runner, &fakeTokens{}, nil)

	err := s.EnsureConnected(context.Background())
	require.NoError(t, err)

	// One poll, zero remediation actions, zero pacing.
	assert.Equal(t, 1, runner.count("status"))
	assert.Zero(t, runner.count("connect"))
	assert.Zero(t, runner.count("disconnect"))
	assert.Zero(t, runner.count("reconnect"))
	assert.Empty(t, rs.durations())
}

func TestEnsureConnected_DisconnectedThenConnected(t *testing.T) {
	runner := &scriptRunner{statuses: []string{statusDisconnected, statusConnected}}
	s, rs := newTestSupervisor(runner, &fakeTokens{}, nil)

	err := s.EnsureConnected(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, runner.count("connect"))
	assert.Equal(t, 2, runner.count("status"))

	// One reconnect settle plus one poll interval before the second poll.
	durations := rs.durations()
	require.Len(t, durations, 2)
	assert.Equal(t, 5*time.Second, durations[0])
	assert.Equal(t, 2*time.Second, durations[1])
}

func TestEnsureConnected_ConnectingKeepsPolling(t *testing.T) {
	runner := &scriptRunner{statuses: []string{
		statusConnecting, statusConnecting, statusConnected,
	}}
	s, _ := newTestSupervisor(runner, &fakeTokens{}, nil)

	err := s.EnsureConnected(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, runner.count("status"))
	assert.Zero(t, runner.count("connect"))
	assert.Zero(t, runner.count("disconnect"))
}

func TestEnsureConnected_LoopBound(t *testing.T) {
	runner := &scriptRunner{statuses: []string{statusConnecting}}
	s, _ := newTestSupervisor(runner, &fakeTokens{}, nil)

	err := s.EnsureConnected(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotConnected)

	// Never more than MaxPolls status reads.
	assert.Equal(t, DefaultConfig().MaxPolls, runner.count("status"))
	// Factory reset escalation is disabled by default.
	assert.Zero(t, runner.count("factory-reset"))
}

func TestEnsureConnected_BlockedRemediatesOnceAfterThreshold(t *testing.T) {
	runner := &scriptRunner{
		statuses: []string{statusBlocked},
		results:  mapResults("account get", accountConfigured),
	}
	s, _ := newTestSupervisor(runner, &fakeTokens{}, nil)

	err := s.EnsureConnected(context.Background())
	require.Error(t, err)

	// Remediation fires on the first poll past the threshold (poll 4)
	// and never again while the tunnel stays blocked.
	assert.Equal(t, 1, runner.count("disconnect"))
	assert.Equal(t, 1, runner.count("account get"))
	assert.Equal(t, 1, runner.count("reconnect"))
	assert.Equal(t, DefaultConfig().MaxPolls, runner.count("status"))
}

func TestEnsureConnected_BlockedRearmsAfterLeavingState(t *testing.T) {
	// Blocked through the threshold, a brief Connecting interlude, then
	// blocked again: remediation fires for each separate blocked episode.
	statuses := []string{
		statusBlocked, statusBlocked, statusBlocked, statusBlocked, // remediate at poll 4
		statusConnecting,
		statusBlocked, // re-armed, remediate again at poll 6
		statusConnected,
	}
	runner := &scriptRunner{
		statuses: statuses,
		results:  mapResults("account get", accountConfigured),
	}
	s, _ := newTestSupervisor(runner, &fakeTokens{}, nil)

	err := s.EnsureConnected(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, runner.count("disconnect"))
	assert.Equal(t, 2, runner.count("reconnect"))
}

func TestEnsureConnected_BlockedWithoutAccountSkipsReconnect(t *testing.T) {
	runner := &scriptRunner{
		statuses: []string{statusBlocked},
		results:  mapResults("account get", noAccount),
	}
	// No token anywhere: account assertion fails, reconnect is skipped.
	s, _ := newTestSupervisor(runner, &fakeTokens{err: common.ErrTokenNotFound}, nil)

	err := s.EnsureConnected(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1, runner.count("disconnect"))
	assert.Zero(t, runner.count("reconnect"))
}

func TestEnsureConnected_UnknownRestarts(t *testing.T) {
	runner := &scriptRunner{statuses: []string{statusGarbage, statusConnected}}
	s, rs := newTestSupervisor(runner, &fakeTokens{}, nil)

	err := s.EnsureConnected(context.Background())
	require.NoError(t, err)

	// Restart is disconnect followed by connect.
	assert.Equal(t, 1, runner.count("disconnect"))
	assert.Equal(t, 1, runner.count("connect"))

	durations := rs.durations()
	require.NotEmpty(t, durations)
	assert.Equal(t, 60*time.Second, durations[0], "restart settle comes first")
}

func TestEnsureConnected_FactoryResetWhenEnabled(t *testing.T) {
	runner := &scriptRunner{statuses: []string{statusConnecting}}
	s, _ := newTestSupervisor(runner, &fakeTokens{}, func(cfg *Config) {
		cfg.MaxPolls = 5
		cfg.FactoryResetAfter = 5
	})

	err := s.EnsureConnected(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotConnected)
	assert.Equal(t, 1, runner.count("factory-reset"))
}

func TestEnsureConnected_CancelledContext(t *testing.T) {
	runner := &scriptRunner{statuses: []string{statusConnecting}}
	// Default (real) sleep so cancellation propagates through pacing.
	s := New(clientFor(runner), &fakeTokens{}, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.EnsureConnected(ctx)
	require.Error(t, err)
	// The loop bails at the first pacing point instead of spinning.
	assert.LessOrEqual(t, runner.count("status"), 2)
}

func TestCheckConnection(t *testing.T) {
	tests := []struct {
		name           string
		status         string
		wantConnected  bool
		wantDisconnect int
	}{
		{"connected", statusConnected, true, 0},
		{"connecting", statusConnecting, false, 0},
		{"disconnected", statusDisconnected, false, 0},
		{"blocked", statusBlocked, false, 0},
		{"unknown disconnects once", statusGarbage, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &scriptRunner{statuses: []string{tt.status}}
			s, _ := newTestSupervisor(runner, &fakeTokens{}, nil)

			connected, err := s.CheckConnection(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantConnected, connected)
			assert.Equal(t, tt.wantDisconnect, runner.count("disconnect"))
		})
	}
}
