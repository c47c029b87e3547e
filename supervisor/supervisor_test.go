package supervisor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yllada/mullvad-supervisor/mullvad"
)

// scriptRunner fakes the external client. Status polls walk through the
// statuses slice (the last entry repeats); every other subcommand returns
// the canned result for its joined argument string.
type scriptRunner struct {
	mu        sync.Mutex
	statuses  []string
	statusIdx int
	results   map[string]mullvad.Result
	calls     []string
}

func (r *scriptRunner) Run(_ context.Context, args ...string) (mullvad.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.Join(args, " ")
	r.calls = append(r.calls, key)

	if key == "status" && len(r.statuses) > 0 {
		idx := r.statusIdx
		if idx >= len(r.statuses) {
			idx = len(r.statuses) - 1
		}
		r.statusIdx++
		return mullvad.Result{Stdout: r.statuses[idx]}, nil
	}

	if res, ok := r.results[key]; ok {
		return res, nil
	}
	return mullvad.Result{}, nil
}

// count returns how many recorded calls start with prefix.
func (r *scriptRunner) count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, call := range r.calls {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

// recordedSleep is a SleepFunc that records requested durations and
// returns immediately.
type recordedSleep struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (rs *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	rs.mu.Lock()
	rs.sleeps = append(rs.sleeps, d)
	rs.mu.Unlock()
	return ctx.Err()
}

func (rs *recordedSleep) durations() []time.Duration {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]time.Duration(nil), rs.sleeps...)
}

// fakeTokens is a TokenStore with a fixed token or error.
type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) Token() (string, error)  { return f.token, f.err }
func (f *fakeTokens) StoreToken(string) error { return nil }
func (f *fakeTokens) DeleteToken() error      { return nil }

// accountConfigured is canned "account get" output for a configured client.
const accountConfigured = "Mullvad account: 1234567890123456\n"

// noAccount is the sentinel output for a missing account.
const noAccount = "No account configured\n"

// mapResults builds a canned-result map for a single subcommand.
func mapResults(key, stdout string) map[string]mullvad.Result {
	return map[string]mullvad.Result{key: {Stdout: stdout}}
}

// clientFor wraps a fake runner in a client.
func clientFor(runner *scriptRunner) *mullvad.Client {
	return mullvad.NewClient(runner)
}

// newTestSupervisor wires a supervisor over the fake runner with recorded
// pacing and the given policy tweaks applied.
func newTestSupervisor(runner *scriptRunner, tokens *fakeTokens, tweak func(*Config)) (*Supervisor, *recordedSleep) {
	cfg := DefaultConfig()
	if tweak != nil {
		tweak(&cfg)
	}
	rs := &recordedSleep{}
	s := New(mullvad.NewClient(runner), tokens, cfg, WithSleep(rs.sleep))
	return s, rs
}
