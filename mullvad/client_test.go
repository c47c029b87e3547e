package mullvad

import (
	"context"
	"strings"
	"testing"
)

// fakeRunner returns canned results keyed on the joined argument string.
type fakeRunner struct {
	results map[string]Result
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (Result, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if res, ok := f.results[key]; ok {
		return res, nil
	}
	return Result{}, nil
}

func TestClient_AccountConfigured(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected bool
	}{
		{"configured", "Mullvad account: 1234567890123456\n", true},
		{"not configured", "No account configured\n", false},
		// Anything that is not the sentinel counts as configured.
		{"unexpected output", "error: daemon not running", true},
		{"empty output", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{results: map[string]Result{
				"account get": {Stdout: tt.output},
			}}
			client := NewClient(runner)

			configured, err := client.AccountConfigured(context.Background())
			if err != nil {
				t.Fatalf("AccountConfigured() error = %v", err)
			}
			if configured != tt.expected {
				t.Errorf("AccountConfigured() = %v, want %v", configured, tt.expected)
			}
		})
	}
}

func TestClient_SetAccount(t *testing.T) {
	runner := &fakeRunner{results: map[string]Result{}}
	client := NewClient(runner)

	if err := client.SetAccount(context.Background(), "1234567890123456"); err != nil {
		t.Fatalf("SetAccount() error = %v", err)
	}

	if len(runner.calls) != 1 || runner.calls[0] != "account set 1234567890123456" {
		t.Errorf("SetAccount() calls = %v, want the token passed verbatim", runner.calls)
	}
}

func TestClient_SetAccount_NonZeroExit(t *testing.T) {
	runner := &fakeRunner{results: map[string]Result{
		"account set bad-token": {ExitCode: 1, Stdout: "Error: invalid account"},
	}}
	client := NewClient(runner)

	if err := client.SetAccount(context.Background(), "bad-token"); err == nil {
		t.Error("SetAccount() should fail on non-zero exit")
	}
}

func TestClient_Status(t *testing.T) {
	runner := &fakeRunner{results: map[string]Result{
		"status": {Stdout: "Tunnel status: Connected\n"},
	}}
	client := NewClient(runner)

	state, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if state != StateConnected {
		t.Errorf("Status() = %v, want %v", state, StateConnected)
	}
}

func TestClient_Version(t *testing.T) {
	runner := &fakeRunner{results: map[string]Result{
		"version": {Stdout: "Current version : 2023.3\nLatest stable version : 2023.4\n"},
	}}
	client := NewClient(runner)

	info, err := client.Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if info.Current != "2023.3" || info.Latest != "2023.4" {
		t.Errorf("Version() = %+v", info)
	}
}

func TestClient_TunnelActions(t *testing.T) {
	runner := &fakeRunner{results: map[string]Result{}}
	client := NewClient(runner)
	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Reconnect(ctx); err != nil {
		t.Fatalf("Reconnect() error = %v", err)
	}
	if err := client.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if err := client.FactoryReset(ctx); err != nil {
		t.Fatalf("FactoryReset() error = %v", err)
	}

	want := []string{"connect", "reconnect", "disconnect", "factory-reset"}
	if len(runner.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", runner.calls, want)
	}
	for i, call := range want {
		if runner.calls[i] != call {
			t.Errorf("calls[%d] = %q, want %q", i, runner.calls[i], call)
		}
	}
}
