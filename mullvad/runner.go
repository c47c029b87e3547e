package mullvad

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/yllada/mullvad-supervisor/common"
)

// DefaultBinary is the name of the Mullvad CLI executable, resolved
// through PATH unless a full path is configured.
const DefaultBinary = "mullvad"

// Result holds the structured outcome of one external command invocation.
type Result struct {
	// ExitCode is the process exit code; 0 on success.
	ExitCode int
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
}

// Output returns stdout with surrounding whitespace trimmed.
func (r Result) Output() string {
	return strings.TrimSpace(r.Stdout)
}

// Runner executes the external VPN client binary.
// Implementations must be safe for sequential reuse; the supervisor
// issues one command at a time.
type Runner interface {
	// Run invokes the binary with the given arguments and returns the
	// structured result. A non-zero exit code is not an error; errors
	// are reserved for failures to execute at all (missing binary,
	// expired context).
	Run(ctx context.Context, args ...string) (Result, error)
}

// ExecRunner runs commands against the real Mullvad binary.
type ExecRunner struct {
	// Bin is the executable to invoke. Defaults to DefaultBinary.
	Bin string
	// Timeout bounds a single invocation. Zero means the caller's
	// context is the only bound.
	Timeout time.Duration
}

// NewExecRunner creates a runner for the given binary path.
// An empty path selects the default binary from PATH.
func NewExecRunner(bin string, timeout time.Duration) *ExecRunner {
	if bin == "" {
		bin = DefaultBinary
	}
	return &ExecRunner{Bin: bin, Timeout: timeout}
}

// Available reports whether the configured binary can be found.
func (e *ExecRunner) Available() bool {
	_, err := exec.LookPath(e.bin())
	return err == nil
}

// Run implements Runner.
func (e *ExecRunner) Run(ctx context.Context, args ...string) (Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.bin(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	common.LogDebug("Executing: %s %s", e.bin(), strings.Join(args, " "))

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The tool ran and exited non-zero; that is a result,
			// not an execution failure.
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return res, common.WrapError(common.ErrTimeout, "mullvad "+strings.Join(args, " "))
			}
			return res, common.WrapError(common.ErrCancelled, "mullvad "+strings.Join(args, " "))
		}
		return res, common.WrapError(common.ErrCommandFailed, err.Error())
	}

	return res, nil
}

func (e *ExecRunner) bin() string {
	if e.Bin == "" {
		return DefaultBinary
	}
	return e.Bin
}
