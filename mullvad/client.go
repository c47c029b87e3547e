package mullvad

import (
	"context"
	"strings"

	"github.com/yllada/mullvad-supervisor/common"
)

// noAccountSentinel is the literal the client prints when no account
// token has been configured. Any other output counts as configured.
const noAccountSentinel = "No account configured"

// Client provides typed access to the external VPN client's subcommands.
type Client struct {
	runner Runner
	// StrictStatus selects exact-literal status matching instead of the
	// default case-insensitive matching. See ParseStatus.
	StrictStatus bool
}

// NewClient creates a client on top of the given runner.
func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// Version queries and parses the client's version report.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	res, err := c.runner.Run(ctx, "version")
	if err != nil {
		return VersionInfo{}, common.WrapError(err, "version query")
	}
	return ParseVersion(res.Stdout)
}

// AccountConfigured reports whether an account token is configured.
// Only the literal "No account configured" sentinel counts as absent;
// any other output, expected or not, is treated as configured.
func (c *Client) AccountConfigured(ctx context.Context) (bool, error) {
	res, err := c.runner.Run(ctx, "account", "get")
	if err != nil {
		return false, common.WrapError(err, "account query")
	}
	return !strings.Contains(res.Stdout, noAccountSentinel), nil
}

// SetAccount passes the token verbatim to the client's account set action.
func (c *Client) SetAccount(ctx context.Context, token string) error {
	res, err := c.runner.Run(ctx, "account", "set", token)
	if err != nil {
		return common.WrapError(err, "account set")
	}
	if res.ExitCode != 0 {
		return common.WrapError(common.ErrCommandFailed, "account set exited "+res.Output())
	}
	return nil
}

// Status polls the client and maps its output to a TunnelState.
func (c *Client) Status(ctx context.Context) (TunnelState, error) {
	res, err := c.runner.Run(ctx, "status")
	if err != nil {
		return StateUnknown, common.WrapError(err, "status query")
	}
	return ParseStatus(res.Stdout, c.StrictStatus), nil
}

// Connect asks the client to establish the tunnel.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "connect")
	return common.WrapError(err, "connect")
}

// Reconnect asks the client to tear down and re-establish the tunnel.
func (c *Client) Reconnect(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "reconnect")
	return common.WrapError(err, "reconnect")
}

// Disconnect asks the client to tear down the tunnel.
func (c *Client) Disconnect(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "disconnect")
	return common.WrapError(err, "disconnect")
}

// FactoryReset clears all of the client's local configuration, including
// the account token. Last-resort remediation.
func (c *Client) FactoryReset(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "factory-reset")
	return common.WrapError(err, "factory reset")
}
