package supervisor

import (
	"context"

	"github.com/yllada/mullvad-supervisor/common"
	"github.com/yllada/mullvad-supervisor/history"
)

// EnsureAccount verifies that the client has an account configured and,
// if not, sets one from the token store. Idempotent: when an account is
// already configured no write action is performed.
func (s *Supervisor) EnsureAccount(ctx context.Context) error {
	configured, err := s.client.AccountConfigured(ctx)
	if err != nil {
		return common.WrapError(err, "could not check account")
	}

	if configured {
		common.LogDebug("Account already configured")
		return nil
	}

	return s.SetAccount(ctx)
}

// SetAccount reads the token from the store and passes it to the client.
// Token absence is reported as ErrTokenNotFound; callers treat it as a
// normal condition, not a crash.
func (s *Supervisor) SetAccount(ctx context.Context) error {
	token, err := s.tokens.Token()
	if err != nil {
		common.LogWarn("No account token available: %v", err)
		return common.WrapError(common.ErrTokenNotFound, err.Error())
	}

	if err := s.client.SetAccount(ctx, token); err != nil {
		return common.WrapError(err, "could not set account")
	}

	common.LogInfo("Account token configured")
	s.record(history.KindAccountSet, "")
	return nil
}
