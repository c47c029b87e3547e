package supervisor

import (
	"context"
	"fmt"

	"github.com/yllada/mullvad-supervisor/common"
	"github.com/yllada/mullvad-supervisor/history"
)

// EnsureLatest compares the installed client version against the latest
// advertised one and, when they differ, runs the updater with up to
// UpdateAttempts total attempts. Returns nil when the client is already
// current or an update attempt succeeded.
func (s *Supervisor) EnsureLatest(ctx context.Context) error {
	info, err := s.client.Version(ctx)
	if err != nil {
		return common.WrapError(err, "could not determine versions")
	}

	if info.UpToDate() {
		common.LogInfo("Client is up to date (%s)", info.Current)
		return nil
	}

	common.LogInfo("Update available: %s -> %s", info.Current, info.Latest)

	var lastErr error
	for attempt := 1; attempt <= s.config.UpdateAttempts; attempt++ {
		s.record(history.KindUpdateAttempt,
			fmt.Sprintf("attempt %d/%d (%s -> %s)", attempt, s.config.UpdateAttempts, info.Current, info.Latest))

		if err := s.update(ctx); err != nil {
			lastErr = err
			common.LogWarn("Update attempt %d/%d failed: %v", attempt, s.config.UpdateAttempts, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		common.LogInfo("Update to %s installed", info.Latest)
		s.record(history.KindUpdateOK, info.Latest)
		return nil
	}

	s.record(history.KindUpdateFailed, info.Latest)
	return common.WrapError(common.ErrUpdateFailed, lastErr.Error())
}
