package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/yllada/mullvad-supervisor/common"
)

// update performs one install attempt: download the installer to the
// configured destination, wait for the write to settle, verify the file
// is in place, and run it with the silent-install flags.
func (s *Supervisor) update(ctx context.Context) error {
	destDir := s.config.DownloadDir
	if destDir == "" {
		dataDir, err := common.GetDataDir()
		if err != nil {
			return err
		}
		destDir = dataDir
	}

	dest := filepath.Join(destDir, s.config.InstallerName)

	if err := s.download(ctx, s.config.DownloadURL, dest); err != nil {
		return common.WrapError(common.ErrDownloadFailed, err.Error())
	}

	if err := s.sleep(ctx, s.config.DownloadSettle); err != nil {
		return err
	}

	if !common.FileExists(dest) {
		return common.WrapError(common.ErrInstallerAbsent, dest)
	}

	common.LogInfo("Running installer %s %v", dest, s.config.InstallerArgs)
	if err := s.install(ctx, dest, s.config.InstallerArgs); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The installer ran to completion; its exit code is not a
			// reliable success signal, so a non-zero exit is tolerated.
			common.LogWarn("Installer exited non-zero: %v", err)
		} else {
			return common.WrapError(common.ErrUpdateFailed, err.Error())
		}
	}

	if !s.config.KeepInstaller {
		if err := os.Remove(dest); err != nil {
			common.LogWarn("Could not remove installer artifact: %v", err)
		}
	}

	return nil
}

// download fetches url and writes the body to dest atomically (temp file
// plus rename), so a partial download never masquerades as an installer.
func (s *Supervisor) download(ctx context.Context, url, dest string) error {
	if s.config.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.DownloadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	common.LogInfo("Downloading installer from %s", url)
	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected download status: %s", resp.Status)
	}

	if err := common.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), s.config.InstallerName+".part-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dest)
}
